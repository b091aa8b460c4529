package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"shop-client/internal/domain"
	"shop-client/internal/metrics"
)

// Client talks to the shop backend over HTTP. All calls go through one
// circuit breaker: transport errors and 5xx responses trip it, 4xx do not.
type Client struct {
	http    *resty.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Entry
}

var _ Gateway = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "shop-backend",
		Interval: 15 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.Set(state)
			logrus.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("circuit breaker state changed")
		},
	})

	return &Client{
		http:    resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		tokens:  tokens,
		breaker: cb,
		log:     logrus.WithField("component", "gateway"),
	}
}

// execute runs one request inside the breaker and maps failures onto the
// error taxonomy: ErrAuthRequired for 401/403, *RemoteError otherwise.
func (c *Client) execute(ctx context.Context, fn func(req *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		req := c.http.R().SetContext(ctx)
		if tok, ok := c.tokens.Token(); ok {
			req.SetAuthToken(tok)
		}
		resp, err := fn(req)
		if err != nil {
			return nil, &RemoteError{Message: err.Error()}
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, c.decodeError(resp)
		}
		return resp, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &RemoteError{Message: "service temporarily unavailable"}
		}
		return nil, err
	}

	resp := out.(*resty.Response)
	if resp.IsError() {
		return nil, c.decodeError(resp)
	}
	return resp, nil
}

func (c *Client) decodeError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrAuthRequired
	}
	var body errorResponse
	msg := ""
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		msg = body.Error
		if msg == "" {
			msg = body.Message
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("service returned status %d", status)
	}
	return &RemoteError{Status: status, Message: msg}
}

func (c *Client) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	var out ordersResponse
	_, err := c.execute(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&out).Get("/orders")
	})
	if err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	var out orderResponse
	_, err := c.execute(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(draft).SetResult(&out).Post("/orders")
	})
	if err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	var out orderResponse
	_, err := c.execute(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetBody(cancelRequest{Reason: reason}).
			SetResult(&out).
			Post("/orders/" + orderID + "/cancel")
	})
	if err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) FetchWishlist(ctx context.Context) ([]domain.WishlistEntry, error) {
	var out wishlistResponse
	_, err := c.execute(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&out).Get("/wishlist")
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.WishlistEntry, 0, len(out.Wishlist))
	for _, item := range out.Wishlist {
		e, ok := item.normalize()
		if !ok {
			c.log.WithField("productId", item.ProductID).Warn("dropping malformed wishlist item")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *Client) AddWishlistItem(ctx context.Context, productID string) error {
	_, err := c.execute(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(wishlistItemRequest{ProductID: productID}).Post("/wishlist/items")
	})
	return err
}

func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) error {
	_, err := c.execute(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.Delete("/wishlist/items/" + productID)
	})
	return err
}

func (c *Client) FetchAddresses(ctx context.Context) ([]domain.Address, error) {
	var out addressesResponse
	_, err := c.execute(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&out).Get("/addresses")
	})
	if err != nil {
		return nil, err
	}
	return out.Addresses, nil
}
