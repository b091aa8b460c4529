// Package session owns the authenticated-session lifecycle: the token,
// the containers and the push subscription, created together and torn
// down together.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"shop-client/internal/persist"
)

// TokenStore keeps the session token in memory and mirrors it under the
// auth.token key so a restart resumes the session. Claims are read
// without signature verification: the backend owns verification, the
// client only needs the subject and expiry.
type TokenStore struct {
	mu      sync.RWMutex
	token   string
	adapter persist.Adapter
	log     *logrus.Entry
}

func NewTokenStore(adapter persist.Adapter) *TokenStore {
	t := &TokenStore{
		adapter: adapter,
		log:     logrus.WithField("component", "session"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if b, err := adapter.Get(ctx, persist.KeyAuthToken); err == nil {
		t.token = string(b)
	} else if err != persist.ErrNotFound {
		t.log.WithError(err).Warn("failed to restore auth token")
	}
	return t
}

// Token returns the current token. Expired tokens are treated as absent.
func (t *TokenStore) Token() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == "" || t.expired(t.token) {
		return "", false
	}
	return t.token, true
}

func (t *TokenStore) SetToken(ctx context.Context, raw string) error {
	t.mu.Lock()
	t.token = raw
	t.mu.Unlock()
	return t.adapter.Set(ctx, persist.KeyAuthToken, []byte(raw))
}

func (t *TokenStore) Clear(ctx context.Context) error {
	t.mu.Lock()
	t.token = ""
	t.mu.Unlock()
	return t.adapter.Delete(ctx, persist.KeyAuthToken)
}

// UserID extracts the subject claim; it names the per-user push queue.
func (t *TokenStore) UserID() (string, bool) {
	raw, ok := t.Token()
	if !ok {
		return "", false
	}
	claims := t.claims(raw)
	if claims == nil {
		return "", false
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, true
	}
	if uid, ok := claims["userId"].(string); ok && uid != "" {
		return uid, true
	}
	return "", false
}

func (t *TokenStore) claims(raw string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		t.log.WithError(err).Debug("token is not a parseable JWT")
		return nil
	}
	return claims
}

func (t *TokenStore) expired(raw string) bool {
	claims := t.claims(raw)
	if claims == nil {
		// Opaque tokens carry no expiry; let the backend decide.
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return time.Now().After(time.Unix(int64(exp), 0))
}
