package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"shop-client/internal/config"
	handlers "shop-client/internal/controllers/http"
	"shop-client/internal/gateway"
	"shop-client/internal/persist"
	"shop-client/internal/pricing"
	"shop-client/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	var adapter persist.Adapter
	if cfg.MySQLDSN != "" {
		db, err := persist.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("mysql: connect: %v", err)
		}
		adapter = persist.NewGormKV(db)
	} else {
		adapter = persist.NewRedis(persist.NewRedisClient(cfg.RedisAddr), "session")
	}

	tokens := session.NewTokenStore(adapter)
	gw := gateway.NewClient(cfg.BackendURL, cfg.RequestTimeout, tokens)

	pcfg := pricing.Config{
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		FlatDeliveryFee:       cfg.FlatDeliveryFee,
		TaxRate:               cfg.TaxRate,
	}

	sess := session.New(gw, adapter, pcfg, tokens, session.Options{
		AMQPURL:       cfg.RabbitMQURL,
		OrderExchange: cfg.OrderExchange,
	})
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := sess.Start(ctx); err != nil {
		log.WithError(err).Warn("initial sync incomplete, serving cached state")
	}
	cancel()

	handler := handlers.NewHandler(sess)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	log.Infof("starting shop client on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
