package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mercadito/storefront/internal/address"
	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/catalog"
	"github.com/mercadito/storefront/internal/config"
	"github.com/mercadito/storefront/internal/httpx"
	"github.com/mercadito/storefront/internal/order"
)

func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	var publisher order.Publisher
	if amqpPub, err := order.NewAMQPPublisher(cfg.AmqpURL, cfg.AmqpExchange); err != nil {
		log.Printf("[events] amqp unavailable, events disabled: %v", err)
		publisher = order.NopPublisher{}
	} else {
		defer amqpPub.Close()
		publisher = amqpPub
	}

	cat := catalog.NewPGRepo(pool)
	addrs := address.NewPGRepo(pool)
	userCarts := cart.NewPGStore(pool)
	guestCarts := cart.NewRedisStore(rdb)
	carts := cart.NewService(userCarts, guestCarts, cat)
	orders := order.NewService(order.NewPGRepo(pool), userCarts, cat, addrs, publisher,
		cfg.FreeShippingThreshold, cfg.ShippingFlatRate)

	metrics := httpx.NewServerMetrics("storefront")

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), metrics.Measure())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", httpx.MetricsHandler())

	r.GET("/products", listProductsHandler(cat))
	r.GET("/products/:id", getProductHandler(cat))

	r.GET("/carts/:kind/:owner", getCartHandler(carts))
	r.POST("/carts/:kind/:owner/items", addCartItemHandler(carts))
	r.PUT("/carts/:kind/:owner/items/:item_id", setCartQuantityHandler(carts))
	r.DELETE("/carts/:kind/:owner/items/:item_id", removeCartItemHandler(carts))
	r.DELETE("/carts/:kind/:owner", clearCartHandler(carts))
	r.POST("/carts/user/:owner/merge", mergeCartHandler(carts))

	r.POST("/orders", createOrderHandler(orders))
	r.GET("/orders/:id", getOrderHandler(orders))
	r.GET("/orders/:id/items", getOrderItemsHandler(orders))
	r.GET("/orders/user/:user_id", listOrdersByUserHandler(orders))
	r.GET("/orders/user/:user_id/stats", orderStatsHandler(orders))
	r.PUT("/orders/:id/status", updateOrderStatusHandler(orders))

	log.Printf("storefront listening on %s", cfg.ListenAddr)
	log.Fatal(r.Run(cfg.ListenAddr))
}
