package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mercadito/storefront/internal/address"
	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/catalog"
	"github.com/mercadito/storefront/internal/order"
)

func httpError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, address.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrProductUnavailable),
		errors.Is(err, catalog.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrUnknownOwnerKind),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPayment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func ownerFrom(c *gin.Context) (cart.OwnerKind, string) {
	return cart.OwnerKind(c.Param("kind")), c.Param("owner")
}

// ---------- catalog (read-only browsing) ----------

func listProductsHandler(cat catalog.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := catalog.Query{Q: c.Query("q"), Limit: limit, Offset: offset}
		items, err := cat.List(c.Request.Context(), q)
		if err != nil {
			httpError(c, err)
			return
		}
		if items == nil {
			items = []catalog.Product{}
		}
		c.JSON(http.StatusOK, catalog.ListResponse{Q: q.Q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(cat catalog.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := cat.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// ---------- cart ----------

func getCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, owner := ownerFrom(c)
		snap, err := carts.Snapshot(c.Request.Context(), kind, owner)
		if err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func addCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1 // default on first add
		}
		kind, owner := ownerFrom(c)
		it, err := carts.AddItem(c.Request.Context(), kind, owner, req.ProductID, req.Quantity)
		if err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func setCartQuantityHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		kind, owner := ownerFrom(c)
		// quantity <= 0 removes the item, same as DELETE
		if err := carts.SetQuantity(c.Request.Context(), kind, owner, c.Param("item_id"), req.Quantity); err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

func removeCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, owner := ownerFrom(c)
		if err := carts.RemoveItem(c.Request.Context(), kind, owner, c.Param("item_id")); err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": true})
	}
}

func clearCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, owner := ownerFrom(c)
		if err := carts.Clear(c.Request.Context(), kind, owner); err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cleared": true})
	}
}

type mergeCartRequest struct {
	Session string `json:"session"`
}

// mergeCartHandler folds a guest session cart into the authenticated cart
// at login/registration.
func mergeCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mergeCartRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Session == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
			return
		}
		if err := carts.Merge(c.Request.Context(), req.Session, c.Param("owner")); err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"merged": true})
	}
}

// ---------- orders ----------

func createOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.AddressID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and address_id are required"})
			return
		}
		o, err := orders.Create(c.Request.Context(), req)
		if err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func getOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func getOrderItemsHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := orders.Items(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpError(c, err)
			return
		}
		if items == nil {
			items = []order.Item{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func listOrdersByUserHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		out, err := orders.ListByUser(c.Request.Context(), c.Param("user_id"), limit, offset)
		if err != nil {
			httpError(c, err)
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

func orderStatsHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := orders.Stats(c.Request.Context(), c.Param("user_id"))
		if err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

func updateOrderStatusHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		o, err := orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			httpError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
