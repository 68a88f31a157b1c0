package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-orders/internal/models"
	"storefront-orders/internal/service"
	"storefront-orders/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains the HTTP handlers for the order API.
type Handler struct {
	orchestrator *service.Orchestrator
	catalog      *service.CatalogService
	users        service.UserStore
}

func NewHandler(orchestrator *service.Orchestrator, catalog *service.CatalogService, users service.UserStore) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		catalog:      catalog,
		users:        users,
	}
}

// SetupRoutes sets up HTTP routes.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.placeOrder)
		v1.POST("/orders/express", h.placeExpressOrder)
		v1.POST("/orders/custom", h.placeCustomOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/cancel", h.cancelOrder)
		v1.PATCH("/orders/:id/status", h.updateStatus)
		v1.GET("/users/:id/orders", h.listUserOrders)
		v1.GET("/products/:id", h.getProduct)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// PlaceOrderRequest carries a cart worth of lines plus optional contact
// overrides.
type PlaceOrderRequest struct {
	UserID  int64              `json:"user_id" binding:"required"`
	Items   []OrderItemRequest `json:"items" binding:"required,min=1"`
	Address string             `json:"shipping_address,omitempty"`
	Phone   string             `json:"phone,omitempty"`
	Notes   string             `json:"notes,omitempty"`
}

type OrderItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	cart := models.NewCart(user.ID)
	for _, item := range req.Items {
		product, _, err := h.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Product not found",
				"details": err.Error(),
			})
			return
		}
		cart.AddItem(product, item.Size, item.Quantity)
	}

	orderID, err := h.orchestrator.PlaceOrder(ctx, cart, user, req.Address, req.Phone, req.Notes)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInsufficientStock) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error":   "Failed to place order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": orderID,
		"status":   models.StatusPending,
	})
}

// ExpressOrderRequest is a one-line placement without a cart. Address and
// phone are required; name and price are snapshotted from the catalog, never
// taken from the client.
type ExpressOrderRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	ProductID int64  `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Address   string `json:"shipping_address" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

func (h *Handler) placeExpressOrder(c *gin.Context) {
	var req ExpressOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	product, _, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}

	orderID, err := h.orchestrator.PlaceExpress(ctx, user,
		product.ID, product.Name, req.Size, req.Quantity, product.Price,
		req.Address, req.Phone)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInsufficientStock) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error":   "Failed to place order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": orderID,
		"status":   models.StatusPending,
	})
}

// CustomOrderRequest carries raw lines; sizes are optional and default
// server-side. Snapshots come from the catalog, as with every placement.
type CustomOrderRequest struct {
	UserID  int64               `json:"user_id" binding:"required"`
	Items   []CustomItemRequest `json:"items" binding:"required,min=1"`
	Address string              `json:"shipping_address" binding:"required"`
	Phone   string              `json:"phone" binding:"required"`
	Notes   string              `json:"notes,omitempty"`
}

type CustomItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) placeCustomOrder(c *gin.Context) {
	var req CustomOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	lines := make([]service.LineSpec, 0, len(req.Items))
	for _, item := range req.Items {
		product, _, err := h.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Product not found",
				"details": err.Error(),
			})
			return
		}
		lines = append(lines, service.LineSpec{
			ProductID: product.ID,
			Name:      product.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	orderID, err := h.orchestrator.PlaceCustom(ctx, user, lines, req.Address, req.Phone, req.Notes)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInsufficientStock) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error":   "Failed to place order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": orderID,
		"status":   models.StatusPending,
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orchestrator.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	cancelled, err := h.orchestrator.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error":   "Failed to cancel order",
			"details": err.Error(),
		})
		return
	}
	if !cancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Order can no longer be cancelled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": models.StatusCancelled})
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	updated, err := h.orchestrator.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error":   "Failed to update order status",
			"details": err.Error(),
		})
		return
	}
	if !updated {
		c.JSON(http.StatusConflict, gin.H{"error": "Illegal status transition"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": req.Status})
}

func (h *Handler) listOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
		return
	}

	orders, err := h.orchestrator.ListOrders(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list orders",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) listUserOrders(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	orders, err := h.orchestrator.ListOrdersForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list orders",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, inventory, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":   product,
		"inventory": inventory.Counts,
	})
}

func (h *Handler) orderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return orderID, true
}

// prometheusMiddleware collects HTTP metrics.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
