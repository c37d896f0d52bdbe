// Package server assembles the HTTP surface: middleware chain, public routes,
// admin-gated routes and the metrics endpoint.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/handlers"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
)

// Catalog serves both the public listing and admin product management.
type Catalog interface {
	handlers.ProductReader
	handlers.ProductWriter
}

type Deps struct {
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Verifier    middleware.TokenVerifier
	Credentials handlers.CredentialChecker
	Tokens      handlers.TokenIssuer

	Ping      handlers.PingFunc
	Products  Catalog
	Checkout  handlers.CheckoutRunner
	Orders    handlers.OrderBook
	Customers handlers.CustomerLookup
	Reviews   handlers.ReviewBook
	Wishlist  handlers.WishlistStore
	Carts     handlers.CartStore
	Reports   handlers.SalesReports

	// UploadDir is served under /public/uploads/products when set.
	UploadDir string
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(deps.Logger, deps.HTTPMetrics),
		middleware.CustomerToken(),
		middleware.ETag(),
	)

	if deps.UploadDir != "" {
		r.Static("/public/uploads/products", deps.UploadDir)
	}
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", handlers.Health(deps.Ping))

	adminOnly := middleware.AdminAuth(deps.Verifier, deps.Logger)

	/* ==== PRODUCTS ==== */

	products := r.Group("/products")
	{
		products.GET("/", handlers.GetProducts(deps.Products))
		products.GET("/subcategories", handlers.GetSubcategories())
		products.GET("/:id", handlers.GetProduct(deps.Products))
	}

	/* ==== CHECKOUT / ORDERS ==== */

	r.POST("/checkout/", handlers.Checkout(deps.Checkout))
	r.GET("/customers/me", handlers.GetCustomerMe(deps.Customers))

	orders := r.Group("/orders")
	{
		orders.GET("/", adminOnly, handlers.GetOrders(deps.Orders))
		orders.GET("/:id", handlers.GetOrder(deps.Orders))
		orders.PUT("/:id/status", adminOnly, handlers.UpdateOrderStatus(deps.Orders))
	}

	/* ==== REVIEWS ==== */

	reviews := r.Group("/reviews")
	{
		reviews.GET("/", handlers.GetReviews(deps.Reviews))
		reviews.POST("/", handlers.CreateReview(deps.Reviews))
		reviews.GET("/product/:id", handlers.GetProductReviews(deps.Reviews))
		reviews.GET("/stats/:id", handlers.GetReviewStats(deps.Reviews))
		reviews.DELETE("/:id", adminOnly, handlers.DeleteReview(deps.Reviews))
	}

	/* ==== WISHLIST / CART ==== */

	wishlist := r.Group("/wishlist")
	{
		wishlist.POST("/add", handlers.AddWishlistItem(deps.Wishlist))
		wishlist.POST("/remove", handlers.RemoveWishlistItem(deps.Wishlist))
		wishlist.GET("/:owner", handlers.GetWishlist(deps.Wishlist))
	}

	cart := r.Group("/cart")
	{
		cart.POST("/upsert", handlers.UpsertCart(deps.Carts))
		cart.GET("/:session_id", handlers.GetCart(deps.Carts))
	}

	/* ==== ADMIN ==== */

	r.POST("/admin/login", handlers.AdminLogin(deps.Credentials, deps.Tokens))

	adminProducts := r.Group("/admin/products", adminOnly)
	{
		adminProducts.POST("/", handlers.CreateProduct(deps.Products))
		adminProducts.POST("/upload", handlers.UploadProduct(deps.Products))
		adminProducts.PATCH("/:id", handlers.UpdateProduct(deps.Products))
		adminProducts.DELETE("/:id", handlers.DeleteProduct(deps.Products))
	}

	stats := r.Group("/stats", adminOnly)
	{
		stats.GET("/", handlers.GetStatsOverview(deps.Reports))
		stats.GET("/sales/daily", handlers.GetDailySales(deps.Reports))
		stats.GET("/sales/summary", handlers.GetSalesSummary(deps.Reports))
	}

	return r
}
