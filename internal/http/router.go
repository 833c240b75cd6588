package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// UserStore is everything the user-scoped routes need from the users collection.
type UserStore interface {
	handlers.UserAccounts
	handlers.CartStore
	handlers.OrderStore
}

type Tokens interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

type RouterDeps struct {
	Env string

	Users    UserStore
	Products handlers.ProductStore
	Catalog  cache.Store
	Tokens   Tokens
	Notifier notifications.Notifier

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error

	AllowedOrigins []string

	// TrustedProxies may set X-Forwarded-For; empty means client IPs come from the
	// connection only.
	TrustedProxies []string

	// login and register attempts per client IP per window
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		slog.Default().Warn("trusted_proxies_invalid", "proxies", deps.TrustedProxies, "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("storefront-api"))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.CORSMiddleware(deps.AllowedOrigins))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	limit, window := deps.AuthRateLimit, deps.AuthRateWindow
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	authLimiter := middlewares.NewRateLimiter(limit, window).RateLimiterMiddleware(middlewares.KeyByIP)

	authMW := middlewares.NewAuthMiddleware(deps.Tokens)

	// accounts
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	r.POST("/register", authLimiter, authHandler.Register)
	r.POST("/login", authLimiter, authHandler.Login)

	usersHandler := handlers.NewUsersHandler(deps.Users)
	cartHandler := handlers.NewCartHandler(deps.Users)
	ordersHandler := handlers.NewOrdersHandler(deps.Users, deps.Notifier)

	self := func(param string) []gin.HandlerFunc {
		return []gin.HandlerFunc{authMW.RequireAuth(), authMW.RequireSelf(param)}
	}

	r.GET("/user/:_id", append(self("_id"), usersHandler.GetUser)...)

	// cart
	r.PUT("/addCartItemInUserDetails/:_id", append(self("_id"), cartHandler.AddCartItem)...)
	r.PUT("/updateQuantityInCart/:userId/:_id/:quantity", append(self("userId"), cartHandler.UpdateQuantity)...)
	r.DELETE("/removeCartItem/:userId/cart/:_id", append(self("userId"), cartHandler.RemoveCartItem)...)
	r.DELETE("/EmptyUserCart/:id", append(self("id"), cartHandler.EmptyCart)...)

	// orders
	r.GET("/userorders/:_id", append(self("_id"), ordersHandler.ListOrders)...)
	r.PUT("/yourOrders/:_id", append(self("_id"), ordersHandler.AppendOrder)...)
	r.POST("/checkout/:_id", append(self("_id"), ordersHandler.Checkout)...)

	// catalog
	productsHandler := handlers.NewProductsHandler(deps.Products, deps.Catalog, deps.Prom)
	r.GET("/products", productsHandler.ListProducts)
	r.GET("/products/:_id", productsHandler.GetProduct)

	admin := r.Group("/", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))
	{
		admin.POST("/addproduct", productsHandler.AddProduct)
		admin.POST("/addmanyproduct", productsHandler.AddManyProducts)
		admin.PUT("/updateproduct/:_id", productsHandler.UpdateProduct)
		admin.DELETE("/deleteproduct/:_id", productsHandler.DeleteProduct)
		admin.DELETE("/deleteManyProducts", productsHandler.DeleteAllProducts)
	}

	return r
}

var _ Tokens = (*auth.Manager)(nil)
