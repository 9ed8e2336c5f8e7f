package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmtruong/shophub-backend/api/controllers"
	"github.com/nmtruong/shophub-backend/api/middleware"
	"github.com/nmtruong/shophub-backend/internal/auth"
	"github.com/nmtruong/shophub-backend/internal/cart"
	"github.com/nmtruong/shophub-backend/internal/categories"
	"github.com/nmtruong/shophub-backend/internal/chat"
	"github.com/nmtruong/shophub-backend/internal/orders"
	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/internal/reviews"
	"github.com/nmtruong/shophub-backend/internal/users"
	"github.com/nmtruong/shophub-backend/internal/wishlist"
	"github.com/nmtruong/shophub-backend/pkg/auth/session"
	"github.com/nmtruong/shophub-backend/pkg/config"
	"github.com/nmtruong/shophub-backend/pkg/db"
	"github.com/nmtruong/shophub-backend/pkg/logger"
	"github.com/nmtruong/shophub-backend/pkg/media"
	"github.com/nmtruong/shophub-backend/pkg/metrics"
	"github.com/nmtruong/shophub-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Sessions       session.AccessSessionChecker
	MediaStorage   *media.Storage
	Registry       *prometheus.Registry
	AuthService    auth.Service
	UsersService   users.Service
	ProductService products.Service
	CategorySvc    categories.Service
	CartService    cart.Service
	OrdersService  orders.Service
	ReviewsService reviews.Service
	ChatService    chat.Service
	WishlistSvc    wishlist.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	var httpMetrics *metrics.HTTPMetrics
	if p.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(p.Registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	if p.MediaStorage != nil {
		fileServer := http.StripPrefix(media.PublicPrefix+"/", http.FileServer(http.Dir(p.MediaStorage.Dir())))
		r.Get(media.PublicPrefix+"/*", fileServer.ServeHTTP)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		// public catalog surface
		r.Get("/products", controllers.ProductList(p.ProductService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(p.ProductService, logg))
		r.Get("/products/{productId}/reviews", controllers.ReviewListByProduct(p.ReviewsService, logg))
		r.Get("/categories", controllers.CategoryList(p.CategorySvc, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			r.Use(middleware.Idempotency(p.Redis, logg))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.UserProfile(p.UsersService, logg))
				r.Put("/", controllers.UserUpdateProfile(p.UsersService, logg))
				r.Post("/addresses", controllers.UserAddAddress(p.UsersService, logg))
				r.Put("/addresses/{addressId}", controllers.UserUpdateAddress(p.UsersService, logg))
				r.Delete("/addresses/{addressId}", controllers.UserDeleteAddress(p.UsersService, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.CartService, logg))
				r.Post("/items", controllers.CartAddItem(p.CartService, logg))
				r.Put("/items/{productId}", controllers.CartUpdateQuantity(p.CartService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(p.CartService, logg))
				r.Delete("/", controllers.CartClear(p.CartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(p.OrdersService, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(p.OrdersService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(p.OrdersService, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(p.OrdersService, logg))
			})

			r.Post("/reviews", controllers.ReviewCreate(p.ReviewsService, logg))

			r.Route("/chat", func(r chi.Router) {
				r.Get("/", controllers.ChatFetch(p.ChatService, logg))
				r.Post("/messages", controllers.ChatSend(p.ChatService, logg))
			})

			// customers upload the images they attach to reviews and chat messages
			r.Post("/media", controllers.MediaUpload(p.MediaStorage, logg))

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(p.WishlistSvc, logg))
				r.Post("/items", controllers.WishlistAdd(p.WishlistSvc, logg))
				r.Delete("/items/{productId}", controllers.WishlistRemove(p.WishlistSvc, logg))
			})
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(p.ProductService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(p.ProductService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(p.ProductService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(p.CategorySvc, logg))
			r.Put("/{categoryId}", controllers.AdminRenameCategory(p.CategorySvc, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(p.CategorySvc, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(p.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.OrdersService, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(p.OrdersService, logg))
		})

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", controllers.AdminChatList(p.ChatService, logg))
			r.Get("/{chatId}", controllers.AdminChatDetail(p.ChatService, logg))
			r.Post("/{chatId}/reply", controllers.AdminChatReply(p.ChatService, logg))
			r.Delete("/{chatId}", controllers.AdminChatDelete(p.ChatService, logg))
		})

		r.Post("/media", controllers.MediaUpload(p.MediaStorage, logg))
	})

	return r
}
