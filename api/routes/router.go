package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ilmekten/shop-backend/api/controllers"
	"github.com/ilmekten/shop-backend/api/middleware"
	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/internal/cart"
	"github.com/ilmekten/shop-backend/internal/catalog"
	checkoutsvc "github.com/ilmekten/shop-backend/internal/checkout"
	"github.com/ilmekten/shop-backend/internal/corporate"
	"github.com/ilmekten/shop-backend/internal/coupons"
	"github.com/ilmekten/shop-backend/internal/favorites"
	"github.com/ilmekten/shop-backend/internal/orders"
	"github.com/ilmekten/shop-backend/internal/pricing"
	"github.com/ilmekten/shop-backend/pkg/config"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
	"github.com/ilmekten/shop-backend/pkg/logger"
	pkgredis "github.com/ilmekten/shop-backend/pkg/redis"
)

type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	StorePing kvstore.Pinger
	Redis     *pkgredis.Client
	Gatherer  prometheus.Gatherer

	Catalog   *catalog.Service
	Cart      *cart.Service
	Campaigns *campaigns.Registry
	Coupons   *coupons.Service
	Pricer    *pricing.Calculator
	Ledger    *orders.Ledger
	Checkout  *checkoutsvc.Service
	Favorites *favorites.Service
	Corporate *corporate.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.StorePing, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{productId}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/campaigns", controllers.ListActiveCampaigns(deps.Campaigns, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, deps.Pricer, deps.Coupons, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
			r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
			r.Put("/items/{productId}", controllers.SetCartItemQuantity(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Post("/coupon", controllers.ApplyCoupon(deps.Cart, deps.Pricer, deps.Coupons, logg))
			r.Delete("/coupon", controllers.RemoveCoupon(deps.Coupons, logg))
		})

		var idempotencyStore pkgredis.IdempotencyStore
		if deps.Redis != nil {
			idempotencyStore = deps.Redis
		}
		r.With(middleware.Idempotency(idempotencyStore, logg)).
			Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Get("/favorites", controllers.ListFavorites(deps.Favorites, logg))
		r.Post("/favorites/{productId}/toggle", controllers.ToggleFavorite(deps.Favorites, logg))

		r.Get("/corporate", controllers.ListCorporateOrders(deps.Corporate, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Catalog, logg))
				r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
				r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Catalog, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Catalog, logg))
			})
			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", controllers.AdminListCampaigns(deps.Campaigns, logg))
				r.Post("/", controllers.AdminCreateCampaign(deps.Campaigns, logg))
				r.Post("/{campaignId}/toggle", controllers.AdminToggleCampaign(deps.Campaigns, logg))
				r.Delete("/{campaignId}", controllers.AdminDeleteCampaign(deps.Campaigns, logg))
			})
			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.AdminListCoupons(deps.Coupons, logg))
				r.Post("/", controllers.AdminCreateCoupon(deps.Coupons, logg))
				r.Post("/{code}/toggle", controllers.AdminToggleCoupon(deps.Coupons, logg))
				r.Delete("/{code}", controllers.AdminDeleteCoupon(deps.Coupons, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.Ledger, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(deps.Ledger, logg))
				r.Put("/{orderId}/status", controllers.AdminSetOrderStatus(deps.Ledger, logg))
				r.Delete("/{orderId}", controllers.AdminDeleteOrder(deps.Ledger, logg))
			})
			r.Route("/corporate", func(r chi.Router) {
				r.Get("/", controllers.ListCorporateOrders(deps.Corporate, logg))
				r.Post("/", controllers.AdminCreateCorporateOrder(deps.Corporate, logg))
				r.Put("/{corporateId}", controllers.AdminUpdateCorporateOrder(deps.Corporate, logg))
				r.Delete("/{corporateId}", controllers.AdminDeleteCorporateOrder(deps.Corporate, logg))
			})
		})
	})

	return r
}
