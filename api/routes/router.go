package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-pricing/api/controllers"
	"github.com/angelmondragon/catalog-pricing/api/middleware"
	"github.com/angelmondragon/catalog-pricing/pkg/config"
	"github.com/angelmondragon/catalog-pricing/pkg/db"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
	pkgredis "github.com/angelmondragon/catalog-pricing/pkg/redis"
)

// KeyValueStore backs idempotency keys and bulk rate limits. Pass a nil
// interface when redis is not configured.
type KeyValueStore interface {
	pkgredis.IdempotencyStore
	pkgredis.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store KeyValueStore,
	gatherer prometheus.Gatherer,
	offerService controllers.OfferService,
	variantReader controllers.VariantReader,
	bulkMutator controllers.BulkMutator,
	marginService controllers.MarginRuleService,
	catalogBrowser controllers.CatalogBrowser,
	auditReader controllers.AuditReader,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	readiness := map[string]controllers.Pinger{"database": dbP}
	if store != nil {
		readiness["redis"] = store
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	bulkPolicy := middleware.RateLimitPolicy{
		Name:   "bulk",
		Window: cfg.Pricing.BulkRateWindow,
		Limit:  cfg.Pricing.BulkRateLimit,
	}
	bulk := []func(http.Handler) http.Handler{
		middleware.OperatorRateLimit(bulkPolicy, store, logg),
		middleware.Idempotency(store, logg),
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Operator(logg))

		r.Route("/offers", func(r chi.Router) {
			r.Post("/preview", controllers.PreviewOffer(offerService, logg))
			r.Post("/", controllers.CreateOffer(offerService, logg))
			r.Get("/", controllers.ListOffers(offerService, logg))
			r.Get("/{offerId}", controllers.GetOffer(offerService, logg))
			r.Patch("/{offerId}", controllers.UpdateOffer(offerService, logg))
			r.Delete("/{offerId}", controllers.DeleteOffer(offerService, logg))
			r.With(bulk...).Post("/{offerId}/apply", controllers.ApplyOffer(offerService, logg))
			r.With(bulk...).Post("/{offerId}/remove", controllers.RemoveOffer(offerService, logg))
		})

		r.Route("/variants", func(r chi.Router) {
			r.With(bulk...).Post("/bulk/margin", controllers.BulkOverrideMargin(bulkMutator, logg))
			r.With(bulk...).Post("/bulk/offer", controllers.BulkSetOffer(bulkMutator, logg))
			r.Post("/select", controllers.SelectVariants(variantReader, logg))
			r.Get("/{sku}", controllers.GetVariant(variantReader, logg))
			r.With(middleware.Idempotency(store, logg)).Patch("/{sku}", controllers.UpdateVariant(bulkMutator, logg))
		})

		r.Route("/margin-rules", func(r chi.Router) {
			r.Post("/", controllers.CreateMarginRule(marginService, logg))
			r.Get("/", controllers.ListMarginRules(marginService, logg))
			r.Get("/{ruleId}", controllers.GetMarginRule(marginService, logg))
			r.Delete("/{ruleId}", controllers.DeleteMarginRule(marginService, logg))
			r.With(bulk...).Post("/{ruleId}/apply", controllers.ApplyMarginRule(marginService, logg))
		})

		r.Get("/catalog/{level}", controllers.ListCatalog(catalogBrowser, logg))

		r.Route("/audit", func(r chi.Router) {
			r.Get("/", controllers.ListAuditEntries(auditReader, logg))
			r.Get("/{entryId}", controllers.GetAuditEntry(auditReader, logg))
		})
	})

	return r
}
