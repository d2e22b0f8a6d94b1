package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perpusdesa/perpusdesa-backend/api/controllers"
	"github.com/perpusdesa/perpusdesa-backend/api/middleware"
	"github.com/perpusdesa/perpusdesa-backend/internal/auth"
	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/catalog"
	"github.com/perpusdesa/perpusdesa-backend/internal/categories"
	"github.com/perpusdesa/perpusdesa-backend/internal/circulation"
	"github.com/perpusdesa/perpusdesa-backend/internal/dashboard"
	"github.com/perpusdesa/perpusdesa-backend/internal/waitlist"
	"github.com/perpusdesa/perpusdesa-backend/pkg/config"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/logger"
	"github.com/perpusdesa/perpusdesa-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	catalogService catalog.Service,
	dashboardService dashboard.Service,
	categoriesService categories.Service,
	booksService books.Service,
	circulationService circulation.Service,
	waitlistService waitlist.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	// The catalog is public, but a signed-in member gets their own queue
	// state folded into detail responses.
	r.Route("/api/v1/katalog", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Get("/", controllers.CatalogList(catalogService, logg))
		r.Get("/{bookId}", controllers.CatalogDetail(catalogService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/api/v1/dashboard", controllers.Dashboard(dashboardService, logg))
		r.Post("/api/v1/waitlist", controllers.WaitlistRequest(waitlistService, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoriesService, logg))
			r.Post("/", controllers.CategoryCreate(categoriesService, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(categoriesService, logg))
			r.Patch("/{categoryId}", controllers.CategoryUpdate(categoriesService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(categoriesService, logg))
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", controllers.BookList(booksService, logg))
			r.Post("/", controllers.BookCreate(booksService, logg))
			r.Get("/{bookId}", controllers.BookGet(booksService, logg))
			r.Patch("/{bookId}", controllers.BookUpdate(booksService, logg))
			r.Delete("/{bookId}", controllers.BookDelete(booksService, logg))
		})

		r.Route("/borrowings", func(r chi.Router) {
			r.Get("/", controllers.BorrowingList(circulationService, logg))
			r.Post("/", controllers.BorrowingCreate(circulationService, logg))
			r.Get("/{borrowingId}", controllers.BorrowingGet(circulationService, logg))
			r.Patch("/{borrowingId}", controllers.BorrowingUpdate(circulationService, logg))
			r.Delete("/{borrowingId}", controllers.BorrowingDelete(circulationService, logg))
		})

		r.Route("/waitlists", func(r chi.Router) {
			r.Get("/", controllers.WaitlistList(waitlistService, logg))
			r.Get("/{waitlistId}", controllers.WaitlistGet(waitlistService, logg))
			r.Patch("/{waitlistId}", controllers.WaitlistResolve(waitlistService, logg))
			r.Delete("/{waitlistId}", controllers.WaitlistDelete(waitlistService, logg))
		})
	})

	return r
}
