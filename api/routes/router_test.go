package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	internalauth "github.com/perpusdesa/perpusdesa-backend/internal/auth"
	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/catalog"
	"github.com/perpusdesa/perpusdesa-backend/internal/categories"
	"github.com/perpusdesa/perpusdesa-backend/internal/circulation"
	"github.com/perpusdesa/perpusdesa-backend/internal/dashboard"
	"github.com/perpusdesa/perpusdesa-backend/internal/waitlist"
	pkgauth "github.com/perpusdesa/perpusdesa-backend/pkg/auth"
	"github.com/perpusdesa/perpusdesa-backend/pkg/config"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/logger"
	"github.com/perpusdesa/perpusdesa-backend/pkg/metrics"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input internalauth.RegisterInput) (internalauth.Session, error) {
	return internalauth.Session{}, nil
}

func (stubAuthService) Login(ctx context.Context, input internalauth.LoginInput) (internalauth.Session, error) {
	return internalauth.Session{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) List(ctx context.Context, filters catalog.Filters, params pagination.Params) (catalog.CatalogPage, error) {
	return catalog.CatalogPage{}, nil
}

func (stubCatalogService) Detail(ctx context.Context, bookID, viewerID uuid.UUID) (catalog.Detail, error) {
	return catalog.Detail{}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Admin(ctx context.Context) (dashboard.AdminOverview, error) {
	return dashboard.AdminOverview{}, nil
}

func (stubDashboardService) Member(ctx context.Context, userID uuid.UUID) (dashboard.MemberOverview, error) {
	return dashboard.MemberOverview{}, nil
}

type stubCategoriesService struct{}

func (stubCategoriesService) Create(ctx context.Context, input categories.CategoryInput) (*models.Category, error) {
	return &models.Category{}, nil
}

func (stubCategoriesService) Update(ctx context.Context, id uuid.UUID, input categories.CategoryInput) (*models.Category, error) {
	return &models.Category{}, nil
}

func (stubCategoriesService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCategoriesService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return &models.Category{}, nil
}

func (stubCategoriesService) List(ctx context.Context, params pagination.Params) (categories.CategoryPage, error) {
	return categories.CategoryPage{}, nil
}

func (stubCategoriesService) ListAll(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

type stubBooksService struct{}

func (stubBooksService) Create(ctx context.Context, input books.BookInput) (*models.Book, error) {
	return &models.Book{}, nil
}

func (stubBooksService) Update(ctx context.Context, id uuid.UUID, input books.BookInput) (*models.Book, error) {
	return &models.Book{}, nil
}

func (stubBooksService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubBooksService) Get(ctx context.Context, id uuid.UUID) (books.BookDetail, error) {
	return books.BookDetail{}, nil
}

func (stubBooksService) List(ctx context.Context, params pagination.Params) (books.BookPage, error) {
	return books.BookPage{}, nil
}

type stubCirculationService struct{}

func (stubCirculationService) Issue(ctx context.Context, input circulation.IssueInput) (*models.Borrowing, error) {
	return &models.Borrowing{}, nil
}

func (stubCirculationService) Update(ctx context.Context, id uuid.UUID, input circulation.UpdateInput) (*models.Borrowing, error) {
	return &models.Borrowing{}, nil
}

func (stubCirculationService) Remove(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCirculationService) Get(ctx context.Context, id uuid.UUID) (*models.Borrowing, error) {
	return &models.Borrowing{}, nil
}

func (stubCirculationService) List(ctx context.Context, params pagination.Params) (circulation.BorrowingPage, error) {
	return circulation.BorrowingPage{}, nil
}

func (stubCirculationService) Active(ctx context.Context) ([]models.Borrowing, error) {
	return nil, nil
}

func (stubCirculationService) Overdue(ctx context.Context) ([]models.Borrowing, error) {
	return nil, nil
}

type stubWaitlistService struct{}

func (stubWaitlistService) Request(ctx context.Context, userID, bookID uuid.UUID, notes *string) (*models.Waitlist, error) {
	return &models.Waitlist{}, nil
}

func (stubWaitlistService) Resolve(ctx context.Context, id uuid.UUID, status enums.WaitlistStatus, notes *string) (*models.Waitlist, error) {
	return &models.Waitlist{}, nil
}

func (stubWaitlistService) Remove(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubWaitlistService) Get(ctx context.Context, id uuid.UUID) (*models.Waitlist, error) {
	return &models.Waitlist{}, nil
}

func (stubWaitlistService) List(ctx context.Context, params pagination.Params) (waitlist.WaitlistPage, error) {
	return waitlist.WaitlistPage{}, nil
}

func (stubWaitlistService) PendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Waitlist, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "perpusdesa",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	registry := prometheus.NewRegistry()
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		metrics.NewHTTPMetrics(registry),
		registry,
		stubAuthService{},
		stubCatalogService{},
		stubDashboardService{},
		stubCategoriesService{},
		stubBooksService{},
		stubCirculationService{},
		stubWaitlistService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/katalog", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestDashboardRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestDashboardAcceptsMemberJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for member dashboard got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	member := httptest.NewRequest(http.MethodGet, "/api/v1/admin/books", nil)
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/books", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/borrowings", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	router := newTestRouter(testConfig())

	warm := httptest.NewRequest(http.MethodGet, "/api/v1/katalog", nil)
	router.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}
