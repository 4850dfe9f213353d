package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gp-maquinas/maintenance-service/internal/api/http/handlers"
	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/config"
	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/observability"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	"github.com/gp-maquinas/maintenance-service/internal/service"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if user, ok := r.users[username]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	for _, user := range r.users {
		if user.ID == id {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memUserRepo) Deactivate(_ context.Context, id string) error {
	for _, user := range r.users {
		if user.ID == id {
			user.IsActive = false
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memStoreRepo struct {
	stores map[string]*domain.Store
}

func (r *memStoreRepo) GetByID(_ context.Context, id string) (*domain.Store, error) {
	if store, ok := r.stores[id]; ok {
		copied := *store
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memStoreRepo) ListActive(_ context.Context) ([]domain.Store, error) {
	var out []domain.Store
	for _, store := range r.stores {
		out = append(out, *store)
	}
	return out, nil
}

type memServiceRepo struct {
	records []domain.ServiceRecord
	seq     int
}

func (r *memServiceRepo) Create(_ context.Context, record *domain.ServiceRecord) error {
	r.seq++
	record.ID = "svc-" + time.Now().Format("150405") + "-" + string(rune('a'+r.seq))
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.records = append(r.records, *record)
	return nil
}

func (r *memServiceRepo) Update(_ context.Context, record *domain.ServiceRecord) error {
	for i := range r.records {
		if r.records[i].ID == record.ID {
			r.records[i] = *record
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memServiceRepo) Delete(_ context.Context, id string) error {
	for i := range r.records {
		if r.records[i].ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memServiceRepo) GetByID(_ context.Context, id string) (*domain.ServiceRecord, error) {
	for i := range r.records {
		if r.records[i].ID == id {
			copied := r.records[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memServiceRepo) List(_ context.Context, filter repository.ServiceFilter) ([]domain.ServiceRecord, error) {
	var out []domain.ServiceRecord
	for _, record := range r.records {
		if filter.StoreID != "" && record.StoreID != filter.StoreID {
			continue
		}
		if filter.MachineCode != "" && record.MachineCode != filter.MachineCode {
			continue
		}
		if filter.MachineCodeLike != "" && !strings.Contains(strings.ToLower(record.MachineCode), strings.ToLower(filter.MachineCodeLike)) {
			continue
		}
		if filter.OnDate != nil && !record.ServiceDate.Truncate(24*time.Hour).Equal(filter.OnDate.Truncate(24*time.Hour)) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

type memReportRepo struct {
	saved []domain.Report
}

func (r *memReportRepo) Save(_ context.Context, report *domain.Report) error {
	report.CreatedAt = time.Now()
	r.saved = append(r.saved, *report)
	return nil
}

func (r *memReportRepo) List(_ context.Context, storeID string, limit int) ([]domain.Report, error) {
	var out []domain.Report
	for _, report := range r.saved {
		if storeID != "" && (report.StoreID == nil || *report.StoreID != storeID) {
			continue
		}
		out = append(out, report)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memReportRepo) GetByID(_ context.Context, id, storeID string) (*domain.Report, error) {
	for _, report := range r.saved {
		if report.ID != id {
			continue
		}
		if storeID != "" && (report.StoreID == nil || *report.StoreID != storeID) {
			continue
		}
		copied := report
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memReportRepo) FinancialAggregates(context.Context, string, time.Time, time.Time) ([]repository.FinancialAggregate, error) {
	return nil, nil
}

func (r *memReportRepo) TechnicianAggregates(context.Context, string, time.Time, time.Time) ([]repository.TechnicianAggregate, error) {
	return nil, nil
}

type memReferenceRepo struct{}

func (memReferenceRepo) ListServiceTypes(context.Context) ([]domain.ServiceType, error) {
	return []domain.ServiceType{{ID: "preventive", Name: "Manutenção Preventiva", IsActive: true}}, nil
}

func (memReferenceRepo) ListTechnicians(context.Context) ([]domain.Technician, error) {
	return []domain.Technician{{ID: 1, Name: "Carlos", IsActive: true}}, nil
}

const testSecret = "router-test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		return string(h)
	}

	interlagos := "GPInterlagos"
	users := &memUserRepo{users: map[string]*domain.User{
		"admin": {
			ID: "1", Username: "admin", PasswordHash: hash("admin-pass"),
			Role: domain.RoleAdmin, FullName: "Administrador", IsActive: true,
		},
		"store42": {
			ID: "42", Username: "store42", PasswordHash: hash("correct"),
			Role: domain.RoleStore, StoreID: &interlagos, FullName: "GP Interlagos", IsActive: true,
		},
	}}
	stores := &memStoreRepo{stores: map[string]*domain.Store{
		"GPInterlagos": {ID: "GPInterlagos", Name: "GP Interlagos", Region: "São Paulo", IsActive: true},
		"GPMorumbi":    {ID: "GPMorumbi", Name: "GP Morumbi", Region: "São Paulo", IsActive: true},
	}}
	serviceRepo := &memServiceRepo{}

	cfg := config.AuthConfig{JWTSecret: testSecret, TokenTTLHours: 24, BcryptCost: bcrypt.MinCost}
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users, StoreRepo: stores})
	reportService := service.NewReportService(serviceRepo, stores, &memReportRepo{}, nil)
	recordService := service.NewRecordService(serviceRepo, stores, nil, reportService)
	referenceService := service.NewReferenceService(stores, memReferenceRepo{}, nil)

	logger := zap.NewNop()
	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Services:       handlers.NewServicesHandler(recordService),
		Reports:        handlers.NewReportsHandler(reportService),
		Reference:      handlers.NewReferenceHandler(referenceService),
		AuthMiddleware: auth.NewMiddleware(authService.Codec()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, raw := doJSON(t, app, stdhttp.MethodPost, "/auth/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))

	var parsed struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Role  string  `json:"role"`
			Store *string `json:"store"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.True(t, parsed.Success)
	require.NotEmpty(t, parsed.Token)
	return parsed.Token
}

func TestLoginValidation(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, stdhttp.MethodPost, "/auth/login", "", fiber.Map{"username": "admin"})
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
}

func TestLoginFailureShapesIdentical(t *testing.T) {
	app := newTestApp(t)

	resp1, body1 := doJSON(t, app, stdhttp.MethodPost, "/auth/login", "", fiber.Map{"username": "nouser", "password": "x"})
	resp2, body2 := doJSON(t, app, stdhttp.MethodPost, "/auth/login", "", fiber.Map{"username": "store42", "password": "wrong"})

	assert.Equal(t, stdhttp.StatusUnauthorized, resp1.StatusCode)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp2.StatusCode)
	assert.Equal(t, string(body1), string(body2), "unknown user and wrong password must be indistinguishable")
}

func TestStoreUserForbiddenOnForeignStoreReport(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "store42", "correct")

	resp, _ := doJSON(t, app, stdhttp.MethodPost, "/reports/store", token, fiber.Map{
		"storeId":   "GPMorumbi",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
	})
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
}

func TestAdminAllowedOnAnyStoreReport(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", "admin-pass")

	resp, raw := doJSON(t, app, stdhttp.MethodPost, "/reports/store", token, fiber.Map{
		"storeId":   "GPMorumbi",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
	})
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
}

func TestVerifyExpiredTokenUnauthenticated(t *testing.T) {
	app := newTestApp(t)

	past := time.Now().Add(-25 * time.Hour)
	stale := auth.NewTokenCodec(testSecret, 24*time.Hour).WithClock(func() time.Time { return past })
	token, _, err := stale.Encode("1", "admin", domain.RoleAdmin, "", "Administrador")
	require.NoError(t, err)

	resp, _ := doJSON(t, app, stdhttp.MethodGet, "/auth/verify", token, nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyTamperedTokenForbidden(t *testing.T) {
	app := newTestApp(t)

	other := auth.NewTokenCodec("some-other-secret", 24*time.Hour)
	token, _, err := other.Encode("1", "admin", domain.RoleAdmin, "", "Administrador")
	require.NoError(t, err)

	resp, _ := doJSON(t, app, stdhttp.MethodGet, "/auth/verify", token, nil)
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
}

func TestVerifyValidToken(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "store42", "correct")

	resp, raw := doJSON(t, app, stdhttp.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	var parsed struct {
		Valid bool `json:"valid"`
		User  struct {
			ID    string  `json:"id"`
			Role  string  `json:"role"`
			Store *string `json:"store"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.True(t, parsed.Valid)
	assert.Equal(t, "42", parsed.User.ID)
	assert.Equal(t, "store", parsed.User.Role)
	require.NotNil(t, parsed.User.Store)
	assert.Equal(t, "GPInterlagos", *parsed.User.Store)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, stdhttp.MethodGet, "/services", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", "admin-pass")

	resp, raw := doJSON(t, app, stdhttp.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(raw))

	resp, _ = doJSON(t, app, stdhttp.MethodPost, "/auth/logout", "garbage", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestServiceCreateWithoutStoreRejected(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", "admin-pass")

	resp, _ := doJSON(t, app, stdhttp.MethodPost, "/services", token, fiber.Map{
		"machineCode":   "ELEV-01",
		"machineType":   "Elevador",
		"location":      "Subsolo",
		"serviceTypeId": "preventive",
		"technicianId":  1,
		"serviceDate":   "2024-03-05T00:00:00Z",
		"description":   "Troca de cabos",
		"cost":          100,
	})
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
}

func TestServiceLifecycleStoreScoped(t *testing.T) {
	app := newTestApp(t)
	storeToken := login(t, app, "store42", "correct")

	resp, raw := doJSON(t, app, stdhttp.MethodPost, "/services", storeToken, fiber.Map{
		"machineCode":   "ELEV-01",
		"machineType":   "Elevador",
		"storeId":       "GPInterlagos",
		"location":      "Subsolo",
		"serviceTypeId": "preventive",
		"technicianId":  1,
		"serviceDate":   "2024-03-05T00:00:00Z",
		"description":   "Troca de cabos",
		"cost":          100,
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode, string(raw))

	resp, _ = doJSON(t, app, stdhttp.MethodPost, "/services", storeToken, fiber.Map{
		"machineCode":   "ELEV-09",
		"machineType":   "Elevador",
		"storeId":       "GPMorumbi",
		"location":      "Térreo",
		"serviceTypeId": "preventive",
		"technicianId":  1,
		"serviceDate":   "2024-03-05T00:00:00Z",
		"description":   "Troca de cabos",
		"cost":          100,
	})
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	resp, raw = doJSON(t, app, stdhttp.MethodGet, "/services", storeToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var listed struct {
		Services []struct {
			StoreID string `json:"storeId"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(raw, &listed))
	require.Len(t, listed.Services, 1)
	assert.Equal(t, "GPInterlagos", listed.Services[0].StoreID)
}

func TestReferenceCatalogs(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "store42", "correct")

	resp, raw := doJSON(t, app, stdhttp.MethodGet, "/stores", token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "GPInterlagos")

	resp, _ = doJSON(t, app, stdhttp.MethodGet, "/service-types", token, nil)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, stdhttp.MethodGet, "/technicians", token, nil)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, stdhttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestServiceSearch(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "store42", "correct")

	resp, _ := doJSON(t, app, stdhttp.MethodGet, "/services/search", token, nil)
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode, "at least one criterion is required")

	resp, raw := doJSON(t, app, stdhttp.MethodPost, "/services", token, fiber.Map{
		"machineCode":   "ELEV-01",
		"machineType":   "Elevador",
		"storeId":       "GPInterlagos",
		"location":      "Subsolo",
		"serviceTypeId": "preventive",
		"technicianId":  1,
		"serviceDate":   "2024-03-05T00:00:00Z",
		"description":   "Troca de cabos",
		"cost":          100,
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, app, stdhttp.MethodGet, "/services/search?machineCode=elev", token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var found struct {
		Services []struct {
			MachineCode string `json:"machineCode"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(raw, &found))
	require.Len(t, found.Services, 1)
	assert.Equal(t, "ELEV-01", found.Services[0].MachineCode)
}

func TestSavedReportRoundTrip(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", "admin-pass")

	resp, raw := doJSON(t, app, stdhttp.MethodPost, "/reports/store", token, fiber.Map{
		"storeId":   "GPInterlagos",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	var created struct {
		ReportID string `json:"reportId"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.ReportID)

	resp, raw = doJSON(t, app, stdhttp.MethodGet, "/reports", token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var listed struct {
		Reports []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(raw, &listed))
	require.Len(t, listed.Reports, 1)
	assert.Equal(t, created.ReportID, listed.Reports[0].ID)
	assert.Equal(t, "store_summary", listed.Reports[0].Type)

	resp, raw = doJSON(t, app, stdhttp.MethodGet, "/reports/"+created.ReportID, token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "storeInfo", "get returns the persisted payload")

	storeToken := login(t, app, "store42", "correct")
	resp, _ = doJSON(t, app, stdhttp.MethodGet, "/reports/"+created.ReportID, storeToken, nil)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode, "own-store report is readable")

	resp, raw = doJSON(t, app, stdhttp.MethodPost, "/reports/store", token, fiber.Map{
		"storeId":   "GPMorumbi",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	var foreign struct {
		ReportID string `json:"reportId"`
	}
	require.NoError(t, json.Unmarshal(raw, &foreign))

	resp, _ = doJSON(t, app, stdhttp.MethodGet, "/reports/"+foreign.ReportID, storeToken, nil)
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode, "a foreign report reads as not found")
}

func TestTechnicianReportEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", "admin-pass")

	resp, raw := doJSON(t, app, stdhttp.MethodPost, "/reports/technicians", token, fiber.Map{
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "totalTechnicians")
}

func TestChangePasswordEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "store42", "correct")

	resp, _ := doJSON(t, app, stdhttp.MethodPost, "/auth/password", token, fiber.Map{
		"currentPassword": "wrong",
		"newPassword":     "fresh-pass",
	})
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, stdhttp.MethodPost, "/auth/password", token, fiber.Map{
		"currentPassword": "correct",
		"newPassword":     "fresh-pass",
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	login(t, app, "store42", "fresh-pass")
}

func TestDeactivateUserAdminOnly(t *testing.T) {
	app := newTestApp(t)
	storeToken := login(t, app, "store42", "correct")

	resp, _ := doJSON(t, app, stdhttp.MethodPost, "/auth/users/1/deactivate", storeToken, nil)
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	adminToken := login(t, app, "admin", "admin-pass")
	resp, _ = doJSON(t, app, stdhttp.MethodPost, "/auth/users/42/deactivate", adminToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, stdhttp.MethodPost, "/auth/login", "", fiber.Map{
		"username": "store42",
		"password": "correct",
	})
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode, "deactivated account can no longer log in")
}
