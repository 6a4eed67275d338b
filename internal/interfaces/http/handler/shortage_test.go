package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shortageapp "github.com/pharmanet/backend/internal/application/shortage"
	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shortage"
	"github.com/pharmanet/backend/internal/interfaces/http/dto"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

type memReportRepo struct {
	reports map[uuid.UUID]*shortage.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: map[uuid.UUID]*shortage.Report{}}
}

func (r *memReportRepo) FindByID(_ context.Context, id uuid.UUID) (*shortage.Report, error) {
	report, ok := r.reports[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return report, nil
}

func (r *memReportRepo) FindAll(_ context.Context, _ shared.Filter) ([]shortage.Report, error) {
	out := make([]shortage.Report, 0, len(r.reports))
	for _, report := range r.reports {
		out = append(out, *report)
	}
	return out, nil
}

func (r *memReportRepo) FindOpen(_ context.Context, _ shared.Filter) ([]shortage.Report, error) {
	var out []shortage.Report
	for _, report := range r.reports {
		if report.Status == shortage.StatusOpen {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *memReportRepo) FindByRequester(_ context.Context, branchID uuid.UUID, _ shared.Filter) ([]shortage.Report, error) {
	var out []shortage.Report
	for _, report := range r.reports {
		if report.RequesterBranchID == branchID {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *memReportRepo) Save(_ context.Context, report *shortage.Report) error {
	r.reports[report.ID] = report
	return nil
}

func (r *memReportRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.reports)), nil
}

// identityStub plants authentication context the way the JWT middleware
// would after validating a token.
func identityStub(userID uuid.UUID, role identity.Role, branchID *uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID.String())
		c.Set(middleware.ContextRoleKey, string(role))
		if branchID != nil {
			c.Set(middleware.ContextBranchIDKey, branchID.String())
		}
		c.Next()
	}
}

func newShortageTestServer(t *testing.T, repo *memReportRepo, role identity.Role, branchID *uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := shortageapp.NewService(repo, nil, zap.NewNop())
	h := NewShortageHandler(service, zap.NewNop())

	engine := gin.New()
	engine.Use(identityStub(uuid.New(), role, branchID))
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func seedReport(t *testing.T, repo *memReportRepo, branchID uuid.UUID, code string, qty int64) *shortage.Report {
	t.Helper()
	report, err := shortage.NewReport(branchID, code, qty)
	require.NoError(t, err)
	report.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), report))
	return report
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestShortageHandler_Resolve(t *testing.T) {
	branchID := uuid.New()

	t.Run("resolves open report", func(t *testing.T) {
		repo := newMemReportRepo()
		report := seedReport(t, repo, branchID, "PARA-500", 40)
		engine := newShortageTestServer(t, repo, identity.RoleShortageManager, nil)

		body, _ := json.Marshal(gin.H{"provided_quantity": 25})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shortages/"+report.ID.String()+"/resolve", bytes.NewReader(body))
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)

		stored := repo.reports[report.ID]
		assert.Equal(t, shortage.StatusResolved, stored.Status)
		require.NotNil(t, stored.ProvidedQuantity)
		assert.Equal(t, int64(25), *stored.ProvidedQuantity)
	})

	t.Run("unknown report returns 404", func(t *testing.T) {
		repo := newMemReportRepo()
		engine := newShortageTestServer(t, repo, identity.RoleShortageManager, nil)

		body, _ := json.Marshal(gin.H{"provided_quantity": 10})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shortages/"+uuid.NewString()+"/resolve", bytes.NewReader(body))
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("missing quantity returns 400", func(t *testing.T) {
		repo := newMemReportRepo()
		report := seedReport(t, repo, branchID, "PARA-500", 40)
		engine := newShortageTestServer(t, repo, identity.RoleShortageManager, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shortages/"+report.ID.String()+"/resolve", bytes.NewReader([]byte(`{}`)))
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong role returns 403", func(t *testing.T) {
		repo := newMemReportRepo()
		report := seedReport(t, repo, branchID, "PARA-500", 40)
		engine := newShortageTestServer(t, repo, identity.RoleDelivery, nil)

		body, _ := json.Marshal(gin.H{"provided_quantity": 10})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shortages/"+report.ID.String()+"/resolve", bytes.NewReader(body))
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestShortageHandler_ListMine(t *testing.T) {
	branchID := uuid.New()
	otherBranch := uuid.New()

	repo := newMemReportRepo()
	seedReport(t, repo, branchID, "PARA-500", 40)
	seedReport(t, repo, branchID, "IBU-200", 15)
	seedReport(t, repo, otherBranch, "AMOX-250", 30)

	engine := newShortageTestServer(t, repo, identity.RoleBranchManager, &branchID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shortages/mine", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	views, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, views, 2)
}

func TestShortageHandler_ListMineWithoutBranch(t *testing.T) {
	repo := newMemReportRepo()
	engine := newShortageTestServer(t, repo, identity.RoleBranchManager, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shortages/mine", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
