package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	studenthandler "unemigw/internal/student/handler"
	"unemigw/internal/student/models"
)

type RouterSuite struct {
	suite.Suite
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

type noopService struct{}

func (noopService) GetStudentData(_ context.Context, req models.StudentDataRequest) (models.Result, error) {
	return models.Result{PublicData: models.PublicRecord{Documento: req.Documento}}, nil
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func newRouter(h HealthChecker) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(studenthandler.New(noopService{}, logger), logger, h)
}

func (s *RouterSuite) TestHealth() {
	s.Run("ok without redis", func() {
		rec := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"status": "ok"}`, rec.Body.String())
	})

	s.Run("ok with healthy redis", func() {
		rec := httptest.NewRecorder()
		h := healthFunc(func(context.Context) error { return nil })
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"status": "ok", "redis": "ok"}`, rec.Body.String())
	})

	s.Run("degraded when redis is down", func() {
		rec := httptest.NewRecorder()
		h := healthFunc(func(context.Context) error { return errors.New("connection refused") })
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}

func (s *RouterSuite) TestMetricsEndpoint() {
	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestRequestIDHeader() {
	s.Run("generates one when absent", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/student/public", nil)
		newRouter(nil).ServeHTTP(rec, req)
		s.NotEmpty(rec.Header().Get("X-Request-Id"))
	})

	s.Run("honors an inbound id", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/student/public", nil)
		req.Header.Set("X-Request-Id", "req-42")
		newRouter(nil).ServeHTTP(rec, req)
		s.Equal("req-42", rec.Header().Get("X-Request-Id"))
	})
}
