package student

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unemigw/internal/platform/config"
	"unemigw/internal/student/cache"
	"unemigw/internal/student/flow"
	"unemigw/internal/student/models"
	"unemigw/internal/student/token"
)

type ServiceSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ServiceSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// ----------------------------------------------------------------------------
// Fakes
// ----------------------------------------------------------------------------

type stubSearch struct {
	result models.SearchResult
	calls  int
}

func (s *stubSearch) Run(_ context.Context, _ string) models.SearchResult {
	s.calls++
	return s.result
}

type stubFlow struct {
	outcome flow.Outcome
	err     error
	calls   int
	last    flow.Input
}

func (s *stubFlow) Run(_ context.Context, in flow.Input) (flow.Outcome, error) {
	s.calls++
	s.last = in
	return s.outcome, s.err
}

// spyStore wraps the in-memory store and records the TTL of the last write.
type spyStore struct {
	cache.Store
	lastTTL time.Duration
	sets    int
}

func (s *spyStore) Set(ctx context.Context, key string, result models.Result, ttl time.Duration) error {
	s.lastTTL = ttl
	s.sets++
	return s.Store.Set(ctx, key, result, ttl)
}

func knownSearch() models.SearchResult {
	return models.SearchResult{
		SGA: map[string]any{"data": map[string]any{
			"id":              float64(123),
			"usuario":         "jperez",
			"nombre_completo": "JUAN CARLOS PEREZ GOMEZ",
		}},
	}
}

var testTTL = config.CacheConfig{ShortTTL: 5 * time.Minute, LongTTL: time.Hour}

func newTestService(search *stubSearch, flowRunner *stubFlow, store cache.Store) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(search, flowRunner, store, testTTL, nil, WithLogger(logger))
}

// ----------------------------------------------------------------------------
// Tests
// ----------------------------------------------------------------------------

func (s *ServiceSuite) TestUnknownDocument() {
	search := &stubSearch{}
	flowRunner := &stubFlow{}
	store := &spyStore{Store: cache.NewInMemoryStore()}
	svc := newTestService(search, flowRunner, store)

	result, err := svc.GetStudentData(s.ctx, models.StudentDataRequest{
		Documento: "0000000000", Public: true, Private: true,
	})
	s.Require().NoError(err)

	s.Equal("0000000000", result.PublicData.Documento)
	s.Nil(result.PublicData.Usuario)
	s.Nil(result.PrivateData)
	s.Equal(0, flowRunner.calls)
	s.Equal(testTTL.ShortTTL, store.lastTTL)
}

func (s *ServiceSuite) TestCacheHitSkipsUpstreams() {
	search := &stubSearch{result: knownSearch()}
	flowRunner := &stubFlow{outcome: flow.Outcome{Kind: flow.KindPublicOnly}}
	svc := newTestService(search, flowRunner, cache.NewInMemoryStore())

	req := models.StudentDataRequest{Documento: "0912345678", Public: true, Private: true}

	first, err := svc.GetStudentData(s.ctx, req)
	s.Require().NoError(err)
	second, err := svc.GetStudentData(s.ctx, req)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, search.calls)
	s.Equal(1, flowRunner.calls)
}

func (s *ServiceSuite) TestPublicModeSkipsLogin() {
	search := &stubSearch{result: knownSearch()}
	flowRunner := &stubFlow{}
	store := &spyStore{Store: cache.NewInMemoryStore()}
	svc := newTestService(search, flowRunner, store)

	result, err := svc.GetStudentData(s.ctx, models.StudentDataRequest{
		Documento: "0912345678", Public: true,
	})
	s.Require().NoError(err)

	s.Equal(0, flowRunner.calls)
	s.Require().NotNil(result.PublicData.Usuario)
	s.Equal("jperez", *result.PublicData.Usuario)
	s.Nil(result.PrivateData)
	s.Equal(testTTL.LongTTL, store.lastTTL)
}

func (s *ServiceSuite) TestFullFlowSuccess() {
	academic := models.AcademicData{
		Materias: map[string]any{"data": map[string]any{
			"es_admision": false,
			"es_pregrado": true,
		}},
		Malla:    map[string]any{"data": map[string]any{}},
		Horario:  map[string]any{"data": map[string]any{}},
		HojaVida: map[string]any{"data": map[string]any{}},
	}
	search := &stubSearch{result: knownSearch()}
	flowRunner := &stubFlow{outcome: flow.Outcome{
		Kind:     flow.KindSuccess,
		Profiles: []token.Profile{{ID: "1", Type: "Grado"}, {ID: "2", Type: "Posgrado"}},
		Academic: academic,
		Password: "0912345678",
	}}
	store := &spyStore{Store: cache.NewInMemoryStore()}
	svc := newTestService(search, flowRunner, store)

	result, err := svc.GetStudentData(s.ctx, models.StudentDataRequest{
		Documento: "0912345678", Public: true, Private: true,
	})
	s.Require().NoError(err)

	s.Run("flow receives the extracted username", func() {
		s.Equal("jperez", flowRunner.last.Username)
		s.Equal("0912345678", flowRunner.last.Documento)
	})

	s.Run("public record carries profiles and the working password", func() {
		s.Equal([]string{"1", "2"}, result.PublicData.Perfiles)
		s.Require().NotNil(result.PublicData.Password)
		s.Equal("0912345678", *result.PublicData.Password)
		s.Require().NotNil(result.PublicData.EsPregrado)
		s.True(*result.PublicData.EsPregrado)
	})

	s.Run("private record targets the active profile", func() {
		s.Require().NotNil(result.PrivateData)
		s.Require().NotNil(result.PrivateData.IDPerfil)
		s.Equal("1", *result.PrivateData.IDPerfil)
	})

	s.Equal(testTTL.LongTTL, store.lastTTL)
}

func (s *ServiceSuite) TestPendingActionOutcomes() {
	cases := []struct {
		name string
		kind flow.Kind
		tag  string
	}{
		{"ficha socioeconomica pending", flow.KindFichaRequired, TagFichaSocioeconomica},
		{"password change pending", flow.KindChangePassword, TagChangePassword},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			search := &stubSearch{result: knownSearch()}
			flowRunner := &stubFlow{outcome: flow.Outcome{Kind: tc.kind}}
			store := &spyStore{Store: cache.NewInMemoryStore()}
			svc := newTestService(search, flowRunner, store)

			result, err := svc.GetStudentData(s.ctx, models.StudentDataRequest{
				Documento: "0912345678", Public: true, Private: true,
			})
			s.Require().NoError(err)

			s.Equal([]string{tc.tag}, result.PublicData.Perfiles)
			s.Nil(result.PrivateData)
			s.Equal(testTTL.ShortTTL, store.lastTTL)
		})
	}
}

func (s *ServiceSuite) TestPublicOnlyOutcome() {
	search := &stubSearch{result: knownSearch()}
	flowRunner := &stubFlow{outcome: flow.Outcome{Kind: flow.KindPublicOnly}}
	store := &spyStore{Store: cache.NewInMemoryStore()}
	svc := newTestService(search, flowRunner, store)

	result, err := svc.GetStudentData(s.ctx, models.StudentDataRequest{
		Documento: "0912345678", Public: true, Private: true,
	})
	s.Require().NoError(err)

	s.Nil(result.PublicData.Perfiles)
	s.Nil(result.PrivateData)
	s.Equal(testTTL.LongTTL, store.lastTTL)
}

func (s *ServiceSuite) TestFlowErrorIsNotCached() {
	search := &stubSearch{result: knownSearch()}
	flowRunner := &stubFlow{err: errors.New("sga unreachable")}
	store := &spyStore{Store: cache.NewInMemoryStore()}
	svc := newTestService(search, flowRunner, store)

	_, err := svc.GetStudentData(s.ctx, models.StudentDataRequest{
		Documento: "0912345678", Public: true, Private: true,
	})
	s.Error(err)
	s.Equal(0, store.sets)
}

// brokenStore fails every read to exercise the degrade-to-miss path.
type brokenStore struct {
	cache.Store
}

func (b *brokenStore) Get(_ context.Context, _ string) (models.Result, error) {
	return models.Result{}, errors.New("redis gone")
}

func (s *ServiceSuite) TestBrokenCacheDegradesToMiss() {
	search := &stubSearch{result: knownSearch()}
	flowRunner := &stubFlow{}
	svc := newTestService(search, flowRunner, &brokenStore{Store: cache.NewInMemoryStore()})

	result, err := svc.GetStudentData(s.ctx, models.StudentDataRequest{
		Documento: "0912345678", Public: true,
	})
	s.Require().NoError(err)
	s.Equal(1, search.calls)
	s.Require().NotNil(result.PublicData.Usuario)
}
