// Package student orchestrates a full document resolution: cache lookup,
// three-way search, the authenticated flow and record assembly, with an
// outcome-dependent TTL on everything it caches.
package student

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"unemigw/internal/platform/config"
	"unemigw/internal/platform/metrics"
	"unemigw/internal/student/assemble"
	"unemigw/internal/student/cache"
	"unemigw/internal/student/flow"
	"unemigw/internal/student/models"
)

// Pending-action markers surfaced through the perfiles field.
const (
	TagFichaSocioeconomica = "ficha socioeconomica"
	TagChangePassword      = "changepassword"
)

// Searcher runs the three-way document search.
type Searcher interface {
	Run(ctx context.Context, documento string) models.SearchResult
}

// FlowRunner drives the authenticated login flow.
type FlowRunner interface {
	Run(ctx context.Context, in flow.Input) (flow.Outcome, error)
}

type Service struct {
	search  Searcher
	flow    FlowRunner
	cache   cache.Store
	ttl     config.CacheConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(search Searcher, flowRunner FlowRunner, store cache.Store, ttl config.CacheConfig, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		search:  search,
		flow:    flowRunner,
		cache:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStudentData resolves a document number into the response envelope. An
// error return means a required upstream was unreachable; every recognizable
// business state produces a cached result instead.
func (s *Service) GetStudentData(ctx context.Context, req models.StudentDataRequest) (models.Result, error) {
	key := cache.Key(req.Documento, req.Public, req.Private)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		s.metrics.ObserveCache(true)
		s.logger.Debug("cache hit", "key", key)
		return cached, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		// A broken cache degrades to a miss; the upstreams still answer.
		s.logger.Warn("cache read failed", "key", key, "error", err)
	}
	s.metrics.ObserveCache(false)

	search := s.search.Run(ctx, req.Documento)

	username := assemble.Username(search)
	if username == "" {
		result := models.Result{PublicData: assemble.NotFound(req.Documento)}
		s.store(ctx, key, result, s.ttl.ShortTTL)
		s.metrics.ObserveOutcome("not_found")
		return result, nil
	}

	// Public-only mode never logs in.
	if req.Public && !req.Private {
		result := models.Result{PublicData: assemble.FromSearch(search, req.Documento)}
		s.store(ctx, key, result, s.ttl.LongTTL)
		s.metrics.ObserveOutcome("search_only")
		return result, nil
	}

	outcome, err := s.flow.Run(ctx, flow.Input{
		Documento: req.Documento,
		Username:  username,
		Password:  req.Password,
		Reset:     req.ResetPassword,
		Search:    search,
	})
	if err != nil {
		return models.Result{}, err
	}
	s.metrics.ObserveOutcome(string(outcome.Kind))

	var result models.Result
	ttl := s.ttl.LongTTL

	switch outcome.Kind {
	case flow.KindPublicOnly, flow.KindNoProfiles:
		result = models.Result{PublicData: assemble.FromSearch(search, req.Documento)}
	case flow.KindFichaRequired:
		result = models.Result{PublicData: assemble.Tagged(search, req.Documento, TagFichaSocioeconomica)}
		ttl = s.ttl.ShortTTL
	case flow.KindChangePassword:
		result = models.Result{PublicData: assemble.Tagged(search, req.Documento, TagChangePassword)}
		ttl = s.ttl.ShortTTL
	case flow.KindSuccess:
		result = s.buildSuccess(search, req.Documento, outcome)
	default:
		result = models.Result{PublicData: assemble.FromSearch(search, req.Documento)}
	}

	s.store(ctx, key, result, ttl)
	return result, nil
}

// buildSuccess assembles one public candidate per profile and keeps the most
// complete one, plus the private record for the active profile.
func (s *Service) buildSuccess(search models.SearchResult, documento string, outcome flow.Outcome) models.Result {
	password := models.StrPtr(outcome.Password)

	candidates := make([]models.PublicRecord, 0, len(outcome.Profiles))
	for range outcome.Profiles {
		candidates = append(candidates, assemble.Success(search, documento, outcome.Academic, outcome.Profiles, password))
	}

	public := assemble.Success(search, documento, outcome.Academic, outcome.Profiles, password)
	if chosen := assemble.ChooseBest(candidates); chosen != nil {
		public = *chosen
	}

	return models.Result{
		PublicData:  public,
		PrivateData: assemble.Private(outcome.Academic, outcome.Profiles[0].ID, time.Now()),
	}
}

func (s *Service) store(ctx context.Context, key string, result models.Result, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, result, ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
