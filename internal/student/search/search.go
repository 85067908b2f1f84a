// Package search fans a document-number lookup out to the three UNEMI
// systems. The fan-out is settle-style: each branch either fills its slot or
// leaves it nil; a failing system never aborts the other two and never
// surfaces an error to the caller.
package search

import (
	"context"
	"log/slog"
	"sync"

	"unemigw/internal/student/models"
)

// SGARecoverer searches the SGA system by document number.
type SGARecoverer interface {
	Recover(ctx context.Context, documento string) (models.Payload, error)
}

// PosgradoRecoverer searches the Selección Posgrado system.
type PosgradoRecoverer interface {
	Recover(ctx context.Context, documento string) (models.Payload, error)
}

// MatriculaSearcher searches the Matriculación system.
type MatriculaSearcher interface {
	Search(ctx context.Context, documento string) (models.Payload, error)
}

// Orchestrator runs the three-way search.
type Orchestrator struct {
	sga       SGARecoverer
	posgrado  PosgradoRecoverer
	matricula MatriculaSearcher
	logger    *slog.Logger
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func New(sga SGARecoverer, posgrado PosgradoRecoverer, matricula MatriculaSearcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sga:       sga,
		posgrado:  posgrado,
		matricula: matricula,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run issues the three searches concurrently and collects whatever came back.
func (o *Orchestrator) Run(ctx context.Context, documento string) models.SearchResult {
	var result models.SearchResult
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		result.SGA = o.settle(ctx, "sga", documento, o.sga.Recover)
	}()
	go func() {
		defer wg.Done()
		result.Posgrado = o.settle(ctx, "posgrado", documento, o.posgrado.Recover)
	}()
	go func() {
		defer wg.Done()
		result.Matricula = o.settle(ctx, "matricula", documento, o.matricula.Search)
	}()
	wg.Wait()

	return result
}

func (o *Orchestrator) settle(ctx context.Context, system, documento string, call func(context.Context, string) (models.Payload, error)) models.Payload {
	payload, err := call(ctx, documento)
	if err != nil {
		o.logger.Warn("upstream search failed", "system", system, "error", err)
		return nil
	}
	return payload
}
