package livequery

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetops/fleetquery/internal/domain/entity"
	"github.com/fleetops/fleetquery/pkg/pipeline"
)

type CountResults struct {
	counter *prometheus.CounterVec
	inner   pipeline.Processing[entity.ResultEvent]
}

// NewCountResults counts collected result events, split by whether the
// host reported an error for the query.
func NewCountResults(p pipeline.Processing[entity.ResultEvent], registry prometheus.Registerer, config pipeline.MetricsConfig) (pipeline.Processing[entity.ResultEvent], error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "results_total",
		Help:      "Result event counter by host outcome.",
	}, []string{"outcome"})

	err := registry.Register(counter)
	if err != nil {
		return nil, fmt.Errorf("failed to register metric: %w", err)
	}

	ret := CountResults{
		counter: counter,
		inner:   p,
	}

	return ret, nil
}

func (p CountResults) Process(ctx context.Context, event entity.ResultEvent) error {
	outcome := "rows"
	if event.Error != nil {
		outcome = "error"
	}

	defer p.counter.WithLabelValues(outcome).Inc()

	if p.inner == nil {
		return nil
	}

	return p.inner.Process(ctx, event)
}
