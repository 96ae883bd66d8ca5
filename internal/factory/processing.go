package factory

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetops/fleetquery/internal/domain/entity"
	"github.com/fleetops/fleetquery/internal/livequery"
	"github.com/fleetops/fleetquery/pkg/pipeline"
)

/*
 * CreateResultProcessing decorates the per-result processing as follow:
 *
 * panic --> duration --> retry --> count
 */
func CreateResultProcessing(registry prometheus.Registerer) (pipeline.Processing[entity.ResultEvent], error) {
	ret, err := livequery.NewCountResults(nil, registry, pipeline.MetricsConfig{Namespace: "results"})
	if err != nil {
		return nil, fmt.Errorf("failed to create result count processing: %w", err)
	}

	ret = pipeline.NewRetryProcessing(ret, pipeline.RetryConfig{})

	ret, err = pipeline.NewDurationMetricsDecoratorProcessing(ret, registry, clockwork.NewRealClock(), pipeline.MetricsConfig{Namespace: "results"})
	if err != nil {
		return nil, fmt.Errorf("failed to create duration metrics processor: %w", err)
	}

	ret = pipeline.NewPanicHandlerProcessing(ret)

	return ret, nil
}

/*
 * CreateErrorProcessing decorates the error processing as follow:
 *
 * panic --> error count
 */
func CreateErrorProcessing(registry prometheus.Registerer) (pipeline.ErrorProcessing, error) {
	ret, err := pipeline.NewErrorCountProcessing(registry, pipeline.MetricsConfig{Namespace: "errors"})
	if err != nil {
		return nil, fmt.Errorf("failed to create error count processing: %w", err)
	}

	ret = pipeline.NewPanicHandlerProcessing(ret)

	return ret, nil
}
