package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics groups the counters recorded while matching a corpus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Sentences counts sentences evaluated against a rule set.
	Sentences prometheus.Counter

	// Mentions counts emitted mentions, labeled by rule name.
	Mentions *prometheus.CounterVec

	// CompileErrors counts rule files that failed to compile.
	CompileErrors prometheus.Counter

	// FileDuration measures how long a corpus file takes to read and match.
	FileDuration prometheus.Histogram
}

// New registers the depmatch metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Sentences: factory.NewCounter(prometheus.CounterOpts{
			Name: "depmatch_sentences_total",
			Help: "Total number of sentences matched against the rule set",
		}),
		Mentions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depmatch_mentions_total",
				Help: "Total number of mentions emitted",
			},
			[]string{"rule"},
		),
		CompileErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "depmatch_rule_compile_errors_total",
			Help: "Total number of rule files that failed to compile",
		}),
		FileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "depmatch_file_duration_seconds",
			Help: "Duration of reading and matching one corpus file",
			// from tiny fixtures to large treebanks
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
	}
}

// ObserveSentence records one matched sentence.
func (m *Metrics) ObserveSentence() {
	if m == nil {
		return
	}
	m.Sentences.Inc()
}

// ObserveMention records one mention of rule.
func (m *Metrics) ObserveMention(rule string) {
	if m == nil {
		return
	}
	m.Mentions.WithLabelValues(rule).Inc()
}

// ObserveCompileError records a rule file that failed to compile.
func (m *Metrics) ObserveCompileError() {
	if m == nil {
		return
	}
	m.CompileErrors.Inc()
}

// ObserveFile records the processing time of one corpus file in seconds.
func (m *Metrics) ObserveFile(seconds float64) {
	if m == nil {
		return
	}
	m.FileDuration.Observe(seconds)
}

// WriteFile writes every metric gathered from g to path in the Prometheus
// text format, for node_exporter's textfile collector.
func WriteFile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Handler serves the metrics gathered from g.
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes Handler(g) on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("metrics server failed: %w", err)
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Metrics server shutdown error", zap.Error(err))
	}
	return <-errc
}
