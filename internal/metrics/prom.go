package metrics

import (
	"net/http"
	"time"

	"calorina/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors are the Prometheus instruments for assistant activity.
type Collectors struct {
	registry  *prometheus.Registry
	turns     *prometheus.CounterVec
	tokens    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	dietPlans *prometheus.CounterVec
}

// NewCollectors registers the instruments on a fresh registry together with
// the Go runtime and process collectors.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calorina",
			Name:      "assistant_turns_total",
			Help:      "Assistant turns by phase and outcome.",
		}, []string{"phase", "outcome"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calorina",
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by model and kind.",
		}, []string{"model", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "calorina",
			Name:      "assistant_turn_duration_seconds",
			Help:      "Latency of assistant turns.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"phase"}),
		dietPlans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calorina",
			Name:      "diet_plans_generated_total",
			Help:      "Diet plans synthesized by source.",
		}, []string{"source"}),
	}

	c.registry.MustRegister(
		c.turns, c.tokens, c.latency, c.dietPlans,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveTurn records one assistant turn.
func (c *Collectors) ObserveTurn(meta shared.AgentMeta, outcome string) {
	c.turns.WithLabelValues(meta.AgentName, outcome).Inc()
	c.latency.WithLabelValues(meta.AgentName).Observe(meta.Latency.Seconds())

	model := meta.Usage.Model
	if model == "" {
		model = "unknown"
	}
	c.tokens.WithLabelValues(model, "prompt").Add(float64(meta.Usage.PromptTokens))
	c.tokens.WithLabelValues(model, "completion").Add(float64(meta.Usage.CompletionTokens))
}

// ObserveDietPlan records a synthesized diet plan.
func (c *Collectors) ObserveDietPlan(source string) {
	c.dietPlans.WithLabelValues(source).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Timeout: 10 * time.Second})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}
