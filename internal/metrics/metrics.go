package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the planner and booking metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	DraftsGenerated    prometheus.Counter
	EmptyResults       prometheus.Counter
	ResolverFallbacks  prometheus.Counter
	DayShortfalls      prometheus.Counter
	ItinerariesSaved   prometheus.Counter
	BookingsCreated    prometheus.Counter
	GenerationDuration prometheus.Histogram
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		DraftsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_generated_total",
			Help:      "Total number of itinerary drafts generated",
		}),
		EmptyResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_results_total",
			Help:      "Generation requests that matched no experiences",
		}),
		ResolverFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_fallbacks_total",
			Help:      "Generation requests whose area had no known coordinate",
		}),
		DayShortfalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_shortfalls_total",
			Help:      "Trip days scheduled below their quota",
		}),
		ItinerariesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "itineraries_saved_total",
			Help:      "Accepted drafts persisted",
		}),
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings derived from accepted drafts",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating a draft",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.DraftsGenerated,
		c.EmptyResults,
		c.ResolverFallbacks,
		c.DayShortfalls,
		c.ItinerariesSaved,
		c.BookingsCreated,
		c.GenerationDuration,
	)
	return c
}

// Registry exposes the underlying registry for gathering in tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
