package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the inventory reconciler's counters.
type Registry struct {
	reg *prometheus.Registry

	EventsConsumed    prometheus.Counter
	EventsDuplicate   prometheus.Counter
	EventsMalformed   prometheus.Counter
	LinesApplied      prometheus.Counter
	LinesInsufficient prometheus.Counter
	LinesUnknown      prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_events_consumed_total"})
	duplicate := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_events_duplicate_total"})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_events_malformed_total"})
	applied := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_lines_applied_total"})
	insufficient := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_lines_insufficient_total"})
	unknown := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_lines_unknown_product_total"})

	r.MustRegister(consumed, duplicate, malformed, applied, insufficient, unknown)

	return &Registry{
		reg:               r,
		EventsConsumed:    consumed,
		EventsDuplicate:   duplicate,
		EventsMalformed:   malformed,
		LinesApplied:      applied,
		LinesInsufficient: insufficient,
		LinesUnknown:      unknown,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
