package cart

import "github.com/prometheus/client_golang/prometheus"

const (
	opAdd         = "add"
	opRemove      = "remove"
	opSetQuantity = "set_quantity"

	outcomeOK         = "ok"
	outcomeNoop       = "noop"
	outcomeOutOfStock = "out_of_stock"
	outcomeNotInCart  = "not_in_cart"
	outcomeUpstream   = "upstream_error"
	outcomeInvalid    = "invalid_product"
)

// Metrics is optional; a nil *Metrics records nothing.
type Metrics struct {
	Operations  *prometheus.CounterVec
	StoreWrites *prometheus.CounterVec
	LineItems   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "minicart",
				Subsystem: "cart",
				Name:      "operations_total",
				Help:      "Cart operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		StoreWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "minicart",
				Subsystem: "cart",
				Name:      "store_writes_total",
				Help:      "Durable store writes by result",
			},
			[]string{"result"},
		),
		LineItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "minicart",
				Subsystem: "cart",
				Name:      "line_items",
				Help:      "Line items in the current snapshot",
			},
		),
	}

	reg.MustRegister(m.Operations, m.StoreWrites, m.LineItems)
	return m
}

func (m *Metrics) observe(op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) storeWrite(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.StoreWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) setLines(n int) {
	if m == nil {
		return
	}
	m.LineItems.Set(float64(n))
}
