package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/alejandrodnm/triarb/internal/ports"
)

const namespace = "triarb"

// Observer implements ports.Observer on a private Prometheus registry.
type Observer struct {
	reg *prometheus.Registry

	evaluations prometheus.Counter
	netBps      prometheus.Histogram
	skips       *prometheus.CounterVec
	triggers    *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	pnl         prometheus.Gauge
	aborts      *prometheus.CounterVec
	cancels     *prometheus.CounterVec
}

// NewObserver registers every collector, plus the Go and process collectors.
func NewObserver() *Observer {
	o := &Observer{
		reg: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "evaluations_total",
			Help: "Triangles priced with all three quotes present and enough liquidity",
		}),
		netBps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "triangle_net_bps",
			Help:    "Net edge in basis points per evaluation",
			Buckets: prometheus.LinearBuckets(-50, 5, 41),
		}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "skips_total",
			Help: "Evaluations that did not trigger, by reason",
		}, []string{"reason"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "triggers_total",
			Help: "Triggers dispatched for execution, by direction",
		}, []string{"direction"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "trades_committed_total",
			Help: "Committed trades by mode",
		}, []string{"mode"}),
		pnl: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "realized_pnl_quote",
			Help: "Cumulative estimated PnL in the quote asset",
		}),
		aborts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "aborts_total",
			Help: "Triggers refused or aborted, by kind",
		}, []string{"kind"}),
		cancels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "compensation_cancels_total",
			Help: "Compensating CancelAll results by kind",
		}, []string{"kind"}),
	}
	o.reg.MustRegister(
		o.evaluations, o.netBps, o.skips, o.triggers, o.outcomes, o.pnl, o.aborts, o.cancels,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return o
}

// Handler serves the registry in the Prometheus text format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.reg, promhttp.HandlerOpts{})
}

// Registry exposes the registry so callers can add their own collectors.
func (o *Observer) Registry() *prometheus.Registry {
	return o.reg
}

func (o *Observer) Evaluated(_ domain.Triangle, ev domain.Evaluation) {
	o.evaluations.Inc()
	o.netBps.Observe(ev.Edge * 10_000)
}

func (o *Observer) Skipped(_ domain.Triangle, reason ports.SkipReason) {
	o.skips.WithLabelValues(string(reason)).Inc()
}

func (o *Observer) Triggered(trig domain.Trigger) {
	o.triggers.WithLabelValues(trig.Direction.String()).Inc()
}

func (o *Observer) Committed(out domain.TradeOutcome) {
	o.outcomes.WithLabelValues(string(out.Mode)).Inc()
	o.pnl.Add(out.RealizedPnL)
}

func (o *Observer) Aborted(_ domain.Trigger, err error) {
	kind := "failed"
	if domain.IsRefusal(err) {
		kind = "refused"
	}
	o.aborts.WithLabelValues(kind).Inc()
}

func (o *Observer) Cancelled(res domain.CancelResult) {
	o.cancels.WithLabelValues(string(res.Kind)).Inc()
}
