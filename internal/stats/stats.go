// Package stats exposes an association's congestion and queue state as
// Prometheus gauges/counters, in the style of the runZeroInc go-tcpinfo
// repositories' wrapping of low-level transport counters as
// prometheus.Collectors (see SPEC_FULL.md DOMAIN STACK).
package stats

import "github.com/prometheus/client_golang/prometheus"

// Collector holds one association's live gauges. Callers that don't
// want Prometheus involved simply leave Config.Stats nil; every method
// here tolerates a nil receiver so the association never has to check.
type Collector struct {
	CWND             prometheus.Gauge
	RWND             prometheus.Gauge
	SSThresh         prometheus.Gauge
	InflightBytes    prometheus.Gauge
	RetransmitsTotal prometheus.Counter
	FastRecoverTotal prometheus.Counter
}

// NewCollector builds a Collector with the given constant labels (e.g.
// {"assoc": xid}) and registers it with reg. Pass a fresh
// prometheus.Registry per association, or nil to skip registration.
func NewCollector(reg *prometheus.Registry, constLabels prometheus.Labels) *Collector {
	c := &Collector{
		CWND: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sctp_association_cwnd_bytes", Help: "congestion window", ConstLabels: constLabels,
		}),
		RWND: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sctp_association_rwnd_bytes", Help: "receiver window", ConstLabels: constLabels,
		}),
		SSThresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sctp_association_ssthresh_bytes", Help: "slow-start threshold", ConstLabels: constLabels,
		}),
		InflightBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sctp_association_inflight_bytes", Help: "bytes sent awaiting SACK", ConstLabels: constLabels,
		}),
		RetransmitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sctp_association_retransmits_total", Help: "DATA chunks retransmitted", ConstLabels: constLabels,
		}),
		FastRecoverTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sctp_association_fast_recovery_entries_total", Help: "times fast recovery was entered", ConstLabels: constLabels,
		}),
	}
	if reg != nil {
		reg.MustRegister(c.CWND, c.RWND, c.SSThresh, c.InflightBytes, c.RetransmitsTotal, c.FastRecoverTotal)
	}
	return c
}

func (c *Collector) SetWindows(cwnd, rwnd, ssthresh, inflight uint32) {
	if c == nil {
		return
	}
	c.CWND.Set(float64(cwnd))
	c.RWND.Set(float64(rwnd))
	c.SSThresh.Set(float64(ssthresh))
	c.InflightBytes.Set(float64(inflight))
}

func (c *Collector) IncRetransmit() {
	if c == nil {
		return
	}
	c.RetransmitsTotal.Inc()
}

func (c *Collector) IncFastRecovery() {
	if c == nil {
		return
	}
	c.FastRecoverTotal.Inc()
}
