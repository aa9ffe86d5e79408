package stream

import "github.com/prometheus/client_golang/prometheus"

var (
	recordsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "state_stream_records_applied_total",
		Help: "Records decoded and installed as the application snapshot",
	})
	decodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "state_stream_decode_errors_total",
		Help: "Records skipped because their value was not valid JSON",
	})
	currentOffset = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "state_stream_offset",
		Help: "Offset of the record backing the current snapshot",
	})
	consumerPhase = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "state_stream_phase",
		Help: "Consumer phase: 0 uninitialized, 1 seeding, 2 live, 3 stopped",
	})
)

func init() { prometheus.MustRegister(recordsApplied, decodeErrors, currentOffset, consumerPhase) }
