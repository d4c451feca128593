package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framectl",
			Subsystem: "stream",
			Name:      "frames_decoded_total",
			Help:      "Frames decoded from the packet stream.",
		},
		[]string{"endpoint"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framectl",
			Subsystem: "stream",
			Name:      "decode_errors_total",
			Help:      "Packets whose body failed to decode as a frame.",
		},
		[]string{"endpoint"},
	)
	resyncBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framectl",
			Subsystem: "stream",
			Name:      "resync_bytes_total",
			Help:      "Bytes discarded while searching for a packet header.",
		},
		[]string{"endpoint"},
	)
	sizeViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framectl",
			Subsystem: "stream",
			Name:      "size_violations_total",
			Help:      "Packet headers announcing an empty or oversized body.",
		},
		[]string{"endpoint"},
	)
	disconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framectl",
			Subsystem: "stream",
			Name:      "disconnects_total",
			Help:      "Transport disconnects, requested or caused by read failure.",
		},
		[]string{"endpoint"},
	)
	bytesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framectl",
			Subsystem: "stream",
			Name:      "bytes_received_total",
			Help:      "Raw bytes received from the transport.",
		},
		[]string{"endpoint"},
	)
	packetBodyBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "framectl",
			Subsystem: "stream",
			Name:      "packet_body_bytes",
			Help:      "Declared body size of accepted packets.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"endpoint"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesDecoded,
			decodeErrors,
			resyncBytes,
			sizeViolations,
			disconnects,
			bytesReceived,
			packetBodyBytes,
		)
	})
}

func RecordFrameDecoded(endpoint string, bodySize uint32) {
	RegisterMetrics()
	framesDecoded.WithLabelValues(endpoint).Inc()
	packetBodyBytes.WithLabelValues(endpoint).Observe(float64(bodySize))
}

func RecordDecodeError(endpoint string) {
	RegisterMetrics()
	decodeErrors.WithLabelValues(endpoint).Inc()
}

func RecordResync(endpoint string, dropped int) {
	if dropped <= 0 {
		return
	}
	RegisterMetrics()
	resyncBytes.WithLabelValues(endpoint).Add(float64(dropped))
}

func RecordSizeViolation(endpoint string) {
	RegisterMetrics()
	sizeViolations.WithLabelValues(endpoint).Inc()
}

func RecordDisconnect(endpoint string) {
	RegisterMetrics()
	disconnects.WithLabelValues(endpoint).Inc()
}

func RecordBytesReceived(endpoint string, n int) {
	RegisterMetrics()
	bytesReceived.WithLabelValues(endpoint).Add(float64(n))
}
