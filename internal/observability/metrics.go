package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsActive tracks currently live voice sessions.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buddy_voice_sessions_active",
		Help: "Currently active voice sessions",
	})

	// TurnsTotal counts processed utterances by outcome kind.
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buddy_voice_turns_total",
		Help: "Utterances processed, labelled by turn outcome",
	}, []string{"outcome"})

	// ReplyDuration observes reply-generation latency.
	ReplyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "buddy_reply_duration_seconds",
		Help:    "LLM reply generation latency",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 1.5, 2.0, 3.0, 5.0},
	})

	// ContentRequests counts content generations by kind and source tier.
	ContentRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buddy_content_requests_total",
		Help: "Content generations by kind and source tier",
	}, []string{"kind", "tier"})

	// SpeechDuration observes Deepgram round-trip latency per direction.
	SpeechDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "buddy_speech_duration_seconds",
		Help:    "Speech vendor latency by direction (stt or tts)",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
	}, []string{"direction"})

	// VendorErrors counts vendor call failures.
	VendorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buddy_vendor_errors_total",
		Help: "Vendor call failures by service",
	}, []string{"service"})
)
