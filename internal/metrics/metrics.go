package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Отправленные сообщения по роли отправителя
	MessagesSentTotal *prometheus.CounterVec

	// Ошибки записи (append, merge, publish)
	WriteFailuresTotal *prometheus.CounterVec

	// Запросы к сервису профилей по результату
	ProfileLookupsTotal *prometheus.CounterVec

	ProfileLookupDuration prometheus.Histogram

	// Активные live-подписки по типу
	ActiveStreams *prometheus.GaugeVec
)

func init() {
	MessagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "chat",
			Name:      "messages_sent_total",
			Help:      "Total number of chat messages appended",
		},
		[]string{"sender_role"},
	)

	WriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "chat",
			Name:      "write_failures_total",
			Help:      "Total number of failed chat writes by operation",
		},
		[]string{"operation"},
	)

	ProfileLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "chat",
			Name:      "profile_lookups_total",
			Help:      "Total applicant profile lookups by outcome",
		},
		[]string{"outcome"},
	)

	ProfileLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jobboard",
			Subsystem: "chat",
			Name:      "profile_lookup_duration_seconds",
			Help:      "Latency of applicant profile lookups",
			Buckets:   prometheus.DefBuckets,
		},
	)

	ActiveStreams = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "jobboard",
			Subsystem: "chat",
			Name:      "active_streams",
			Help:      "Number of open live subscriptions",
		},
		[]string{"stream"},
	)

	prometheus.MustRegister(
		MessagesSentTotal,
		WriteFailuresTotal,
		ProfileLookupsTotal,
		ProfileLookupDuration,
		ActiveStreams,
	)
}
