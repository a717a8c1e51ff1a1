package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bot's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	LookupsTotal             *prometheus.CounterVec
	SubscriptionTogglesTotal *prometheus.CounterVec
	ChatsUnavailableTotal    prometheus.Counter
	NoticeDeliveriesTotal    *prometheus.CounterVec
	NoticeBroadcastsTotal    *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered on registry.
func New(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		LookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsb_lookups_total",
				Help: "Timetable lookups by source and outcome",
			},
			[]string{"source", "outcome"}, // source: command, text; outcome: found, ambiguous, not_found, error
		),
		SubscriptionTogglesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsb_subscription_toggles_total",
				Help: "Notice subscription toggles by resulting state",
			},
			[]string{"state"}, // state: subscribed, unsubscribed
		),
		ChatsUnavailableTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "tsb_chats_unavailable_total",
				Help: "Chats reported as permanently unreachable",
			},
		),
		NoticeDeliveriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsb_notice_deliveries_total",
				Help: "Notice messages sent to subscribers by status",
			},
			[]string{"status"}, // status: sent, failed, unavailable
		),
		NoticeBroadcastsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsb_notice_broadcasts_total",
				Help: "Hourly notice broadcast runs by result",
			},
			[]string{"result"}, // result: sent, empty, error
		),
	}
}

func (m *Metrics) ObserveLookup(source, outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) ObserveToggle(subscribed bool) {
	if m == nil {
		return
	}
	state := "unsubscribed"
	if subscribed {
		state = "subscribed"
	}
	m.SubscriptionTogglesTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveChatUnavailable() {
	if m == nil {
		return
	}
	m.ChatsUnavailableTotal.Inc()
}

func (m *Metrics) ObserveNoticeDelivery(status string) {
	if m == nil {
		return
	}
	m.NoticeDeliveriesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveBroadcast(result string) {
	if m == nil {
		return
	}
	m.NoticeBroadcastsTotal.WithLabelValues(result).Inc()
}
