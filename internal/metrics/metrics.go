// Package metrics содержит Prometheus метрики сервиса.
// Отдаются через GET /metrics (promhttp).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы обработки webhook событий (label outcome)
const (
	OutcomeProcessed        = "processed"
	OutcomeDuplicate        = "duplicate"
	OutcomeNoMatch          = "no_match"
	OutcomeIgnored          = "ignored"
	OutcomeError            = "error"
	OutcomeInvalidSignature = "invalid_signature"
)

var (
	// WebhookEvents считает входящие события платёжного процессора
	// по типу события и исходу обработки
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_webhook_events_total",
		Help: "Processed payment webhook events by type and outcome",
	}, []string{"type", "outcome"})

	// CheckoutSessions считает созданные checkout-сессии по исходу
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_sessions_total",
		Help: "Checkout session creation attempts by outcome",
	}, []string{"outcome"})
)
