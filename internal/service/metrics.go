package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"user-account-service/internal/domain"
)

var accountEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "account_events_total", Help: "Account operations by outcome"},
	[]string{"event", "outcome"},
)

func init() { prometheus.MustRegister(accountEvents) }

func recordEvent(event string, err error) {
	accountEvents.WithLabelValues(event, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAccountBlocked):
		return "rejected"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmailTaken):
		return "conflict"
	default:
		return "error"
	}
}
