// Package service implements the document, team, notification and auth use cases.
// Every operation checks input and permissions before touching the backend and
// returns *apperr.Error values so callers can branch on the error kind.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"doctrack/internal/apperr"
	"doctrack/internal/logger"
	"doctrack/internal/model"
	"doctrack/internal/repository"
)

// Metrics counts domain mutations by operation and result.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
}

// NewMetrics registers the mutation counter on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doctrack_mutations_total",
				Help: "Total number of document and team mutations by result.",
			},
			[]string{"operation", "result"},
		),
	}
	if err := reg.Register(m.mutations); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperr.KindOf(err) {
	case apperr.ErrAuthorization:
		return "unauthorized"
	case apperr.ErrValidation:
		return "invalid"
	case apperr.ErrNotFound:
		return "not_found"
	case apperr.ErrConflict:
		return "conflict"
	default:
		return "error"
	}
}

// lookupErr maps a repository lookup failure: no rows becomes notFound, anything else a backend error.
func lookupErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return apperr.Backend(err, msg)
}

// notify stores a notification and only logs failures; notifications never fail the mutation that caused them.
func notify(ctx context.Context, repo repository.NotificationRepository, now time.Time, n model.Notification) {
	if repo == nil || n.UserID == "" {
		return
	}
	n.ID = uuid.NewString()
	n.CreatedAt = now
	if err := repo.Create(ctx, &n); err != nil {
		logger.FromContext(ctx).Warn("notification not stored",
			zap.String("user_id", n.UserID),
			zap.String("title", n.Title),
			zap.Error(err),
		)
	}
}
