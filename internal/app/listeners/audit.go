// Package listeners holds the observers attached to the notification bus:
// audit trail, live bump counters and dashboard refresh.
package listeners

import (
	"context"
	"log/slog"

	"github.com/marcelojr/awards/internal/domain"
)

// AuditLog writes one structured line per cast/reset. It is the only durable
// trace of who changed which ballot and when, so it runs first.
type AuditLog struct {
	logger *slog.Logger
}

func NewAuditLog(logger *slog.Logger) *AuditLog {
	return &AuditLog{logger: logger}
}

func (a *AuditLog) Name() string { return "audit_log" }

func (a *AuditLog) Handle(_ context.Context, n domain.Notification) error {
	switch e := n.(type) {
	case domain.VoteCast:
		a.logger.Info("audit vote cast",
			"voter", e.VoterID,
			"event", e.EventID,
			"category", e.CategoryID,
			"nominee", e.NomineeID,
			"updated", e.Updated,
			"ballot", e.BallotID,
		)
	case domain.VoteReset:
		a.logger.Info("audit vote reset",
			"voter", e.VoterID,
			"category", e.CategoryID,
		)
	}
	return nil
}
