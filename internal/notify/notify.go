// Package notify carries session and credit events to whatever
// transport the deployment wires up. The default implementation just
// logs; delivery mechanics live elsewhere.
package notify

import (
	"context"

	"github.com/MarkoPoloResearchLab/cashier/internal/approval"
	"github.com/MarkoPoloResearchLab/cashier/pkg/cashier"
	"go.uber.org/zap"
)

// LogDispatcher writes every event to a zap logger. It satisfies both
// cashier.Notifier and approval.Notifier.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher returns a dispatcher over the given logger.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// SessionClosed logs the close-time summary.
func (dispatcher *LogDispatcher) SessionClosed(_ context.Context, summary cashier.SessionSummary) {
	dispatcher.logger.Info("session closed",
		zap.String("session_id", summary.SessionID),
		zap.String("session_date", summary.SessionDate),
		zap.Int64("net_profit_loss", summary.NetProfitLoss.Int64()),
		zap.Int64("outstanding_credit", summary.OutstandingCredit.Int64()),
		zap.Int64("chips_out_value", summary.ChipsOutValue.Int64()),
		zap.Strings("warnings", summary.Warnings),
	)
}

// CreditRequested logs a freshly filed credit request.
func (dispatcher *LogDispatcher) CreditRequested(_ context.Context, event approval.Event) {
	dispatcher.logger.Info("credit requested",
		zap.String("request_id", event.RequestID),
		zap.String("session_id", event.SessionID),
		zap.String("player_id", event.PlayerID),
		zap.Int64("amount", event.Amount.Int64()),
	)
}

// CreditDecided logs an approval decision.
func (dispatcher *LogDispatcher) CreditDecided(_ context.Context, event approval.Event) {
	dispatcher.logger.Info("credit decided",
		zap.String("request_id", event.RequestID),
		zap.String("session_id", event.SessionID),
		zap.String("player_id", event.PlayerID),
		zap.Int64("amount", event.Amount.Int64()),
		zap.String("status", string(event.Status)),
	)
}
