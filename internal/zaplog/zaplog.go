// Package zaplog adapts a zap logger to cashier.OperationLogger.
package zaplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/cashier/pkg/cashier"
	"go.uber.org/zap"
)

// OperationLogger writes cashier operation logs through zap.
type OperationLogger struct {
	logger *zap.Logger
}

// New returns an OperationLogger over the given zap logger.
func New(logger *zap.Logger) *OperationLogger {
	return &OperationLogger{logger: logger}
}

// LogOperation emits one structured line per cashier operation.
func (operationLogger *OperationLogger) LogOperation(_ context.Context, entry cashier.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
	}
	if entry.SessionID != "" {
		fields = append(fields, zap.String("session_id", entry.SessionID))
	}
	if entry.PlayerID != "" {
		fields = append(fields, zap.String("player_id", entry.PlayerID))
	}
	if entry.Amount != 0 {
		fields = append(fields, zap.Int64("amount", entry.Amount.Int64()))
	}
	if entry.Actor != "" {
		fields = append(fields, zap.String("actor", entry.Actor))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		operationLogger.logger.Warn("cashier operation failed", fields...)
		return
	}
	operationLogger.logger.Info("cashier operation", fields...)
}
