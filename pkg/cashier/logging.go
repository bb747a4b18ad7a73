package cashier

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing cashier operation.
type OperationLog struct {
	Operation string
	SessionID string
	PlayerID  string
	Amount    Amount
	Actor     string
	Status    string
	Error     error
}

// Notifier receives session lifecycle events as plain data. Delivery
// transport is the caller's concern.
type Notifier interface {
	SessionClosed(ctx context.Context, summary SessionSummary)
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithNotifier wires a notifier for session-closed events.
func WithNotifier(notifier Notifier) ServiceOption {
	return func(service *Service) {
		service.notifier = notifier
	}
}

// WithCreditLimit overrides the default per-player credit limit applied
// to newly opened sessions.
func WithCreditLimit(limit Amount) ServiceOption {
	return func(service *Service) {
		service.creditLimit = limit
	}
}
