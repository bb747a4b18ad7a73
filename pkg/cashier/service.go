package cashier

import (
	"context"
	"errors"
	"fmt"
)

const defaultCreditLimit Amount = 100000

// Service contains the cashier domain logic over a Store.
type Service struct {
	store       Store
	nowFn       func() int64
	logger      OperationLogger
	notifier    Notifier
	creditLimit Amount
}

// NewService wires a Service.
func NewService(store Store, now func() int64, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, nowFn: now, creditLimit: defaultCreditLimit}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	if service.creditLimit < 0 {
		return nil, fmt.Errorf("%w: negative credit limit", ErrInvalidServiceConfig)
	}
	return service, nil
}

// WithStore returns a copy of the service bound to the given store.
// Collaborators use it to run ledger operations inside their own
// database transaction, so their writes commit or roll back together
// with the ledger's.
func (service *Service) WithStore(store Store) *Service {
	rebound := *service
	rebound.store = store
	return &rebound
}

// OpenResult reports a freshly opened (or reopened) session.
type OpenResult struct {
	Session Session
	Message string
}

// OpenSession starts the daily session. It fails when a session is
// already open for the date, and requires a positive owner float. The
// opening chip inventory may be supplied here or later via
// SetOpeningInventory.
func (service *Service) OpenSession(ctx context.Context, date SessionDate, ownerFloat Amount, openingChips *ChipBreakdown, actor Actor) (OpenResult, error) {
	var result OpenResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		existing, err := transactionStore.GetOpenSessionByDate(ctx, date.String())
		if err == nil {
			return fmt.Errorf("%w: session %s is open for %s", ErrSessionAlreadyOpen, existing.SessionID, date)
		}
		if !errors.Is(err, ErrNoActiveSession) {
			return err
		}
		session, err := service.newSession(date, ownerFloat, openingChips, actor)
		if err != nil {
			return err
		}
		created, err := transactionStore.CreateSession(ctx, session)
		if err != nil {
			return err
		}
		if err := service.recordOpeningChips(ctx, transactionStore, created, openingChips, actor); err != nil {
			return err
		}
		result = OpenResult{
			Session: created,
			Message: fmt.Sprintf("session opened for %s with owner float %d", date, ownerFloat),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationOpenSession,
		SessionID: result.Session.SessionID,
		Amount:    ownerFloat,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// ReopenSession reopens a closed date with a fresh opening state. The
// closed session and its summary are preserved; the new session starts
// from the supplied owner float and optional chip inventory.
func (service *Service) ReopenSession(ctx context.Context, date SessionDate, ownerFloat Amount, openingChips *ChipBreakdown, actor Actor) (OpenResult, error) {
	var result OpenResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetOpenSessionByDate(ctx, date.String()); err == nil {
			return fmt.Errorf("%w: date %s already has an open session", ErrSessionAlreadyOpen, date)
		} else if !errors.Is(err, ErrNoActiveSession) {
			return err
		}
		previous, err := transactionStore.GetLatestSessionByDate(ctx, date.String())
		if err != nil {
			return err
		}
		if !previous.Closed {
			return fmt.Errorf("%w: session %s", ErrSessionNotClosed, previous.SessionID)
		}
		session, err := service.newSession(date, ownerFloat, openingChips, actor)
		if err != nil {
			return err
		}
		session.ReopenedFromID = previous.SessionID
		created, err := transactionStore.CreateSession(ctx, session)
		if err != nil {
			return err
		}
		reopened := Transaction{
			SessionID:      created.SessionID,
			Kind:           KindSessionReopened,
			Amount:         ownerFloat,
			Note:           fmt.Sprintf("reopened from %s", previous.SessionID),
			Actor:          actor.String(),
			CreatedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertTransaction(ctx, reopened); err != nil {
			return err
		}
		if err := service.recordOpeningChips(ctx, transactionStore, created, openingChips, actor); err != nil {
			return err
		}
		result = OpenResult{
			Session: created,
			Message: fmt.Sprintf("session reopened for %s with owner float %d", date, ownerFloat),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationReopenSession,
		SessionID: result.Session.SessionID,
		Amount:    ownerFloat,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

func (service *Service) newSession(date SessionDate, ownerFloat Amount, openingChips *ChipBreakdown, actor Actor) (Session, error) {
	if ownerFloat <= 0 {
		return Session{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidOwnerFloat)
	}
	session := Session{
		SessionDate:    date.String(),
		OwnerFloat:     ownerFloat,
		OpeningFloat:   ownerFloat,
		PrimaryBalance: ownerFloat,
		CreditLimit:    service.creditLimit,
		OpenedBy:       actor.String(),
		OpenedUnixUTC:  service.nowFn(),
	}
	if openingChips != nil {
		if err := session.SetOpeningInventory(*openingChips); err != nil {
			return Session{}, err
		}
	}
	return session, nil
}

// recordOpeningChips writes the opening-inventory transaction when the
// inventory was supplied at open time, so log replay sees the stock.
func (service *Service) recordOpeningChips(ctx context.Context, transactionStore Store, session Session, openingChips *ChipBreakdown, actor Actor) error {
	if openingChips == nil {
		return nil
	}
	record := Transaction{
		SessionID:      session.SessionID,
		Kind:           KindOpeningInventory,
		Amount:         openingChips.Value(),
		Chips:          *openingChips,
		Actor:          actor.String(),
		CreatedUnixUTC: service.nowFn(),
	}
	return transactionStore.InsertTransaction(ctx, record)
}

// ActiveSession returns the open session for a date.
func (service *Service) ActiveSession(ctx context.Context, date SessionDate) (Session, error) {
	return service.store.GetOpenSessionByDate(ctx, date.String())
}

// InventoryResult reports the recorded opening inventory.
type InventoryResult struct {
	Session Session
	Message string
}

// SetOpeningInventory records the opening chip counts once, before any
// transaction has been recorded for the session.
func (service *Service) SetOpeningInventory(ctx context.Context, sessionID SessionID, breakdown ChipBreakdown, actor Actor) (InventoryResult, error) {
	var result InventoryResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		if err := session.SetOpeningInventory(breakdown); err != nil {
			return err
		}
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindOpeningInventory,
			Amount:         breakdown.Value(),
			Chips:          breakdown,
			Actor:          actor.String(),
			CreatedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = InventoryResult{
			Session: session,
			Message: fmt.Sprintf("opening inventory set: %s (worth %d)", breakdown, breakdown.Value()),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationSetInventory,
		SessionID: sessionID.String(),
		Amount:    breakdown.Value(),
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// CloseResult reports the close-time summary and any non-fatal warnings.
type CloseResult struct {
	Summary  SessionSummary
	Warnings []string
	Message  string
}

// CloseSession computes the close-time summary from the transaction
// log, persists it, and flips the session closed. Chips still in
// circulation and unsettled credit are warnings, not blockers; pending
// credit-approval requests block the close.
func (service *Service) CloseSession(ctx context.Context, sessionID SessionID, actor Actor) (CloseResult, error) {
	var result CloseResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		pending, err := transactionStore.CountPendingCreditRequests(ctx, session.SessionID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("%w: %d awaiting decision", ErrPendingCreditRequests, pending)
		}
		transactions, err := transactionStore.ListTransactions(ctx, session.SessionID)
		if err != nil {
			return err
		}
		outstanding, err := transactionStore.SumOutstandingCredit(ctx, session.SessionID)
		if err != nil {
			return err
		}
		nowUnixUTC := service.nowFn()
		summary := buildSummary(session, transactions, outstanding, actor, nowUnixUTC)
		if err := transactionStore.CreateSessionSummary(ctx, summary); err != nil {
			return err
		}
		session.Closed = true
		session.ClosedBy = actor.String()
		session.ClosedUnixUTC = nowUnixUTC
		session.OutstandingCredit = outstanding
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		result = CloseResult{
			Summary:  summary,
			Warnings: summary.Warnings,
			Message:  fmt.Sprintf("session %s closed with net P/L %d", session.SessionID, summary.NetProfitLoss),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCloseSession,
		SessionID: sessionID.String(),
		Actor:     actor.String(),
		Error:     operationError,
	})
	if operationError == nil && service.notifier != nil {
		service.notifier.SessionClosed(ctx, result.Summary)
	}
	return result, operationError
}

// GetSession returns a session by id without locking it.
func (service *Service) GetSession(ctx context.Context, sessionID SessionID) (Session, error) {
	return service.store.GetSession(ctx, sessionID.String())
}

// Summary returns the persisted close-time snapshot for a session.
func (service *Service) Summary(ctx context.Context, sessionID SessionID) (SessionSummary, error) {
	return service.store.GetSessionSummary(ctx, sessionID.String())
}

// loadOpenSession reads the session row under a row lock so all
// mutations against one aggregate are serialized by the store.
func (service *Service) loadOpenSession(ctx context.Context, transactionStore Store, sessionID SessionID) (Session, error) {
	session, err := transactionStore.GetSessionForUpdate(ctx, sessionID.String())
	if err != nil {
		return Session{}, err
	}
	if session.Closed {
		return Session{}, fmt.Errorf("%w: session %s", ErrSessionClosed, session.SessionID)
	}
	return session, nil
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}
