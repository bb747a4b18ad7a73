package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/cashier/pkg/cashier"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	constraintSummarySession = "uniq_summary_session"
	constraintOpenSession    = "uniq_sessions_open_date"
	pgUniqueViolationCode    = "23505"
	sqliteConstraintCode     = 19

	// The approval workflow owns the credit_requests table; the store
	// only counts pending rows for the close-time gate.
	creditRequestsTable  = "credit_requests"
	creditRequestPending = "pending"
	errorOperationStore      = "store"
	errorSubjectSession      = "session"
	errorSubjectTransaction  = "transaction"
	errorSubjectCredit       = "credit"
	errorSubjectFloat        = "float_addition"
	errorSubjectSummary      = "summary"
	errorSubjectApproval     = "approval"
	errorCodeCreate          = "create"
	errorCodeDuplicate       = "duplicate"
	errorCodeGet             = "get"
	errorCodeInsert          = "insert"
	errorCodeInvalid         = "invalid"
	errorCodeList            = "list"
	errorCodeSave            = "save"
	errorCodeSum             = "sum"
	errorCodeCount           = "count"
)

// Store implements cashier.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Models lists every table the store owns, for migration.
func Models() []any {
	return []any{&Session{}, &LedgerTransaction{}, &CreditRecord{}, &FloatAddition{}, &SessionSummary{}}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore cashier.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) CreateSession(ctx context.Context, session cashier.Session) (cashier.Session, error) {
	model, err := sessionModel(session)
	if err != nil {
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeInvalid, err)
	}
	err = store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err, constraintOpenSession) {
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeDuplicate, cashier.ErrSessionAlreadyOpen)
	}
	if err != nil {
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeCreate, err)
	}
	return mapSession(model)
}

func (store *Store) GetSession(ctx context.Context, sessionID string) (cashier.Session, error) {
	var model Session
	err := store.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, cashier.ErrUnknownSession)
		}
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, err)
	}
	return mapSession(model)
}

// GetSessionForUpdate reads the session row under a row lock. Every
// mutating operation goes through this read inside WithTx, which is
// what serializes concurrent mutations against one session aggregate.
func (store *Store) GetSessionForUpdate(ctx context.Context, sessionID string) (cashier.Session, error) {
	var model Session
	err := store.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", sessionID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, cashier.ErrUnknownSession)
		}
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, err)
	}
	return mapSession(model)
}

func (store *Store) GetOpenSessionByDate(ctx context.Context, date string) (cashier.Session, error) {
	var model Session
	err := store.db.WithContext(ctx).
		Where("session_date = ? AND is_closed = ?", date, false).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, cashier.ErrNoActiveSession)
		}
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, err)
	}
	return mapSession(model)
}

func (store *Store) GetLatestSessionByDate(ctx context.Context, date string) (cashier.Session, error) {
	var model Session
	err := store.db.WithContext(ctx).
		Where("session_date = ?", date).
		Order("opened_at DESC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, cashier.ErrUnknownSession)
		}
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeGet, err)
	}
	return mapSession(model)
}

func (store *Store) SaveSession(ctx context.Context, session cashier.Session) error {
	model, err := sessionModel(session)
	if err != nil {
		return wrapStoreError(errorSubjectSession, errorCodeInvalid, err)
	}
	if err := store.db.WithContext(ctx).Save(&model).Error; err != nil {
		return wrapStoreError(errorSubjectSession, errorCodeSave, err)
	}
	return nil
}

func (store *Store) InsertTransaction(ctx context.Context, transaction cashier.Transaction) error {
	chips, err := chipsJSON(transaction.Chips)
	if err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeInvalid, err)
	}
	model := LedgerTransaction{
		TransactionID:  transaction.TransactionID,
		SessionID:      transaction.SessionID,
		Kind:           transaction.Kind.String(),
		PlayerID:       transaction.PlayerID,
		Amount:         transaction.Amount.Int64(),
		Chips:          chips,
		PrimaryDelta:   transaction.PrimaryDelta,
		SecondaryDelta: transaction.SecondaryDelta,
		CreditSettled:  transaction.CreditSettled.Int64(),
		Category:       transaction.Category,
		Note:           transaction.Note,
		Actor:          transaction.Actor,
		CreatedAt:      time.Unix(transaction.CreatedUnixUTC, 0).UTC(),
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) ListTransactions(ctx context.Context, sessionID string) ([]cashier.Transaction, error) {
	var rows []LedgerTransaction
	err := store.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, transaction_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectTransaction, errorCodeList, err)
	}
	transactions := make([]cashier.Transaction, 0, len(rows))
	for _, row := range rows {
		transaction, err := mapTransaction(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectTransaction, errorCodeInvalid, err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

func (store *Store) CreateCreditRecord(ctx context.Context, record cashier.CreditRecord) error {
	model, err := creditModel(record)
	if err != nil {
		return wrapStoreError(errorSubjectCredit, errorCodeInvalid, err)
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapStoreError(errorSubjectCredit, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) SaveCreditRecord(ctx context.Context, record cashier.CreditRecord) error {
	model, err := creditModel(record)
	if err != nil {
		return wrapStoreError(errorSubjectCredit, errorCodeInvalid, err)
	}
	if err := store.db.WithContext(ctx).Save(&model).Error; err != nil {
		return wrapStoreError(errorSubjectCredit, errorCodeSave, err)
	}
	return nil
}

func (store *Store) ListUnsettledCredit(ctx context.Context, sessionID string, playerID string) ([]cashier.CreditRecord, error) {
	query := store.db.WithContext(ctx).
		Where("session_id = ? AND is_fully_settled = ?", sessionID, false)
	if playerID != "" {
		query = query.Where("player_id = ?", playerID)
	}
	var rows []CreditRecord
	if err := query.Order("created_at ASC, credit_id ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectCredit, errorCodeList, err)
	}
	records := make([]cashier.CreditRecord, 0, len(rows))
	for _, row := range rows {
		record, err := mapCreditRecord(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectCredit, errorCodeInvalid, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (store *Store) SumOutstandingCredit(ctx context.Context, sessionID string) (cashier.Amount, error) {
	var sum sqlSum
	err := store.db.WithContext(ctx).
		Model(&CreditRecord{}).
		Select("coalesce(sum(issued - settled),0) as total").
		Where("session_id = ? AND is_fully_settled = ?", sessionID, false).
		Scan(&sum).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectCredit, errorCodeSum, err)
	}
	return cashier.Amount(sum.Total), nil
}

func (store *Store) SumOutstandingCreditForPlayer(ctx context.Context, sessionID string, playerID string) (cashier.Amount, error) {
	var sum sqlSum
	err := store.db.WithContext(ctx).
		Model(&CreditRecord{}).
		Select("coalesce(sum(issued - settled),0) as total").
		Where("session_id = ? AND player_id = ? AND is_fully_settled = ?", sessionID, playerID, false).
		Scan(&sum).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectCredit, errorCodeSum, err)
	}
	return cashier.Amount(sum.Total), nil
}

func (store *Store) CreateFloatAddition(ctx context.Context, addition cashier.FloatAddition) error {
	chips, err := chipsJSON(addition.Chips)
	if err != nil {
		return wrapStoreError(errorSubjectFloat, errorCodeInvalid, err)
	}
	model := FloatAddition{
		AdditionID: addition.AdditionID,
		SessionID:  addition.SessionID,
		Amount:     addition.Amount.Int64(),
		Chips:      chips,
		Note:       addition.Note,
		Actor:      addition.Actor,
		CreatedAt:  time.Unix(addition.CreatedUnixUTC, 0).UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapStoreError(errorSubjectFloat, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) ListFloatAdditions(ctx context.Context, sessionID string) ([]cashier.FloatAddition, error) {
	var rows []FloatAddition
	err := store.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectFloat, errorCodeList, err)
	}
	additions := make([]cashier.FloatAddition, 0, len(rows))
	for _, row := range rows {
		addition, err := mapFloatAddition(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectFloat, errorCodeInvalid, err)
		}
		additions = append(additions, addition)
	}
	return additions, nil
}

func (store *Store) CreateSessionSummary(ctx context.Context, summary cashier.SessionSummary) error {
	model, err := summaryModel(summary)
	if err != nil {
		return wrapStoreError(errorSubjectSummary, errorCodeInvalid, err)
	}
	err = store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err, constraintSummarySession) {
		return wrapStoreError(errorSubjectSummary, errorCodeDuplicate, cashier.ErrSummaryExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectSummary, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) GetSessionSummary(ctx context.Context, sessionID string) (cashier.SessionSummary, error) {
	var model SessionSummary
	err := store.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cashier.SessionSummary{}, wrapStoreError(errorSubjectSummary, errorCodeGet, cashier.ErrUnknownSummary)
		}
		return cashier.SessionSummary{}, wrapStoreError(errorSubjectSummary, errorCodeGet, err)
	}
	return mapSummary(model)
}

func (store *Store) CountPendingCreditRequests(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := store.db.WithContext(ctx).
		Table(creditRequestsTable).
		Where("session_id = ? AND status = ?", sessionID, creditRequestPending).
		Count(&count).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectApproval, errorCodeCount, err)
	}
	return count, nil
}

func wrapStoreError(subject string, code string, err error) error {
	return cashier.WrapError(errorOperationStore, subject, code, err)
}

type sqlSum struct {
	Total int64
}

func chipsJSON(breakdown cashier.ChipBreakdown) (datatypes.JSON, error) {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func parseChips(raw datatypes.JSON) (cashier.ChipBreakdown, error) {
	if len(raw) == 0 {
		return cashier.ChipBreakdown{}, nil
	}
	var breakdown cashier.ChipBreakdown
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return cashier.ChipBreakdown{}, err
	}
	return breakdown, nil
}

func sessionModel(session cashier.Session) (Session, error) {
	openingChips, err := chipsJSON(session.OpeningChips)
	if err != nil {
		return Session{}, err
	}
	currentChips, err := chipsJSON(session.CurrentChips)
	if err != nil {
		return Session{}, err
	}
	outChips, err := chipsJSON(session.OutChips)
	if err != nil {
		return Session{}, err
	}
	var closedAt *time.Time
	if session.ClosedUnixUTC != 0 {
		value := time.Unix(session.ClosedUnixUTC, 0).UTC()
		closedAt = &value
	}
	var reopenedFrom *string
	if session.ReopenedFromID != "" {
		value := session.ReopenedFromID
		reopenedFrom = &value
	}
	return Session{
		SessionID:            session.SessionID,
		SessionDate:          session.SessionDate,
		IsClosed:             session.Closed,
		OwnerFloat:           session.OwnerFloat.Int64(),
		OpeningFloat:         session.OpeningFloat.Int64(),
		PrimaryBalance:       session.PrimaryBalance.Int64(),
		SecondaryBalance:     session.SecondaryBalance.Int64(),
		SecondaryDeposits:    session.SecondaryDeposits.Int64(),
		SecondaryWithdrawals: session.SecondaryWithdrawals.Int64(),
		OpeningChips:         openingChips,
		CurrentChips:         currentChips,
		OutChips:             outChips,
		ChipInventorySet:     session.ChipInventorySet,
		TransactionCount:     session.TransactionCount,
		CreditLimit:          session.CreditLimit.Int64(),
		OutstandingCredit:    session.OutstandingCredit.Int64(),
		OpenedBy:             session.OpenedBy,
		ClosedBy:             session.ClosedBy,
		OpenedAt:             time.Unix(session.OpenedUnixUTC, 0).UTC(),
		ClosedAt:             closedAt,
		ReopenedFromID:       reopenedFrom,
	}, nil
}

func mapSession(model Session) (cashier.Session, error) {
	openingChips, err := parseChips(model.OpeningChips)
	if err != nil {
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeInvalid, err)
	}
	currentChips, err := parseChips(model.CurrentChips)
	if err != nil {
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeInvalid, err)
	}
	outChips, err := parseChips(model.OutChips)
	if err != nil {
		return cashier.Session{}, wrapStoreError(errorSubjectSession, errorCodeInvalid, err)
	}
	session := cashier.Session{
		SessionID:            model.SessionID,
		SessionDate:          model.SessionDate,
		Closed:               model.IsClosed,
		OwnerFloat:           cashier.Amount(model.OwnerFloat),
		OpeningFloat:         cashier.Amount(model.OpeningFloat),
		PrimaryBalance:       cashier.Amount(model.PrimaryBalance),
		SecondaryBalance:     cashier.Amount(model.SecondaryBalance),
		SecondaryDeposits:    cashier.Amount(model.SecondaryDeposits),
		SecondaryWithdrawals: cashier.Amount(model.SecondaryWithdrawals),
		OpeningChips:         openingChips,
		CurrentChips:         currentChips,
		OutChips:             outChips,
		ChipInventorySet:     model.ChipInventorySet,
		TransactionCount:     model.TransactionCount,
		CreditLimit:          cashier.Amount(model.CreditLimit),
		OutstandingCredit:    cashier.Amount(model.OutstandingCredit),
		OpenedBy:             model.OpenedBy,
		ClosedBy:             model.ClosedBy,
		OpenedUnixUTC:        model.OpenedAt.Unix(),
	}
	if model.ClosedAt != nil {
		session.ClosedUnixUTC = model.ClosedAt.Unix()
	}
	if model.ReopenedFromID != nil {
		session.ReopenedFromID = *model.ReopenedFromID
	}
	return session, nil
}

func mapTransaction(model LedgerTransaction) (cashier.Transaction, error) {
	kind, err := cashier.ParseTransactionKind(model.Kind)
	if err != nil {
		return cashier.Transaction{}, err
	}
	chips, err := parseChips(model.Chips)
	if err != nil {
		return cashier.Transaction{}, err
	}
	return cashier.Transaction{
		TransactionID:  model.TransactionID,
		SessionID:      model.SessionID,
		Kind:           kind,
		PlayerID:       model.PlayerID,
		Amount:         cashier.Amount(model.Amount),
		Chips:          chips,
		PrimaryDelta:   model.PrimaryDelta,
		SecondaryDelta: model.SecondaryDelta,
		CreditSettled:  cashier.Amount(model.CreditSettled),
		Category:       model.Category,
		Note:           model.Note,
		Actor:          model.Actor,
		CreatedUnixUTC: model.CreatedAt.Unix(),
	}, nil
}

func creditModel(record cashier.CreditRecord) (CreditRecord, error) {
	chips, err := chipsJSON(record.Chips)
	if err != nil {
		return CreditRecord{}, err
	}
	settledChips, err := chipsJSON(record.SettledChips)
	if err != nil {
		return CreditRecord{}, err
	}
	return CreditRecord{
		CreditID:       record.CreditID,
		SessionID:      record.SessionID,
		PlayerID:       record.PlayerID,
		Chips:          chips,
		Issued:         record.Issued.Int64(),
		Settled:        record.Settled.Int64(),
		SettledChips:   settledChips,
		IsFullySettled: record.FullySettled,
		ApprovalID:     record.ApprovalID,
		Actor:          record.Actor,
		CreatedAt:      time.Unix(record.CreatedUnixUTC, 0).UTC(),
		UpdatedAt:      time.Unix(record.UpdatedUnixUTC, 0).UTC(),
	}, nil
}

func mapCreditRecord(model CreditRecord) (cashier.CreditRecord, error) {
	chips, err := parseChips(model.Chips)
	if err != nil {
		return cashier.CreditRecord{}, err
	}
	settledChips, err := parseChips(model.SettledChips)
	if err != nil {
		return cashier.CreditRecord{}, err
	}
	return cashier.CreditRecord{
		CreditID:       model.CreditID,
		SessionID:      model.SessionID,
		PlayerID:       model.PlayerID,
		Chips:          chips,
		Issued:         cashier.Amount(model.Issued),
		Settled:        cashier.Amount(model.Settled),
		SettledChips:   settledChips,
		FullySettled:   model.IsFullySettled,
		ApprovalID:     model.ApprovalID,
		Actor:          model.Actor,
		CreatedUnixUTC: model.CreatedAt.Unix(),
		UpdatedUnixUTC: model.UpdatedAt.Unix(),
	}, nil
}

func mapFloatAddition(model FloatAddition) (cashier.FloatAddition, error) {
	chips, err := parseChips(model.Chips)
	if err != nil {
		return cashier.FloatAddition{}, err
	}
	return cashier.FloatAddition{
		AdditionID:     model.AdditionID,
		SessionID:      model.SessionID,
		Amount:         cashier.Amount(model.Amount),
		Chips:          chips,
		Note:           model.Note,
		Actor:          model.Actor,
		CreatedUnixUTC: model.CreatedAt.Unix(),
	}, nil
}

func summaryModel(summary cashier.SessionSummary) (SessionSummary, error) {
	warnings := summary.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	raw, err := json.Marshal(warnings)
	if err != nil {
		return SessionSummary{}, err
	}
	return SessionSummary{
		SummaryID:         summary.SummaryID,
		SessionID:         summary.SessionID,
		SessionDate:       summary.SessionDate,
		OpeningFloat:      summary.OpeningFloat.Int64(),
		ClosingPrimary:    summary.ClosingPrimary.Int64(),
		ClosingSecondary:  summary.ClosingSecondary.Int64(),
		TotalBuyIns:       summary.TotalBuyIns.Int64(),
		TotalPayouts:      summary.TotalPayouts.Int64(),
		TotalDeposits:     summary.TotalDeposits.Int64(),
		TotalExpenses:     summary.TotalExpenses.Int64(),
		TotalFloatAdded:   summary.TotalFloatAdded.Int64(),
		CreditIssued:      summary.CreditIssued.Int64(),
		CreditSettled:     summary.CreditSettled.Int64(),
		OutstandingCredit: summary.OutstandingCredit.Int64(),
		ChipsInHandValue:  summary.ChipsInHandValue.Int64(),
		ChipsOutValue:     summary.ChipsOutValue.Int64(),
		ChipsOverReturned: summary.ChipsOverReturned.Int64(),
		NetProfitLoss:     summary.NetProfitLoss.Int64(),
		Warnings:          datatypes.JSON(raw),
		ClosedBy:          summary.ClosedBy,
		ClosedAt:          time.Unix(summary.ClosedUnixUTC, 0).UTC(),
	}, nil
}

func mapSummary(model SessionSummary) (cashier.SessionSummary, error) {
	var warnings []string
	if len(model.Warnings) > 0 {
		if err := json.Unmarshal(model.Warnings, &warnings); err != nil {
			return cashier.SessionSummary{}, wrapStoreError(errorSubjectSummary, errorCodeInvalid, err)
		}
	}
	return cashier.SessionSummary{
		SummaryID:         model.SummaryID,
		SessionID:         model.SessionID,
		SessionDate:       model.SessionDate,
		OpeningFloat:      cashier.Amount(model.OpeningFloat),
		ClosingPrimary:    cashier.Amount(model.ClosingPrimary),
		ClosingSecondary:  cashier.Amount(model.ClosingSecondary),
		TotalBuyIns:       cashier.Amount(model.TotalBuyIns),
		TotalPayouts:      cashier.Amount(model.TotalPayouts),
		TotalDeposits:     cashier.Amount(model.TotalDeposits),
		TotalExpenses:     cashier.Amount(model.TotalExpenses),
		TotalFloatAdded:   cashier.Amount(model.TotalFloatAdded),
		CreditIssued:      cashier.Amount(model.CreditIssued),
		CreditSettled:     cashier.Amount(model.CreditSettled),
		OutstandingCredit: cashier.Amount(model.OutstandingCredit),
		ChipsInHandValue:  cashier.Amount(model.ChipsInHandValue),
		ChipsOutValue:     cashier.Amount(model.ChipsOutValue),
		ChipsOverReturned: cashier.Amount(model.ChipsOverReturned),
		NetProfitLoss:     cashier.Amount(model.NetProfitLoss),
		Warnings:          warnings,
		ClosedBy:          model.ClosedBy,
		ClosedUnixUTC:     model.ClosedAt.Unix(),
	}, nil
}

// isUniqueViolation reports whether err is a unique-index violation.
// Postgres names the constraint; sqlite only exposes the generic
// constraint code, which is unambiguous here because each table
// carries a single unique index beyond its uuid primary key.
func isUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraintName
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
