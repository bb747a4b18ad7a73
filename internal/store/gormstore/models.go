package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session mirrors the sessions table. Chip triples are stored as JSON
// breakdowns. The partial unique index enforces at most one open
// session per date while leaving closed rows free to accumulate, so
// reopen-after-close still works.
type Session struct {
	SessionID   string `gorm:"type:uuid;primaryKey"`
	SessionDate string `gorm:"not null;index:idx_sessions_date;uniqueIndex:uniq_sessions_open_date,where:is_closed = false"`
	IsClosed    bool   `gorm:"not null"`

	OwnerFloat   int64 `gorm:"not null"`
	OpeningFloat int64 `gorm:"not null"`

	PrimaryBalance       int64 `gorm:"not null"`
	SecondaryBalance     int64 `gorm:"not null"`
	SecondaryDeposits    int64 `gorm:"not null"`
	SecondaryWithdrawals int64 `gorm:"not null"`

	OpeningChips datatypes.JSON `gorm:"not null"`
	CurrentChips datatypes.JSON `gorm:"not null"`
	OutChips     datatypes.JSON `gorm:"not null"`

	ChipInventorySet  bool  `gorm:"not null"`
	TransactionCount  int64 `gorm:"not null"`
	CreditLimit       int64 `gorm:"not null"`
	OutstandingCredit int64 `gorm:"not null"`

	OpenedBy       string `gorm:"not null"`
	ClosedBy       string
	OpenedAt       time.Time `gorm:"not null"`
	ClosedAt       *time.Time
	ReopenedFromID *string   `gorm:"type:uuid"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (Session) TableName() string { return "sessions" }

func (session *Session) BeforeCreate(tx *gorm.DB) error {
	if session.SessionID == "" {
		session.SessionID = uuid.NewString()
	}
	return nil
}

// LedgerTransaction mirrors the transactions table. Rows are append
// only; nothing updates them after creation.
type LedgerTransaction struct {
	TransactionID  string         `gorm:"type:uuid;primaryKey"`
	SessionID      string         `gorm:"type:uuid;not null;index:idx_transactions_session_created,priority:1"`
	Kind           string         `gorm:"not null"`
	PlayerID       string         `gorm:"index"`
	Amount         int64          `gorm:"not null"`
	Chips          datatypes.JSON `gorm:"not null"`
	PrimaryDelta   int64          `gorm:"not null"`
	SecondaryDelta int64          `gorm:"not null"`
	CreditSettled  int64          `gorm:"not null"`
	Category       string
	Note           string
	Actor          string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;index:idx_transactions_session_created,priority:2"`
}

func (LedgerTransaction) TableName() string { return "transactions" }

func (transaction *LedgerTransaction) BeforeCreate(tx *gorm.DB) error {
	if transaction.TransactionID == "" {
		transaction.TransactionID = uuid.NewString()
	}
	return nil
}

// CreditRecord mirrors the credit_records table.
type CreditRecord struct {
	CreditID       string         `gorm:"type:uuid;primaryKey"`
	SessionID      string         `gorm:"type:uuid;not null;index:idx_credit_session_player,priority:1"`
	PlayerID       string         `gorm:"not null;index:idx_credit_session_player,priority:2"`
	Chips          datatypes.JSON `gorm:"not null"`
	Issued         int64          `gorm:"not null"`
	Settled        int64          `gorm:"not null"`
	SettledChips   datatypes.JSON `gorm:"not null"`
	IsFullySettled bool           `gorm:"not null"`
	ApprovalID     string
	Actor          string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (CreditRecord) TableName() string { return "credit_records" }

func (record *CreditRecord) BeforeCreate(tx *gorm.DB) error {
	if record.CreditID == "" {
		record.CreditID = uuid.NewString()
	}
	return nil
}

// FloatAddition mirrors the float_additions table.
type FloatAddition struct {
	AdditionID string         `gorm:"type:uuid;primaryKey"`
	SessionID  string         `gorm:"type:uuid;not null;index"`
	Amount     int64          `gorm:"not null"`
	Chips      datatypes.JSON `gorm:"not null"`
	Note       string
	Actor      string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (FloatAddition) TableName() string { return "float_additions" }

func (addition *FloatAddition) BeforeCreate(tx *gorm.DB) error {
	if addition.AdditionID == "" {
		addition.AdditionID = uuid.NewString()
	}
	return nil
}

// SessionSummary mirrors the session_summaries table. One row per
// closed session, enforced by the unique session index.
type SessionSummary struct {
	SummaryID   string `gorm:"type:uuid;primaryKey"`
	SessionID   string `gorm:"type:uuid;not null;index:uniq_summary_session,unique"`
	SessionDate string `gorm:"not null"`

	OpeningFloat     int64 `gorm:"not null"`
	ClosingPrimary   int64 `gorm:"not null"`
	ClosingSecondary int64 `gorm:"not null"`

	TotalBuyIns       int64 `gorm:"not null"`
	TotalPayouts      int64 `gorm:"not null"`
	TotalDeposits     int64 `gorm:"not null"`
	TotalExpenses     int64 `gorm:"not null"`
	TotalFloatAdded   int64 `gorm:"not null"`
	CreditIssued      int64 `gorm:"not null"`
	CreditSettled     int64 `gorm:"not null"`
	OutstandingCredit int64 `gorm:"not null"`
	ChipsInHandValue  int64 `gorm:"not null"`
	ChipsOutValue     int64 `gorm:"not null"`
	ChipsOverReturned int64 `gorm:"not null"`
	NetProfitLoss     int64 `gorm:"not null"`

	Warnings  datatypes.JSON `gorm:"not null"`
	ClosedBy  string         `gorm:"not null"`
	ClosedAt  time.Time      `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (SessionSummary) TableName() string { return "session_summaries" }

func (summary *SessionSummary) BeforeCreate(tx *gorm.DB) error {
	if summary.SummaryID == "" {
		summary.SummaryID = uuid.NewString()
	}
	return nil
}
