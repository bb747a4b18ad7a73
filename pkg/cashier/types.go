package cashier

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Amount is an integer currency in whole rupees.
type Amount int64

// Int64 returns the raw rupee value.
func (amount Amount) Int64() int64 {
	return int64(amount)
}

// PlayerID identifies a player in the directory.
type PlayerID struct {
	value string
}

// SessionID identifies a daily session aggregate.
type SessionID struct {
	value string
}

// SessionDate is a calendar date in YYYY-MM-DD form.
type SessionDate struct {
	value string
}

// Actor names the staff member performing an operation.
type Actor struct {
	value string
}

// WalletName selects one of the two session cash pools.
type WalletName string

const (
	WalletPrimary   WalletName = "primary"
	WalletSecondary WalletName = "secondary"
)

// PaymentMode describes how an explicit credit settlement was paid.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentOnline PaymentMode = "online"
)

const sessionDateLayout = "2006-01-02"

// NewPlayerID validates and normalizes a player id.
func NewPlayerID(raw string) (PlayerID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PlayerID{}, fmt.Errorf("%w: empty value", ErrInvalidPlayerID)
	}
	return PlayerID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id PlayerID) String() string {
	return id.value
}

// IsZero reports whether the id is unset.
func (id PlayerID) IsZero() bool {
	return id.value == ""
}

// NewSessionID validates and normalizes a session id.
func NewSessionID(raw string) (SessionID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SessionID{}, fmt.Errorf("%w: empty value", ErrInvalidSessionID)
	}
	return SessionID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id SessionID) String() string {
	return id.value
}

// NewSessionDate validates a calendar date string.
func NewSessionDate(raw string) (SessionDate, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := time.Parse(sessionDateLayout, trimmed); err != nil {
		return SessionDate{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidSessionDate, raw)
	}
	return SessionDate{value: trimmed}, nil
}

// SessionDateOf converts an instant to its calendar date in UTC.
func SessionDateOf(unixUTC int64) SessionDate {
	return SessionDate{value: time.Unix(unixUTC, 0).UTC().Format(sessionDateLayout)}
}

// String returns the date in YYYY-MM-DD form.
func (date SessionDate) String() string {
	return date.value
}

// NewActor validates and normalizes an actor name.
func NewActor(raw string) (Actor, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Actor{}, fmt.Errorf("%w: empty value", ErrInvalidActor)
	}
	return Actor{value: trimmed}, nil
}

// String returns the normalized actor name.
func (actor Actor) String() string {
	return actor.value
}

// NewAmount validates an operation amount and ensures it is strictly positive.
func NewAmount(raw int64) (Amount, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return Amount(raw), nil
}

// ParseWalletName validates a wallet selector.
func ParseWalletName(raw string) (WalletName, error) {
	switch WalletName(raw) {
	case WalletPrimary, WalletSecondary:
		return WalletName(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWallet, raw)
}

// ParsePaymentMode validates a settlement payment mode.
func ParsePaymentMode(raw string) (PaymentMode, error) {
	switch PaymentMode(raw) {
	case PaymentCash, PaymentOnline:
		return PaymentMode(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMode, raw)
}

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
	GetSessionForUpdate(ctx context.Context, sessionID string) (Session, error)
	GetOpenSessionByDate(ctx context.Context, date string) (Session, error)
	GetLatestSessionByDate(ctx context.Context, date string) (Session, error)
	SaveSession(ctx context.Context, session Session) error
	InsertTransaction(ctx context.Context, transaction Transaction) error
	ListTransactions(ctx context.Context, sessionID string) ([]Transaction, error)
	CreateCreditRecord(ctx context.Context, record CreditRecord) error
	SaveCreditRecord(ctx context.Context, record CreditRecord) error
	ListUnsettledCredit(ctx context.Context, sessionID string, playerID string) ([]CreditRecord, error)
	SumOutstandingCredit(ctx context.Context, sessionID string) (Amount, error)
	SumOutstandingCreditForPlayer(ctx context.Context, sessionID string, playerID string) (Amount, error)
	CreateFloatAddition(ctx context.Context, addition FloatAddition) error
	ListFloatAdditions(ctx context.Context, sessionID string) ([]FloatAddition, error)
	CreateSessionSummary(ctx context.Context, summary SessionSummary) error
	GetSessionSummary(ctx context.Context, sessionID string) (SessionSummary, error)
	CountPendingCreditRequests(ctx context.Context, sessionID string) (int64, error)
}
