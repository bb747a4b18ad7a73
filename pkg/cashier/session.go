package cashier

import "fmt"

// Session is the daily cash/chip aggregate. At most one session per
// calendar date is open at a time; every ledger operation mutates this
// aggregate and appends exactly one Transaction in the same store
// transaction.
type Session struct {
	SessionID   string
	SessionDate string

	OwnerFloat   Amount
	OpeningFloat Amount

	PrimaryBalance       Amount
	SecondaryBalance     Amount
	SecondaryDeposits    Amount
	SecondaryWithdrawals Amount

	OpeningChips ChipBreakdown
	CurrentChips ChipBreakdown
	OutChips     ChipBreakdown

	ChipInventorySet  bool
	TransactionCount  int64
	CreditLimit       Amount
	OutstandingCredit Amount

	Closed         bool
	OpenedBy       string
	ClosedBy       string
	OpenedUnixUTC  int64
	ClosedUnixUTC  int64
	ReopenedFromID string
}

// GiveChips moves chips from the cashier's hand to players. Every short
// denomination is reported, not just the first.
func (session *Session) GiveChips(breakdown ChipBreakdown) error {
	var shortages []ChipShortage
	for _, denomination := range Denominations {
		requested := breakdown.CountOf(denomination)
		available := session.CurrentChips.CountOf(denomination)
		if available-requested < 0 {
			shortages = append(shortages, ChipShortage{
				Denomination: denomination,
				Requested:    requested,
				Available:    available,
			})
		}
	}
	if len(shortages) > 0 {
		return InsufficientChipsError{Shortages: shortages}
	}
	for _, denomination := range Denominations {
		count := breakdown.CountOf(denomination)
		session.CurrentChips.setCount(denomination, session.CurrentChips.CountOf(denomination)-count)
		session.OutChips.setCount(denomination, session.OutChips.CountOf(denomination)+count)
	}
	return nil
}

// ReceiveChips moves chips from players back to the cashier's hand.
// The out-with-players count floors at zero: a player returning more
// than was issued is a house-profit signal, surfaced by the summary,
// never blocked here.
func (session *Session) ReceiveChips(breakdown ChipBreakdown) {
	for _, denomination := range Denominations {
		count := breakdown.CountOf(denomination)
		session.CurrentChips.setCount(denomination, session.CurrentChips.CountOf(denomination)+count)
		out := session.OutChips.CountOf(denomination) - count
		if out < 0 {
			out = 0
		}
		session.OutChips.setCount(denomination, out)
	}
}

// StockChips adds chips to the cashier's hand without touching the
// out-with-players count (opening inventory, float additions).
func (session *Session) StockChips(breakdown ChipBreakdown) {
	session.CurrentChips = session.CurrentChips.Add(breakdown)
}

// SetOpeningInventory records the one-time opening chip counts. It is
// rejected once set, and once any transaction has been recorded.
func (session *Session) SetOpeningInventory(breakdown ChipBreakdown) error {
	if session.ChipInventorySet {
		return ErrInventoryAlreadySet
	}
	if session.TransactionCount > 0 {
		return ErrInventoryLocked
	}
	session.OpeningChips = breakdown
	session.CurrentChips = breakdown
	session.OutChips = ChipBreakdown{}
	session.ChipInventorySet = true
	return nil
}

// WalletSplit is the outcome of a secondary-first cash debit.
type WalletSplit struct {
	FromSecondary Amount
	FromPrimary   Amount
}

// SplitDebit allocates a cash debit across the two wallets, draining
// the secondary (player deposits) before the primary (owner float).
func (session *Session) SplitDebit(amount Amount) (WalletSplit, error) {
	fromSecondary := amount
	if session.SecondaryBalance < fromSecondary {
		fromSecondary = session.SecondaryBalance
	}
	fromPrimary := amount - fromSecondary
	if fromPrimary > session.PrimaryBalance {
		return WalletSplit{}, InsufficientFundsError{
			Requested:          amount,
			SecondaryAvailable: session.SecondaryBalance,
			PrimaryAvailable:   session.PrimaryBalance,
		}
	}
	return WalletSplit{FromSecondary: fromSecondary, FromPrimary: fromPrimary}, nil
}

// ApplyDebit subtracts a previously computed split from both wallets.
func (session *Session) ApplyDebit(split WalletSplit) {
	session.SecondaryBalance -= split.FromSecondary
	session.PrimaryBalance -= split.FromPrimary
	session.SecondaryWithdrawals += split.FromSecondary
}

// CreditWallet adds cash directly to the named wallet.
func (session *Session) CreditWallet(target WalletName, amount Amount) {
	switch target {
	case WalletPrimary:
		session.PrimaryBalance += amount
	case WalletSecondary:
		session.SecondaryBalance += amount
		session.SecondaryDeposits += amount
	}
}

// TotalCash returns the combined balance of both wallets.
func (session *Session) TotalCash() Amount {
	return session.PrimaryBalance + session.SecondaryBalance
}

// FloatAddition is an append-only record of a mid-session owner cash
// top-up, with optional matching chips.
type FloatAddition struct {
	AdditionID     string
	SessionID      string
	Amount         Amount
	Chips          ChipBreakdown
	Note           string
	Actor          string
	CreatedUnixUTC int64
}

// SessionSummary is the immutable close-time snapshot of a session.
// Totals are replayed from the transaction log; closing balances come
// from the aggregate counters so any drift between the two would be
// visible in the record.
type SessionSummary struct {
	SummaryID    string
	SessionID    string
	SessionDate  string
	OpeningFloat Amount

	ClosingPrimary   Amount
	ClosingSecondary Amount

	TotalBuyIns        Amount
	TotalPayouts       Amount
	TotalDeposits      Amount
	TotalExpenses      Amount
	TotalFloatAdded    Amount
	CreditIssued       Amount
	CreditSettled      Amount
	OutstandingCredit  Amount
	ChipsInHandValue   Amount
	ChipsOutValue      Amount
	ChipsOverReturned  Amount
	NetProfitLoss      Amount
	Warnings           []string
	ClosedBy           string
	ClosedUnixUTC      int64
}

// Warning messages emitted at close time. Non-fatal: closure proceeds
// and the condition is recorded for later reconciliation.
const (
	warningChipsInCirculation = "chips still in circulation worth %d"
	warningOutstandingCredit  = "outstanding credit of %d not yet settled"
)

func chipsInCirculationWarning(value Amount) string {
	return fmt.Sprintf(warningChipsInCirculation, value)
}

func outstandingCreditWarning(value Amount) string {
	return fmt.Sprintf(warningOutstandingCredit, value)
}
