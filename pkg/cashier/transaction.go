package cashier

import "fmt"

// TransactionKind enumerates ledger transaction kinds.
type TransactionKind string

const (
	KindBuyIn             TransactionKind = "buy_in"
	KindCashPayout        TransactionKind = "cash_payout"
	KindDepositChips      TransactionKind = "deposit_chips"
	KindDepositCash       TransactionKind = "deposit_cash"
	KindIssueCredit       TransactionKind = "issue_credit"
	KindSettleCredit      TransactionKind = "settle_credit"
	KindExpense           TransactionKind = "expense"
	KindBalanceAdjustment TransactionKind = "balance_adjustment"
	KindAddFloat          TransactionKind = "add_float"
	KindOpeningInventory  TransactionKind = "opening_inventory"
	KindSessionReopened   TransactionKind = "session_reopened"
)

// ParseTransactionKind validates a stored transaction kind.
func ParseTransactionKind(raw string) (TransactionKind, error) {
	kind := TransactionKind(raw)
	if _, known := kindEffects[kind]; !known {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionKind, raw)
	}
	return kind, nil
}

// String returns the stored representation.
func (kind TransactionKind) String() string {
	return string(kind)
}

// ChipFlow describes how a transaction's chip breakdown moves stock.
type ChipFlow int

const (
	// ChipsNone leaves the physical inventory untouched.
	ChipsNone ChipFlow = iota
	// ChipsGive moves chips from the cashier's hand to players.
	ChipsGive
	// ChipsReceive moves chips from players back to the cashier.
	ChipsReceive
	// ChipsStock adds new chips to the cashier's hand without touching
	// the out-with-players count (float additions, opening inventory).
	ChipsStock
)

// StatBucket classifies a transaction for dashboard and summary totals.
type StatBucket string

const (
	BucketBuyIns      StatBucket = "buy_ins"
	BucketPayouts     StatBucket = "payouts"
	BucketDeposits    StatBucket = "deposits"
	BucketCredit      StatBucket = "credit_issued"
	BucketSettlements StatBucket = "credit_settled"
	BucketExpenses    StatBucket = "expenses"
	BucketAdjustments StatBucket = "adjustments"
	BucketFloat       StatBucket = "float_additions"
	BucketLifecycle   StatBucket = "lifecycle"
)

// kindEffect is the single classification point for a transaction kind:
// how it moves chips and which stat bucket it lands in. Wallet movement
// is carried on the transaction itself as signed per-wallet deltas, so
// replay never re-derives the split.
type kindEffect struct {
	chips  ChipFlow
	bucket StatBucket
}

var kindEffects = map[TransactionKind]kindEffect{
	KindBuyIn:             {chips: ChipsGive, bucket: BucketBuyIns},
	KindCashPayout:        {chips: ChipsReceive, bucket: BucketPayouts},
	KindDepositChips:      {chips: ChipsReceive, bucket: BucketDeposits},
	KindDepositCash:       {chips: ChipsNone, bucket: BucketDeposits},
	KindIssueCredit:       {chips: ChipsNone, bucket: BucketCredit},
	KindSettleCredit:      {chips: ChipsNone, bucket: BucketSettlements},
	KindExpense:           {chips: ChipsNone, bucket: BucketExpenses},
	KindBalanceAdjustment: {chips: ChipsNone, bucket: BucketAdjustments},
	KindAddFloat:          {chips: ChipsStock, bucket: BucketFloat},
	KindOpeningInventory:  {chips: ChipsStock, bucket: BucketLifecycle},
	KindSessionReopened:   {chips: ChipsNone, bucket: BucketLifecycle},
}

// ChipFlow returns the chip flow for a kind.
func (kind TransactionKind) ChipFlow() ChipFlow {
	return kindEffects[kind].chips
}

// Bucket returns the stat bucket for a kind.
func (kind TransactionKind) Bucket() StatBucket {
	return kindEffects[kind].bucket
}

// Transaction is a single immutable line in the session ledger. Wallet
// movement is recorded as signed deltas so the log alone reproduces
// every balance.
type Transaction struct {
	TransactionID  string
	SessionID      string
	Kind           TransactionKind
	PlayerID       string
	Amount         Amount
	Chips          ChipBreakdown
	PrimaryDelta   int64
	SecondaryDelta int64
	CreditSettled  Amount
	Category       string
	Note           string
	Actor          string
	CreatedUnixUTC int64
}
