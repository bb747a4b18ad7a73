package cashier

import (
	"context"
	"errors"
	"testing"
)

func TestBuyInThenPayoutRoundTrip(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	opening := mustChips(test, 50, 20, 0, 0)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, &opening)
	playerID := mustPlayerID(test, "player-1")
	actor := mustActor(test, "cashier-1")

	buyIn, err := service.RecordBuyIn(context.Background(), sessionID, playerID, 1000, mustChips(test, 10, 0, 0, 0), actor)
	if err != nil {
		test.Fatalf("buy-in: %v", err)
	}
	if buyIn.Session.SecondaryBalance != 1000 {
		test.Fatalf("expected buy-in cash in secondary wallet, got %d", buyIn.Session.SecondaryBalance)
	}
	if buyIn.Session.CurrentChips != mustChips(test, 40, 20, 0, 0) {
		test.Fatalf("unexpected stock after buy-in %v", buyIn.Session.CurrentChips)
	}
	if buyIn.Session.OutChips != mustChips(test, 10, 0, 0, 0) {
		test.Fatalf("unexpected circulation after buy-in %v", buyIn.Session.OutChips)
	}

	payout, err := service.RecordCashPayout(context.Background(), sessionID, playerID, mustChips(test, 10, 0, 0, 0), actor)
	if err != nil {
		test.Fatalf("payout: %v", err)
	}
	if payout.NetPayout != 1000 || payout.CreditSettled != 0 {
		test.Fatalf("unexpected payout %+v", payout)
	}
	if payout.Split.FromSecondary != 1000 || payout.Split.FromPrimary != 0 {
		test.Fatalf("expected payout drawn from player deposits, got %+v", payout.Split)
	}

	session := store.mustSession(test, sessionID.String())
	if session.PrimaryBalance != 100000 || session.SecondaryBalance != 0 {
		test.Fatalf("round trip must restore balances, got primary=%d secondary=%d", session.PrimaryBalance, session.SecondaryBalance)
	}
	if session.CurrentChips != opening || !session.OutChips.IsZero() {
		test.Fatalf("round trip must restore inventory, got current=%v out=%v", session.CurrentChips, session.OutChips)
	}
}

func TestBuyInRejectsBreakdownMismatch(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	opening := mustChips(test, 50, 0, 0, 0)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, &opening)

	_, err := service.RecordBuyIn(context.Background(), sessionID, mustPlayerID(test, "player-1"), 1000, mustChips(test, 5, 0, 0, 0), mustActor(test, "cashier-1"))
	var mismatch BreakdownMismatchError
	if !errors.As(err, &mismatch) {
		test.Fatalf("expected BreakdownMismatchError, got %v", err)
	}
	if mismatch.Declared != 1000 || mismatch.ChipValue != 500 {
		test.Fatalf("unexpected mismatch detail %+v", mismatch)
	}
	if len(store.transactions) != 1 {
		test.Fatalf("rejected buy-in must not append a transaction, log has %d", len(store.transactions))
	}
}

func TestBuyInRejectsInsufficientChips(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	opening := mustChips(test, 5, 0, 0, 0)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, &opening)

	_, err := service.RecordBuyIn(context.Background(), sessionID, mustPlayerID(test, "player-1"), 1000, mustChips(test, 10, 0, 0, 0), mustActor(test, "cashier-1"))
	if !errors.Is(err, ErrInsufficientChips) {
		test.Fatalf("expected ErrInsufficientChips, got %v", err)
	}
	session := store.mustSession(test, sessionID.String())
	if session.SecondaryBalance != 0 || session.CurrentChips != opening {
		test.Fatalf("rejected buy-in must not mutate the session, got %+v", session)
	}
}

func TestPayoutRejectsEmptyReturn(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, nil)

	_, err := service.RecordCashPayout(context.Background(), sessionID, mustPlayerID(test, "player-1"), ChipBreakdown{}, mustActor(test, "cashier-1"))
	if !errors.Is(err, ErrInvalidAmount) {
		test.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDepositChipsReturnsStockWithoutCash(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	opening := mustChips(test, 50, 0, 0, 0)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, &opening)
	playerID := mustPlayerID(test, "player-1")
	actor := mustActor(test, "cashier-1")
	if _, err := service.RecordBuyIn(context.Background(), sessionID, playerID, 2000, mustChips(test, 20, 0, 0, 0), actor); err != nil {
		test.Fatalf("buy-in: %v", err)
	}

	deposit, err := service.DepositChips(context.Background(), sessionID, playerID, mustChips(test, 20, 0, 0, 0), actor)
	if err != nil {
		test.Fatalf("deposit chips: %v", err)
	}
	if deposit.Session.CurrentChips != opening || !deposit.Session.OutChips.IsZero() {
		test.Fatalf("unexpected inventory after deposit %+v", deposit.Session)
	}
	if deposit.Session.SecondaryBalance != 2000 {
		test.Fatalf("chip deposit must not move cash, got secondary %d", deposit.Session.SecondaryBalance)
	}
}

func TestDepositCashLandsInSecondaryWallet(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, nil)

	result, err := service.DepositCash(context.Background(), sessionID, mustPlayerID(test, "player-1"), 5000, mustActor(test, "cashier-1"))
	if err != nil {
		test.Fatalf("deposit cash: %v", err)
	}
	if result.Session.SecondaryBalance != 5000 || result.Session.SecondaryDeposits != 5000 {
		test.Fatalf("unexpected secondary state %+v", result.Session)
	}
	if result.Transaction.SecondaryDelta != 5000 {
		test.Fatalf("unexpected transaction delta %+v", result.Transaction)
	}
}

func TestExpenseDrainsDepositsBeforeFloat(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, nil)
	actor := mustActor(test, "cashier-1")
	if _, err := service.DepositCash(context.Background(), sessionID, mustPlayerID(test, "player-1"), 3000, actor); err != nil {
		test.Fatalf("deposit cash: %v", err)
	}

	result, err := service.RecordExpense(context.Background(), sessionID, 5000, "dealer_tip", "evening shift", actor)
	if err != nil {
		test.Fatalf("expense: %v", err)
	}
	if result.Split.FromSecondary != 3000 || result.Split.FromPrimary != 2000 {
		test.Fatalf("unexpected split %+v", result.Split)
	}
	if result.Transaction.Category != "dealer_tip" {
		test.Fatalf("unexpected category %q", result.Transaction.Category)
	}
	session := store.mustSession(test, sessionID.String())
	if session.SecondaryBalance != 0 || session.PrimaryBalance != 98000 {
		test.Fatalf("unexpected balances %+v", session)
	}
}

func TestAddFloatGrowsFloatAndStock(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	opening := mustChips(test, 50, 0, 0, 0)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, &opening)

	chips := mustChips(test, 0, 0, 4, 0)
	result, err := service.AddFloat(context.Background(), sessionID, 20000, &chips, "midnight top-up", mustActor(test, "owner-1"))
	if err != nil {
		test.Fatalf("add float: %v", err)
	}
	if result.Session.OwnerFloat != 120000 || result.Session.PrimaryBalance != 120000 {
		test.Fatalf("unexpected float state %+v", result.Session)
	}
	if result.Session.CurrentChips != mustChips(test, 50, 0, 4, 0) {
		test.Fatalf("unexpected stock %v", result.Session.CurrentChips)
	}

	additions, err := service.ListFloatAdditions(context.Background(), sessionID)
	if err != nil {
		test.Fatalf("list float additions: %v", err)
	}
	if len(additions) != 1 || additions[0].Amount != 20000 || additions[0].Note != "midnight top-up" {
		test.Fatalf("unexpected float additions %v", additions)
	}
}

func TestAdjustBalanceAppliesSignedDelta(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, nil)
	actor := mustActor(test, "manager-1")

	up, err := service.AdjustBalance(context.Background(), sessionID, WalletPrimary, 500, "count correction", actor)
	if err != nil {
		test.Fatalf("adjust up: %v", err)
	}
	if up.Session.PrimaryBalance != 100500 || up.Transaction.PrimaryDelta != 500 {
		test.Fatalf("unexpected adjust result %+v", up)
	}

	down, err := service.AdjustBalance(context.Background(), sessionID, WalletPrimary, -700, "recount", actor)
	if err != nil {
		test.Fatalf("adjust down: %v", err)
	}
	if down.Session.PrimaryBalance != 99800 || down.Transaction.Amount != 700 {
		test.Fatalf("unexpected adjust result %+v", down)
	}
}

func TestAdjustBalanceRejectsNegativeResult(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, nil)

	_, err := service.AdjustBalance(context.Background(), sessionID, WalletSecondary, -100, "", mustActor(test, "manager-1"))
	if !errors.Is(err, ErrInsufficientFunds) {
		test.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestEveryMutationAppendsExactlyOneTransaction(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	opening := mustChips(test, 50, 20, 0, 0)
	sessionID, _ := mustOpenSession(test, service, store, "2026-08-30", 100000, &opening)
	playerID := mustPlayerID(test, "player-1")
	actor := mustActor(test, "cashier-1")

	logLen := func() int {
		transactions, err := service.ListTransactions(context.Background(), sessionID)
		if err != nil {
			test.Fatalf("list transactions: %v", err)
		}
		return len(transactions)
	}
	before := logLen()

	if _, err := service.RecordBuyIn(context.Background(), sessionID, playerID, 1000, mustChips(test, 10, 0, 0, 0), actor); err != nil {
		test.Fatalf("buy-in: %v", err)
	}
	if _, err := service.IssueCredit(context.Background(), sessionID, playerID, mustChips(test, 0, 4, 0, 0), "", actor); err != nil {
		test.Fatalf("issue credit: %v", err)
	}
	if _, err := service.RecordCashPayout(context.Background(), sessionID, playerID, mustChips(test, 10, 4, 0, 0), actor); err != nil {
		test.Fatalf("payout: %v", err)
	}

	if got := logLen(); got != before+3 {
		test.Fatalf("expected exactly one transaction per mutation, log grew by %d", got-before)
	}
}
