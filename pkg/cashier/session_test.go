package cashier

import (
	"errors"
	"testing"
)

func TestGiveChipsReportsEveryShortDenomination(test *testing.T) {
	test.Parallel()
	session := Session{CurrentChips: mustChips(test, 5, 1, 0, 0)}

	err := session.GiveChips(mustChips(test, 10, 3, 0, 1))
	var chipsError InsufficientChipsError
	if !errors.As(err, &chipsError) {
		test.Fatalf("expected InsufficientChipsError, got %v", err)
	}
	if !errors.Is(err, ErrInsufficientChips) {
		test.Fatalf("expected ErrInsufficientChips match, got %v", err)
	}
	if len(chipsError.Shortages) != 3 {
		test.Fatalf("expected 3 shortages, got %d: %v", len(chipsError.Shortages), chipsError.Shortages)
	}
	if session.CurrentChips != mustChips(test, 5, 1, 0, 0) {
		test.Fatalf("inventory mutated on rejected give: %v", session.CurrentChips)
	}
}

func TestGiveChipsMovesStockToCirculation(test *testing.T) {
	test.Parallel()
	session := Session{CurrentChips: mustChips(test, 50, 20, 0, 0)}

	if err := session.GiveChips(mustChips(test, 10, 4, 0, 0)); err != nil {
		test.Fatalf("give chips: %v", err)
	}
	if session.CurrentChips != mustChips(test, 40, 16, 0, 0) {
		test.Fatalf("unexpected remaining stock %v", session.CurrentChips)
	}
	if session.OutChips != mustChips(test, 10, 4, 0, 0) {
		test.Fatalf("unexpected circulation %v", session.OutChips)
	}
}

func TestReceiveChipsFloorsCirculationAtZero(test *testing.T) {
	test.Parallel()
	session := Session{
		CurrentChips: mustChips(test, 10, 0, 0, 0),
		OutChips:     mustChips(test, 5, 0, 0, 0),
	}

	session.ReceiveChips(mustChips(test, 8, 2, 0, 0))

	if session.CurrentChips != mustChips(test, 18, 2, 0, 0) {
		test.Fatalf("unexpected stock %v", session.CurrentChips)
	}
	if session.OutChips != (ChipBreakdown{}) {
		test.Fatalf("expected circulation floored at zero, got %v", session.OutChips)
	}
}

func TestSetOpeningInventoryGuards(test *testing.T) {
	test.Parallel()
	session := Session{}
	if err := session.SetOpeningInventory(mustChips(test, 50, 20, 0, 0)); err != nil {
		test.Fatalf("set inventory: %v", err)
	}
	if err := session.SetOpeningInventory(mustChips(test, 1, 0, 0, 0)); !errors.Is(err, ErrInventoryAlreadySet) {
		test.Fatalf("expected ErrInventoryAlreadySet, got %v", err)
	}

	locked := Session{TransactionCount: 1}
	if err := locked.SetOpeningInventory(mustChips(test, 1, 0, 0, 0)); !errors.Is(err, ErrInventoryLocked) {
		test.Fatalf("expected ErrInventoryLocked, got %v", err)
	}
}

func TestSplitDebitDrainsSecondaryFirst(test *testing.T) {
	test.Parallel()
	session := Session{PrimaryBalance: 100000, SecondaryBalance: 3000}

	split, err := session.SplitDebit(5000)
	if err != nil {
		test.Fatalf("split debit: %v", err)
	}
	if split.FromSecondary != 3000 || split.FromPrimary != 2000 {
		test.Fatalf("unexpected split %+v", split)
	}

	session.ApplyDebit(split)
	if session.SecondaryBalance != 0 || session.PrimaryBalance != 98000 {
		test.Fatalf("unexpected balances primary=%d secondary=%d", session.PrimaryBalance, session.SecondaryBalance)
	}
	if session.SecondaryWithdrawals != 3000 {
		test.Fatalf("expected secondary withdrawals 3000, got %d", session.SecondaryWithdrawals)
	}
}

func TestSplitDebitRejectsOverdraw(test *testing.T) {
	test.Parallel()
	session := Session{PrimaryBalance: 1000, SecondaryBalance: 500}

	_, err := session.SplitDebit(2000)
	var fundsError InsufficientFundsError
	if !errors.As(err, &fundsError) {
		test.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if !errors.Is(err, ErrInsufficientFunds) {
		test.Fatalf("expected ErrInsufficientFunds match, got %v", err)
	}
	if fundsError.Requested != 2000 || fundsError.SecondaryAvailable != 500 || fundsError.PrimaryAvailable != 1000 {
		test.Fatalf("unexpected detail %+v", fundsError)
	}
}

func TestCreditWalletTracksDeposits(test *testing.T) {
	test.Parallel()
	session := Session{}
	session.CreditWallet(WalletSecondary, 4000)
	session.CreditWallet(WalletPrimary, 1000)

	if session.SecondaryBalance != 4000 || session.SecondaryDeposits != 4000 {
		test.Fatalf("unexpected secondary state %+v", session)
	}
	if session.PrimaryBalance != 1000 {
		test.Fatalf("unexpected primary balance %d", session.PrimaryBalance)
	}
	if session.TotalCash() != 5000 {
		test.Fatalf("unexpected total cash %d", session.TotalCash())
	}
}
