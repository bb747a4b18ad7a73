package cashier

import (
	"context"
	"fmt"
)

// BuyInResult reports a cash buy-in: chips handed out, cash into the
// player-deposit pool.
type BuyInResult struct {
	Transaction Transaction
	Session     Session
	Message     string
}

// RecordBuyIn exchanges player cash for chips. The declared amount must
// equal the face value of the breakdown; the chips must be in hand.
func (service *Service) RecordBuyIn(ctx context.Context, sessionID SessionID, playerID PlayerID, amount Amount, chips ChipBreakdown, actor Actor) (BuyInResult, error) {
	var result BuyInResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if amount <= 0 {
			return fmt.Errorf("%w: buy-in must be greater than zero", ErrInvalidAmount)
		}
		if chips.Value() != amount {
			return BreakdownMismatchError{Declared: amount, ChipValue: chips.Value()}
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		if err := session.GiveChips(chips); err != nil {
			return err
		}
		session.CreditWallet(WalletSecondary, amount)
		session.TransactionCount++
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindBuyIn,
			PlayerID:       playerID.String(),
			Amount:         amount,
			Chips:          chips,
			SecondaryDelta: amount.Int64(),
			Actor:          actor.String(),
			CreatedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = BuyInResult{
			Transaction: record,
			Session:     session,
			Message:     fmt.Sprintf("buy-in of %d recorded for player %s (%s)", amount, playerID, chips),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationBuyIn,
		SessionID: sessionID.String(),
		PlayerID:  playerID.String(),
		Amount:    amount,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// PayoutResult reports a cash-out: chips returned, outstanding credit
// auto-settled oldest-first, the remainder paid out secondary-first.
type PayoutResult struct {
	Transaction   Transaction
	Session       Session
	ChipsValue    Amount
	CreditSettled Amount
	NetPayout     Amount
	Split         WalletSplit
	Message       string
}

// RecordCashPayout cashes a player out. Outstanding credit for the
// player is settled first from the returned chip value; if the chips do
// not cover it the payout is rejected and nothing mutates.
func (service *Service) RecordCashPayout(ctx context.Context, sessionID SessionID, playerID PlayerID, chips ChipBreakdown, actor Actor) (PayoutResult, error) {
	var result PayoutResult
	chipsValue := chips.Value()
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if chipsValue <= 0 {
			return fmt.Errorf("%w: payout requires returned chips", ErrInvalidAmount)
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		records, err := transactionStore.ListUnsettledCredit(ctx, session.SessionID, playerID.String())
		if err != nil {
			return err
		}
		outstanding := sumOutstanding(records)
		if chipsValue < outstanding {
			return CreditShortfallError{Outstanding: outstanding, Returned: chipsValue}
		}
		nowUnixUTC := service.nowFn()
		settled, changed := settleOldestFirst(records, outstanding, nowUnixUTC)
		for _, record := range changed {
			if err := transactionStore.SaveCreditRecord(ctx, record); err != nil {
				return err
			}
		}
		session.ReceiveChips(chips)
		netPayout := chipsValue - settled
		var split WalletSplit
		if netPayout > 0 {
			split, err = session.SplitDebit(netPayout)
			if err != nil {
				return err
			}
			session.ApplyDebit(split)
		}
		session.OutstandingCredit, err = transactionStore.SumOutstandingCredit(ctx, session.SessionID)
		if err != nil {
			return err
		}
		session.TransactionCount++
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindCashPayout,
			PlayerID:       playerID.String(),
			Amount:         netPayout,
			Chips:          chips,
			PrimaryDelta:   -split.FromPrimary.Int64(),
			SecondaryDelta: -split.FromSecondary.Int64(),
			CreditSettled:  settled,
			Actor:          actor.String(),
			CreatedUnixUTC: nowUnixUTC,
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = PayoutResult{
			Transaction:   record,
			Session:       session,
			ChipsValue:    chipsValue,
			CreditSettled: settled,
			NetPayout:     netPayout,
			Split:         split,
			Message:       payoutMessage(playerID, chipsValue, settled, netPayout),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCashPayout,
		SessionID: sessionID.String(),
		PlayerID:  playerID.String(),
		Amount:    chipsValue,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

func payoutMessage(playerID PlayerID, chipsValue Amount, settled Amount, netPayout Amount) string {
	if settled > 0 {
		return fmt.Sprintf("player %s returned chips worth %d: %d settled against credit, %d paid out", playerID, chipsValue, settled, netPayout)
	}
	return fmt.Sprintf("player %s returned chips worth %d, paid out in cash", playerID, chipsValue)
}

// DepositResult reports a chip or cash deposit held for a player.
type DepositResult struct {
	Transaction Transaction
	Session     Session
	Message     string
}

// DepositChips takes chips back into the cashier's hand for
// safekeeping. No cash moves.
func (service *Service) DepositChips(ctx context.Context, sessionID SessionID, playerID PlayerID, chips ChipBreakdown, actor Actor) (DepositResult, error) {
	var result DepositResult
	chipsValue := chips.Value()
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if chipsValue <= 0 {
			return fmt.Errorf("%w: deposit requires chips", ErrInvalidAmount)
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		session.ReceiveChips(chips)
		session.TransactionCount++
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindDepositChips,
			PlayerID:       playerID.String(),
			Amount:         chipsValue,
			Chips:          chips,
			Actor:          actor.String(),
			CreatedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = DepositResult{
			Transaction: record,
			Session:     session,
			Message:     fmt.Sprintf("chips worth %d deposited by player %s", chipsValue, playerID),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationDepositChips,
		SessionID: sessionID.String(),
		PlayerID:  playerID.String(),
		Amount:    chipsValue,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// DepositCash adds player cash to the secondary wallet for safekeeping.
func (service *Service) DepositCash(ctx context.Context, sessionID SessionID, playerID PlayerID, amount Amount, actor Actor) (DepositResult, error) {
	var result DepositResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if amount <= 0 {
			return fmt.Errorf("%w: deposit must be greater than zero", ErrInvalidAmount)
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		session.CreditWallet(WalletSecondary, amount)
		session.TransactionCount++
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindDepositCash,
			PlayerID:       playerID.String(),
			Amount:         amount,
			SecondaryDelta: amount.Int64(),
			Actor:          actor.String(),
			CreatedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = DepositResult{
			Transaction: record,
			Session:     session,
			Message:     fmt.Sprintf("cash deposit of %d recorded for player %s", amount, playerID),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationDepositCash,
		SessionID: sessionID.String(),
		PlayerID:  playerID.String(),
		Amount:    amount,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// ExpenseResult reports a club expense or dealer tip paid from the
// drawer.
type ExpenseResult struct {
	Transaction Transaction
	Session     Session
	Split       WalletSplit
	Message     string
}

// RecordExpense pays a club expense (or dealer tip) out of the drawer,
// secondary wallet first.
func (service *Service) RecordExpense(ctx context.Context, sessionID SessionID, amount Amount, category string, note string, actor Actor) (ExpenseResult, error) {
	var result ExpenseResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if amount <= 0 {
			return fmt.Errorf("%w: expense must be greater than zero", ErrInvalidAmount)
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		split, err := session.SplitDebit(amount)
		if err != nil {
			return err
		}
		session.ApplyDebit(split)
		session.TransactionCount++
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindExpense,
			Amount:         amount,
			PrimaryDelta:   -split.FromPrimary.Int64(),
			SecondaryDelta: -split.FromSecondary.Int64(),
			Category:       category,
			Note:           note,
			Actor:          actor.String(),
			CreatedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = ExpenseResult{
			Transaction: record,
			Session:     session,
			Split:       split,
			Message:     fmt.Sprintf("expense of %d paid (%d from deposits, %d from float)", amount, split.FromSecondary, split.FromPrimary),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationExpense,
		SessionID: sessionID.String(),
		Amount:    amount,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// FloatResult reports a mid-session owner float top-up.
type FloatResult struct {
	Transaction Transaction
	Addition    FloatAddition
	Session     Session
	Message     string
}

// AddFloat tops up the owner float with cash and optionally matching
// chips, recording both the float-addition row and the transaction.
func (service *Service) AddFloat(ctx context.Context, sessionID SessionID, amount Amount, chips *ChipBreakdown, note string, actor Actor) (FloatResult, error) {
	var result FloatResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if amount <= 0 {
			return fmt.Errorf("%w: float addition must be greater than zero", ErrInvalidAmount)
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		var added ChipBreakdown
		if chips != nil {
			added = *chips
			session.StockChips(added)
		}
		session.OwnerFloat += amount
		session.CreditWallet(WalletPrimary, amount)
		session.TransactionCount++
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		nowUnixUTC := service.nowFn()
		addition := FloatAddition{
			SessionID:      session.SessionID,
			Amount:         amount,
			Chips:          added,
			Note:           note,
			Actor:          actor.String(),
			CreatedUnixUTC: nowUnixUTC,
		}
		if err := transactionStore.CreateFloatAddition(ctx, addition); err != nil {
			return err
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindAddFloat,
			Amount:         amount,
			Chips:          added,
			PrimaryDelta:   amount.Int64(),
			Note:           note,
			Actor:          actor.String(),
			CreatedUnixUTC: nowUnixUTC,
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = FloatResult{
			Transaction: record,
			Addition:    addition,
			Session:     session,
			Message:     fmt.Sprintf("owner float topped up by %d (now %d)", amount, session.OwnerFloat),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationAddFloat,
		SessionID: sessionID.String(),
		Amount:    amount,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// AdjustResult reports a manual balance correction.
type AdjustResult struct {
	Transaction Transaction
	Session     Session
	Message     string
}

// AdjustBalance applies a signed manual correction to the named wallet.
// Negative corrections cannot take the wallet below zero.
func (service *Service) AdjustBalance(ctx context.Context, sessionID SessionID, target WalletName, delta int64, note string, actor Actor) (AdjustResult, error) {
	var result AdjustResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if delta == 0 {
			return fmt.Errorf("%w: adjustment must be non-zero", ErrInvalidAmount)
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		balance := session.PrimaryBalance
		if target == WalletSecondary {
			balance = session.SecondaryBalance
		}
		if balance.Int64()+delta < 0 {
			return InsufficientFundsError{
				Requested:          Amount(-delta),
				SecondaryAvailable: session.SecondaryBalance,
				PrimaryAvailable:   session.PrimaryBalance,
			}
		}
		var primaryDelta, secondaryDelta int64
		switch target {
		case WalletPrimary:
			session.PrimaryBalance += Amount(delta)
			primaryDelta = delta
		case WalletSecondary:
			session.SecondaryBalance += Amount(delta)
			secondaryDelta = delta
		default:
			return fmt.Errorf("%w: %q", ErrInvalidWallet, target)
		}
		session.TransactionCount++
		if err := transactionStore.SaveSession(ctx, session); err != nil {
			return err
		}
		magnitude := delta
		if magnitude < 0 {
			magnitude = -magnitude
		}
		record := Transaction{
			SessionID:      session.SessionID,
			Kind:           KindBalanceAdjustment,
			Amount:         Amount(magnitude),
			PrimaryDelta:   primaryDelta,
			SecondaryDelta: secondaryDelta,
			Category:       string(target),
			Note:           note,
			Actor:          actor.String(),
			CreatedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = AdjustResult{
			Transaction: record,
			Session:     session,
			Message:     fmt.Sprintf("%s wallet adjusted by %d", target, delta),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationAdjustBalance,
		SessionID: sessionID.String(),
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// ListTransactions returns the session's transaction log in insertion order.
func (service *Service) ListTransactions(ctx context.Context, sessionID SessionID) ([]Transaction, error) {
	return service.store.ListTransactions(ctx, sessionID.String())
}

// ListFloatAdditions returns the session's float top-ups in order.
func (service *Service) ListFloatAdditions(ctx context.Context, sessionID SessionID) ([]FloatAddition, error) {
	return service.store.ListFloatAdditions(ctx, sessionID.String())
}
