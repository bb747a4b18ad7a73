package cashier

import (
	"context"
	"fmt"
)

// CreditResult reports a credit issuance.
type CreditResult struct {
	Record      CreditRecord
	Transaction Transaction
	Session     Session
	Available   Amount
	Message     string
}

// IssueCredit hands chips to a player against future settlement. It
// touches neither the physical inventory nor the wallets: credit chips
// are conceptually separate from the cashier's stock. The per-player
// limit is enforced against the player's outstanding total.
func (service *Service) IssueCredit(ctx context.Context, sessionID SessionID, playerID PlayerID, chips ChipBreakdown, approvalID string, actor Actor) (CreditResult, error) {
	var result CreditResult
	chipsValue := chips.Value()
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if chipsValue <= 0 {
			return fmt.Errorf("%w: credit requires chips", ErrInvalidAmount)
		}
		session, err := service.loadOpenSession(ctx, transactionStore, sessionID)
		if err != nil {
			return err
		}
		playerOutstanding, err := transactionStore.SumOutstandingCreditForPlayer(ctx, session.SessionID, playerID.String())
		if err != nil {
			return err
		}
		available := session.CreditLimit - playerOutstanding
		if chipsValue > available {
			return fmt.Errorf("%w: requested %d, available %d of limit %d", ErrCreditLimitExceeded, chipsValue, available, session.CreditLimit)
		}
		nowUnixUTC := service.nowFn()
		creditRecord := CreditRecord{
			SessionID:      session.SessionID,
			PlayerID:       playerID.String(),
			Chips:          chips,
			Issued:         chipsValue,
			ApprovalID:     approvalID,
			Actor:          actor.String(),
			CreatedUnixUTC: nowUnixUTC,
			UpdatedUnixUTC: nowUnixUTC,
		}
		if err := transactionStore.CreateCreditRecord(ctx, creditRecord); err != nil {
			return err
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
			Kind:           KindIssueCredit,
			PlayerID:       playerID.String(),
			Amount:         chipsValue,
			Chips:          chips,
			Actor:          actor.String(),
			CreatedUnixUTC: nowUnixUTC,
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = CreditResult{
			Record:      creditRecord,
			Transaction: record,
			Session:     session,
			Available:   available - chipsValue,
			Message:     fmt.Sprintf("credit of %d issued to player %s (%s)", chipsValue, playerID, chips),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationIssueCredit,
		SessionID: sessionID.String(),
		PlayerID:  playerID.String(),
		Amount:    chipsValue,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// SettlementResult reports an explicit credit settlement.
type SettlementResult struct {
	Transaction Transaction
	Session     Session
	Settled     Amount
	Outstanding Amount
	Message     string
}

// SettleCredit settles a player's outstanding credit outside the
// cash-out flow, oldest record first. Cash payments land in the
// secondary wallet; online payments never touch the drawer. The
// session's outstanding total is recomputed by re-summing unsettled
// records, never adjusted incrementally.
func (service *Service) SettleCredit(ctx context.Context, sessionID SessionID, playerID PlayerID, amount Amount, mode PaymentMode, actor Actor) (SettlementResult, error) {
	var result SettlementResult
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if amount <= 0 {
			return fmt.Errorf("%w: settlement must be greater than zero", ErrInvalidAmount)
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
		if amount > outstanding {
			return fmt.Errorf("%w: settlement of %d exceeds outstanding %d", ErrInvalidAmount, amount, outstanding)
		}
		nowUnixUTC := service.nowFn()
		settled, changed := settleOldestFirst(records, amount, nowUnixUTC)
		for _, changedRecord := range changed {
			if err := transactionStore.SaveCreditRecord(ctx, changedRecord); err != nil {
				return err
			}
		}
		var secondaryDelta int64
		if mode == PaymentCash {
			session.CreditWallet(WalletSecondary, settled)
			secondaryDelta = settled.Int64()
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
			Kind:           KindSettleCredit,
			PlayerID:       playerID.String(),
			Amount:         settled,
			SecondaryDelta: secondaryDelta,
			CreditSettled:  settled,
			Category:       string(mode),
			Actor:          actor.String(),
			CreatedUnixUTC: nowUnixUTC,
		}
		if err := transactionStore.InsertTransaction(ctx, record); err != nil {
			return err
		}
		result = SettlementResult{
			Transaction: record,
			Session:     session,
			Settled:     settled,
			Outstanding: outstanding - settled,
			Message:     fmt.Sprintf("credit settlement of %d recorded for player %s via %s", settled, playerID, mode),
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationSettleCredit,
		SessionID: sessionID.String(),
		PlayerID:  playerID.String(),
		Amount:    amount,
		Actor:     actor.String(),
		Error:     operationError,
	})
	return result, operationError
}

// OutstandingCredit returns the player's unsettled total for a session.
func (service *Service) OutstandingCredit(ctx context.Context, sessionID SessionID, playerID PlayerID) (Amount, error) {
	return service.store.SumOutstandingCreditForPlayer(ctx, sessionID.String(), playerID.String())
}
