package cashier

import "context"

// Dashboard is a pure read model over the session and its transaction
// log. Balances and totals here are replayed from the log; the session
// counters ride along so any drift is visible to the caller.
type Dashboard struct {
	Session Session

	TotalBuyIns     Amount
	TotalPayouts    Amount
	TotalDeposits   Amount
	TotalExpenses   Amount
	TotalFloatAdded Amount
	TotalAdjustment Amount

	CreditIssued      Amount
	CreditSettled     Amount
	OutstandingCredit Amount

	ReplayedPrimary   Amount
	ReplayedSecondary Amount

	ChipsInHandValue  Amount
	ChipsOutValue     Amount
	ChipsOverReturned Amount

	TransactionCount int
}

// GetDashboard replays the session's transaction log into the read
// model. It never mutates.
func (service *Service) GetDashboard(ctx context.Context, sessionID SessionID) (Dashboard, error) {
	session, err := service.store.GetSession(ctx, sessionID.String())
	if err != nil {
		return Dashboard{}, err
	}
	transactions, err := service.store.ListTransactions(ctx, session.SessionID)
	if err != nil {
		return Dashboard{}, err
	}
	outstanding, err := service.store.SumOutstandingCredit(ctx, session.SessionID)
	if err != nil {
		return Dashboard{}, err
	}
	totals := replay(session, transactions)
	return Dashboard{
		Session:           session,
		TotalBuyIns:       totals.buckets[BucketBuyIns],
		TotalPayouts:      totals.buckets[BucketPayouts],
		TotalDeposits:     totals.buckets[BucketDeposits],
		TotalExpenses:     totals.buckets[BucketExpenses],
		TotalFloatAdded:   totals.buckets[BucketFloat],
		TotalAdjustment:   totals.buckets[BucketAdjustments],
		CreditIssued:      totals.buckets[BucketCredit],
		CreditSettled:     totals.creditSettled,
		OutstandingCredit: outstanding,
		ReplayedPrimary:   totals.primary,
		ReplayedSecondary: totals.secondary,
		ChipsInHandValue:  totals.inHand.Value(),
		ChipsOutValue:     totals.outValue(),
		ChipsOverReturned: totals.overReturnedValue(),
		TransactionCount:  len(transactions),
	}, nil
}

// replayState accumulates the log replay. Chip circulation is tracked
// unfloored so over-returns stay visible even though the stored
// aggregate floors the out count at zero.
type replayState struct {
	buckets       map[StatBucket]Amount
	primary       Amount
	secondary     Amount
	creditSettled Amount
	inHand        ChipBreakdown
	rawOut        map[Denomination]int64
}

func replay(session Session, transactions []Transaction) replayState {
	state := replayState{
		buckets: make(map[StatBucket]Amount),
		primary: session.OpeningFloat,
		rawOut:  make(map[Denomination]int64),
	}
	for _, transaction := range transactions {
		bucket := transaction.Kind.Bucket()
		if bucket == BucketAdjustments {
			state.buckets[bucket] += Amount(transaction.PrimaryDelta + transaction.SecondaryDelta)
		} else if bucket != BucketLifecycle {
			state.buckets[bucket] += transaction.Amount
		}
		state.primary += Amount(transaction.PrimaryDelta)
		state.secondary += Amount(transaction.SecondaryDelta)
		state.creditSettled += transaction.CreditSettled
		switch transaction.Kind.ChipFlow() {
		case ChipsGive:
			for _, denomination := range Denominations {
				count := transaction.Chips.CountOf(denomination)
				state.inHand.setCount(denomination, state.inHand.CountOf(denomination)-count)
				state.rawOut[denomination] += count
			}
		case ChipsReceive:
			for _, denomination := range Denominations {
				count := transaction.Chips.CountOf(denomination)
				state.inHand.setCount(denomination, state.inHand.CountOf(denomination)+count)
				state.rawOut[denomination] -= count
			}
		case ChipsStock:
			state.inHand = state.inHand.Add(transaction.Chips)
		}
	}
	return state
}

// outValue totals the face value of chips still in circulation,
// flooring each denomination at zero like the stored aggregate.
func (state replayState) outValue() Amount {
	var total int64
	for _, denomination := range Denominations {
		if count := state.rawOut[denomination]; count > 0 {
			total += count * int64(denomination)
		}
	}
	return Amount(total)
}

// overReturnedValue totals the face value players returned beyond what
// was issued to them (the house-profit signal).
func (state replayState) overReturnedValue() Amount {
	var total int64
	for _, denomination := range Denominations {
		if count := state.rawOut[denomination]; count < 0 {
			total += -count * int64(denomination)
		}
	}
	return Amount(total)
}

func buildSummary(session Session, transactions []Transaction, outstanding Amount, actor Actor, nowUnixUTC int64) SessionSummary {
	totals := replay(session, transactions)
	var warnings []string
	if outValue := totals.outValue(); outValue > 0 {
		warnings = append(warnings, chipsInCirculationWarning(outValue))
	}
	if outstanding > 0 {
		warnings = append(warnings, outstandingCreditWarning(outstanding))
	}
	return SessionSummary{
		SessionID:         session.SessionID,
		SessionDate:       session.SessionDate,
		OpeningFloat:      session.OpeningFloat,
		ClosingPrimary:    session.PrimaryBalance,
		ClosingSecondary:  session.SecondaryBalance,
		TotalBuyIns:       totals.buckets[BucketBuyIns],
		TotalPayouts:      totals.buckets[BucketPayouts],
		TotalDeposits:     totals.buckets[BucketDeposits],
		TotalExpenses:     totals.buckets[BucketExpenses],
		TotalFloatAdded:   totals.buckets[BucketFloat],
		CreditIssued:      totals.buckets[BucketCredit],
		CreditSettled:     totals.creditSettled,
		OutstandingCredit: outstanding,
		ChipsInHandValue:  session.CurrentChips.Value(),
		ChipsOutValue:     totals.outValue(),
		ChipsOverReturned: totals.overReturnedValue(),
		NetProfitLoss:     session.TotalCash() - session.OwnerFloat,
		Warnings:          warnings,
		ClosedBy:          actor.String(),
		ClosedUnixUTC:     nowUnixUTC,
	}
}
