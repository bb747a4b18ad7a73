package cashier

// CreditRecord is one credit issuance: chips handed to a player against
// future settlement. Created on issue, mutated only by settlement,
// never deleted.
type CreditRecord struct {
	CreditID       string
	SessionID      string
	PlayerID       string
	Chips          ChipBreakdown
	Issued         Amount
	Settled        Amount
	SettledChips   ChipBreakdown
	FullySettled   bool
	ApprovalID     string
	Actor          string
	CreatedUnixUTC int64
	UpdatedUnixUTC int64
}

// Outstanding returns the unsettled remainder of the issuance.
func (record CreditRecord) Outstanding() Amount {
	return record.Issued - record.Settled
}

// applySettlement settles up to remaining against the record, oldest
// callers first, and returns how much of remaining was consumed. The
// per-denomination attribution is proportional to the original mix.
func (record *CreditRecord) applySettlement(remaining Amount, nowUnixUTC int64) Amount {
	outstanding := record.Outstanding()
	if outstanding <= 0 || remaining <= 0 {
		return 0
	}
	applied := remaining
	if applied > outstanding {
		applied = outstanding
	}
	record.Settled += applied
	record.SettledChips = record.Chips.Portion(record.Settled)
	record.FullySettled = record.Outstanding() == 0
	if record.FullySettled {
		record.SettledChips = record.Chips
	}
	record.UpdatedUnixUTC = nowUnixUTC
	return applied
}

// settleOldestFirst walks unsettled records in issuance order and
// consumes up to amount, returning the total settled and the records
// that changed.
func settleOldestFirst(records []CreditRecord, amount Amount, nowUnixUTC int64) (Amount, []CreditRecord) {
	var settled Amount
	var changed []CreditRecord
	remaining := amount
	for index := range records {
		applied := records[index].applySettlement(remaining, nowUnixUTC)
		if applied == 0 {
			continue
		}
		settled += applied
		remaining -= applied
		changed = append(changed, records[index])
		if remaining == 0 {
			break
		}
	}
	return settled, changed
}

// sumOutstanding totals the unsettled remainder across records.
func sumOutstanding(records []CreditRecord) Amount {
	var total Amount
	for _, record := range records {
		total += record.Outstanding()
	}
	return total
}
