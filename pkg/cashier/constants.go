package cashier

const (
	operationOpenSession   = "open_session"
	operationReopenSession = "reopen_session"
	operationCloseSession  = "close_session"
	operationSetInventory  = "set_opening_inventory"
	operationBuyIn         = "buy_in"
	operationCashPayout    = "cash_payout"
	operationDepositChips  = "deposit_chips"
	operationDepositCash   = "deposit_cash"
	operationIssueCredit   = "issue_credit"
	operationSettleCredit  = "settle_credit"
	operationExpense       = "expense"
	operationAdjustBalance = "adjust_balance"
	operationAddFloat      = "add_float"

	operationStatusOK    = "ok"
	operationStatusError = "error"
)
