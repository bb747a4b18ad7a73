package approval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MarkoPoloResearchLab/cashier/internal/approval"
	"github.com/MarkoPoloResearchLab/cashier/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/cashier/pkg/cashier"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recorderNotifier struct {
	requested []approval.Event
	decided   []approval.Event
}

func (notifier *recorderNotifier) CreditRequested(_ context.Context, event approval.Event) {
	notifier.requested = append(notifier.requested, event)
}

func (notifier *recorderNotifier) CreditDecided(_ context.Context, event approval.Event) {
	notifier.decided = append(notifier.decided, event)
}

type fixture struct {
	service   *approval.Service
	ledger    *cashier.Service
	notifier  *recorderNotifier
	sessionID cashier.SessionID
}

func newFixture(test *testing.T, creditLimit cashier.Amount) fixture {
	test.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		test.Fatalf("open sqlite: %v", err)
	}
	models := gormstore.Models()
	models = append(models, &approval.CreditRequest{})
	if err := db.AutoMigrate(models...); err != nil {
		test.Fatalf("auto migrate: %v", err)
	}
	store := gormstore.New(db)
	clock := func() int64 { return 1700000000 }
	ledger, err := cashier.NewService(store, clock, cashier.WithCreditLimit(creditLimit))
	if err != nil {
		test.Fatalf("new ledger: %v", err)
	}
	notifier := &recorderNotifier{}
	service := approval.New(db, ledger, clock, notifier)

	opened, err := ledger.OpenSession(context.Background(), mustDate(test), 100000, nil, mustActor(test))
	if err != nil {
		test.Fatalf("open session: %v", err)
	}
	sessionID, err := cashier.NewSessionID(opened.Session.SessionID)
	if err != nil {
		test.Fatalf("session id: %v", err)
	}
	return fixture{service: service, ledger: ledger, notifier: notifier, sessionID: sessionID}
}

func mustDate(test *testing.T) cashier.SessionDate {
	test.Helper()
	date, err := cashier.NewSessionDate("2026-08-30")
	if err != nil {
		test.Fatalf("date: %v", err)
	}
	return date
}

func mustActor(test *testing.T) cashier.Actor {
	test.Helper()
	actor, err := cashier.NewActor("cashier-1")
	if err != nil {
		test.Fatalf("actor: %v", err)
	}
	return actor
}

func mustPlayer(test *testing.T, raw string) cashier.PlayerID {
	test.Helper()
	playerID, err := cashier.NewPlayerID(raw)
	if err != nil {
		test.Fatalf("player id: %v", err)
	}
	return playerID
}

func mustBreakdown(test *testing.T, chips500 int64) cashier.ChipBreakdown {
	test.Helper()
	breakdown, err := cashier.NewChipBreakdown(0, chips500, 0, 0)
	if err != nil {
		test.Fatalf("chips: %v", err)
	}
	return breakdown
}

func TestRequestAutoApprovedWithinLimit(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	playerID := mustPlayer(test, "player-1")

	request, err := fix.service.Request(context.Background(), fix.sessionID, playerID, mustBreakdown(test, 4), mustActor(test))
	if err != nil {
		test.Fatalf("request: %v", err)
	}
	if request.Status != string(approval.StatusAutoApproved) {
		test.Fatalf("expected auto approval, got %s", request.Status)
	}

	outstanding, err := fix.ledger.OutstandingCredit(context.Background(), fix.sessionID, playerID)
	if err != nil {
		test.Fatalf("outstanding: %v", err)
	}
	if outstanding != 2000 {
		test.Fatalf("expected credit issued immediately, outstanding %d", outstanding)
	}
	if len(fix.notifier.decided) != 1 || fix.notifier.decided[0].Status != approval.StatusAutoApproved {
		test.Fatalf("unexpected notifications %+v", fix.notifier)
	}
}

func TestRequestBeyondLimitStaysPending(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	playerID := mustPlayer(test, "player-1")

	request, err := fix.service.Request(context.Background(), fix.sessionID, playerID, mustBreakdown(test, 12), mustActor(test))
	if err != nil {
		test.Fatalf("request: %v", err)
	}
	if request.Status != string(approval.StatusPending) {
		test.Fatalf("expected pending, got %s", request.Status)
	}

	outstanding, err := fix.ledger.OutstandingCredit(context.Background(), fix.sessionID, playerID)
	if err != nil {
		test.Fatalf("outstanding: %v", err)
	}
	if outstanding != 0 {
		test.Fatalf("pending request must not issue credit, outstanding %d", outstanding)
	}

	pending, err := fix.service.ListPending(context.Background(), fix.sessionID)
	if err != nil {
		test.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].RequestID != request.RequestID {
		test.Fatalf("unexpected pending list %v", pending)
	}
	if len(fix.notifier.requested) != 1 || fix.notifier.requested[0].Status != approval.StatusPending {
		test.Fatalf("unexpected notifications %+v", fix.notifier)
	}
}

func TestPendingRequestBlocksSessionClose(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	if _, err := fix.service.Request(context.Background(), fix.sessionID, mustPlayer(test, "player-1"), mustBreakdown(test, 12), mustActor(test)); err != nil {
		test.Fatalf("request: %v", err)
	}

	_, err := fix.ledger.CloseSession(context.Background(), fix.sessionID, mustActor(test))
	if !errors.Is(err, cashier.ErrPendingCreditRequests) {
		test.Fatalf("expected ErrPendingCreditRequests, got %v", err)
	}
}

func TestApproveIssuesCreditOnceHeadroomExists(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	playerID := mustPlayer(test, "player-1")
	actor := mustActor(test)

	if _, err := fix.ledger.IssueCredit(context.Background(), fix.sessionID, playerID, mustBreakdown(test, 8), "", actor); err != nil {
		test.Fatalf("seed credit: %v", err)
	}
	request, err := fix.service.Request(context.Background(), fix.sessionID, playerID, mustBreakdown(test, 4), actor)
	if err != nil {
		test.Fatalf("request: %v", err)
	}
	if request.Status != string(approval.StatusPending) {
		test.Fatalf("expected pending with 1000 headroom, got %s", request.Status)
	}

	if _, err := fix.ledger.SettleCredit(context.Background(), fix.sessionID, playerID, 3000, cashier.PaymentCash, actor); err != nil {
		test.Fatalf("settle: %v", err)
	}

	approved, err := fix.service.Approve(context.Background(), request.RequestID, actor)
	if err != nil {
		test.Fatalf("approve: %v", err)
	}
	if approved.Status != string(approval.StatusApproved) {
		test.Fatalf("expected approved, got %s", approved.Status)
	}

	outstanding, err := fix.ledger.OutstandingCredit(context.Background(), fix.sessionID, playerID)
	if err != nil {
		test.Fatalf("outstanding: %v", err)
	}
	if outstanding != 3000 {
		test.Fatalf("expected 1000 remaining plus 2000 approved, got %d", outstanding)
	}
}

func TestApproveRollsBackWhenIssuanceFails(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	playerID := mustPlayer(test, "player-1")
	actor := mustActor(test)

	if _, err := fix.ledger.IssueCredit(context.Background(), fix.sessionID, playerID, mustBreakdown(test, 8), "", actor); err != nil {
		test.Fatalf("seed credit: %v", err)
	}
	request, err := fix.service.Request(context.Background(), fix.sessionID, playerID, mustBreakdown(test, 4), actor)
	if err != nil {
		test.Fatalf("request: %v", err)
	}

	// Only 1000 of headroom remains, so the issuance inside the
	// approval transaction fails and the status flip must roll back
	// with it.
	_, err = fix.service.Approve(context.Background(), request.RequestID, actor)
	if !errors.Is(err, cashier.ErrCreditLimitExceeded) {
		test.Fatalf("expected ErrCreditLimitExceeded, got %v", err)
	}

	pending, err := fix.service.ListPending(context.Background(), fix.sessionID)
	if err != nil {
		test.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].RequestID != request.RequestID {
		test.Fatalf("request should still be pending, got %v", pending)
	}
	outstanding, err := fix.ledger.OutstandingCredit(context.Background(), fix.sessionID, playerID)
	if err != nil {
		test.Fatalf("outstanding: %v", err)
	}
	if outstanding != 4000 {
		test.Fatalf("failed approval must not issue credit, got %d", outstanding)
	}
	if len(fix.notifier.decided) != 0 {
		test.Fatalf("failed approval must not notify, got %+v", fix.notifier.decided)
	}
}

func TestRejectClosesRequestWithoutCredit(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	playerID := mustPlayer(test, "player-1")
	actor := mustActor(test)

	request, err := fix.service.Request(context.Background(), fix.sessionID, playerID, mustBreakdown(test, 12), actor)
	if err != nil {
		test.Fatalf("request: %v", err)
	}
	rejected, err := fix.service.Reject(context.Background(), request.RequestID, "exposure too high", actor)
	if err != nil {
		test.Fatalf("reject: %v", err)
	}
	if rejected.Status != string(approval.StatusRejected) || rejected.Reason != "exposure too high" {
		test.Fatalf("unexpected rejection %+v", rejected)
	}

	if _, err := fix.service.Reject(context.Background(), request.RequestID, "", actor); !errors.Is(err, approval.ErrRequestClosed) {
		test.Fatalf("expected ErrRequestClosed on second decision, got %v", err)
	}
	outstanding, err := fix.ledger.OutstandingCredit(context.Background(), fix.sessionID, playerID)
	if err != nil {
		test.Fatalf("outstanding: %v", err)
	}
	if outstanding != 0 {
		test.Fatalf("rejection must not issue credit, got %d", outstanding)
	}
}

func TestApproveUnknownRequest(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	if _, err := fix.service.Approve(context.Background(), "missing", mustActor(test)); !errors.Is(err, approval.ErrUnknownRequest) {
		test.Fatalf("expected ErrUnknownRequest, got %v", err)
	}
}

func TestRequestRejectsEmptyChips(test *testing.T) {
	test.Parallel()
	fix := newFixture(test, 5000)
	_, err := fix.service.Request(context.Background(), fix.sessionID, mustPlayer(test, "player-1"), cashier.ChipBreakdown{}, mustActor(test))
	if !errors.Is(err, approval.ErrInvalidRequest) {
		test.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
