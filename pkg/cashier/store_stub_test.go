package cashier

import (
	"context"
	"fmt"
	"testing"
)

type stubStore struct {
	sessions        map[string]Session
	transactions    []Transaction
	credits         []CreditRecord
	floatAdditions  []FloatAddition
	summaries       map[string]SessionSummary
	pendingRequests map[string]int64
	nextID          int
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{
		sessions:        make(map[string]Session),
		summaries:       make(map[string]SessionSummary),
		pendingRequests: make(map[string]int64),
	}
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) CreateSession(ctx context.Context, session Session) (Session, error) {
	for _, existing := range store.sessions {
		if existing.SessionDate == session.SessionDate && !existing.Closed {
			return Session{}, ErrSessionAlreadyOpen
		}
	}
	store.nextID++
	session.SessionID = fmt.Sprintf("session-%d", store.nextID)
	store.sessions[session.SessionID] = session
	return session, nil
}

func (store *stubStore) GetSession(ctx context.Context, sessionID string) (Session, error) {
	session, ok := store.sessions[sessionID]
	if !ok {
		return Session{}, ErrUnknownSession
	}
	return session, nil
}

func (store *stubStore) GetSessionForUpdate(ctx context.Context, sessionID string) (Session, error) {
	return store.GetSession(ctx, sessionID)
}

func (store *stubStore) GetOpenSessionByDate(ctx context.Context, date string) (Session, error) {
	for _, session := range store.sessions {
		if session.SessionDate == date && !session.Closed {
			return session, nil
		}
	}
	return Session{}, ErrNoActiveSession
}

func (store *stubStore) GetLatestSessionByDate(ctx context.Context, date string) (Session, error) {
	var latest Session
	found := false
	for _, session := range store.sessions {
		if session.SessionDate != date {
			continue
		}
		if !found || session.OpenedUnixUTC >= latest.OpenedUnixUTC {
			latest = session
			found = true
		}
	}
	if !found {
		return Session{}, ErrUnknownSession
	}
	return latest, nil
}

func (store *stubStore) SaveSession(ctx context.Context, session Session) error {
	if _, ok := store.sessions[session.SessionID]; !ok {
		return ErrUnknownSession
	}
	store.sessions[session.SessionID] = session
	return nil
}

func (store *stubStore) InsertTransaction(ctx context.Context, transaction Transaction) error {
	store.nextID++
	transaction.TransactionID = fmt.Sprintf("transaction-%d", store.nextID)
	store.transactions = append(store.transactions, transaction)
	return nil
}

func (store *stubStore) ListTransactions(ctx context.Context, sessionID string) ([]Transaction, error) {
	var matched []Transaction
	for _, transaction := range store.transactions {
		if transaction.SessionID == sessionID {
			matched = append(matched, transaction)
		}
	}
	return matched, nil
}

func (store *stubStore) CreateCreditRecord(ctx context.Context, record CreditRecord) error {
	store.nextID++
	record.CreditID = fmt.Sprintf("credit-%d", store.nextID)
	store.credits = append(store.credits, record)
	return nil
}

func (store *stubStore) SaveCreditRecord(ctx context.Context, record CreditRecord) error {
	for index := range store.credits {
		if store.credits[index].CreditID == record.CreditID {
			store.credits[index] = record
			return nil
		}
	}
	return fmt.Errorf("credit record %s not found", record.CreditID)
}

func (store *stubStore) ListUnsettledCredit(ctx context.Context, sessionID string, playerID string) ([]CreditRecord, error) {
	var matched []CreditRecord
	for _, record := range store.credits {
		if record.SessionID == sessionID && record.PlayerID == playerID && !record.FullySettled {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (store *stubStore) SumOutstandingCredit(ctx context.Context, sessionID string) (Amount, error) {
	var total Amount
	for _, record := range store.credits {
		if record.SessionID == sessionID {
			total += record.Outstanding()
		}
	}
	return total, nil
}

func (store *stubStore) SumOutstandingCreditForPlayer(ctx context.Context, sessionID string, playerID string) (Amount, error) {
	var total Amount
	for _, record := range store.credits {
		if record.SessionID == sessionID && record.PlayerID == playerID {
			total += record.Outstanding()
		}
	}
	return total, nil
}

func (store *stubStore) CreateFloatAddition(ctx context.Context, addition FloatAddition) error {
	store.nextID++
	addition.AdditionID = fmt.Sprintf("float-%d", store.nextID)
	store.floatAdditions = append(store.floatAdditions, addition)
	return nil
}

func (store *stubStore) ListFloatAdditions(ctx context.Context, sessionID string) ([]FloatAddition, error) {
	var matched []FloatAddition
	for _, addition := range store.floatAdditions {
		if addition.SessionID == sessionID {
			matched = append(matched, addition)
		}
	}
	return matched, nil
}

func (store *stubStore) CreateSessionSummary(ctx context.Context, summary SessionSummary) error {
	if _, exists := store.summaries[summary.SessionID]; exists {
		return ErrSummaryExists
	}
	store.nextID++
	summary.SummaryID = fmt.Sprintf("summary-%d", store.nextID)
	store.summaries[summary.SessionID] = summary
	return nil
}

func (store *stubStore) GetSessionSummary(ctx context.Context, sessionID string) (SessionSummary, error) {
	summary, ok := store.summaries[sessionID]
	if !ok {
		return SessionSummary{}, ErrUnknownSummary
	}
	return summary, nil
}

func (store *stubStore) CountPendingCreditRequests(ctx context.Context, sessionID string) (int64, error) {
	return store.pendingRequests[sessionID], nil
}

func (store *stubStore) mustSession(test *testing.T, sessionID string) Session {
	test.Helper()
	session, ok := store.sessions[sessionID]
	if !ok {
		test.Fatalf("session %s not found", sessionID)
	}
	return session
}

func mustNewService(test *testing.T, store Store, options ...ServiceOption) *Service {
	test.Helper()
	clock := func() int64 { return 1700000000 }
	service, err := NewService(store, clock, options...)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustSessionDate(test *testing.T, raw string) SessionDate {
	test.Helper()
	date, err := NewSessionDate(raw)
	if err != nil {
		test.Fatalf("session date %q: %v", raw, err)
	}
	return date
}

func mustPlayerID(test *testing.T, raw string) PlayerID {
	test.Helper()
	playerID, err := NewPlayerID(raw)
	if err != nil {
		test.Fatalf("player id %q: %v", raw, err)
	}
	return playerID
}

func mustSessionID(test *testing.T, raw string) SessionID {
	test.Helper()
	sessionID, err := NewSessionID(raw)
	if err != nil {
		test.Fatalf("session id %q: %v", raw, err)
	}
	return sessionID
}

func mustActor(test *testing.T, raw string) Actor {
	test.Helper()
	actor, err := NewActor(raw)
	if err != nil {
		test.Fatalf("actor %q: %v", raw, err)
	}
	return actor
}

func mustChips(test *testing.T, chips100, chips500, chips5000, chips10000 int64) ChipBreakdown {
	test.Helper()
	breakdown, err := NewChipBreakdown(chips100, chips500, chips5000, chips10000)
	if err != nil {
		test.Fatalf("chip breakdown: %v", err)
	}
	return breakdown
}

func mustOpenSession(test *testing.T, service *Service, store *stubStore, date string, ownerFloat Amount, chips *ChipBreakdown) (SessionID, Session) {
	test.Helper()
	result, err := service.OpenSession(context.Background(), mustSessionDate(test, date), ownerFloat, chips, mustActor(test, "cashier-1"))
	if err != nil {
		test.Fatalf("open session: %v", err)
	}
	return mustSessionID(test, result.Session.SessionID), store.mustSession(test, result.Session.SessionID)
}
