// Package approval implements the credit-approval workflow: a player's
// credit request is auto-approved when it fits the remaining limit,
// otherwise parked pending until a manager decides. Pending requests
// block session close.
package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/cashier/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/cashier/pkg/cashier"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status enumerates the request lifecycle.
type Status string

const (
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusAutoApproved Status = "auto_approved"
	StatusRejected     Status = "rejected"
)

var (
	ErrUnknownRequest = errors.New("unknown credit request")
	ErrRequestClosed  = errors.New("credit request already decided")
	ErrInvalidRequest = errors.New("invalid credit request")
)

// CreditRequest mirrors the credit_requests table.
type CreditRequest struct {
	RequestID   string         `gorm:"type:uuid;primaryKey"`
	SessionID   string         `gorm:"type:uuid;not null;index:idx_credit_requests_session_status,priority:1"`
	PlayerID    string         `gorm:"not null"`
	Chips       datatypes.JSON `gorm:"not null"`
	Amount      int64          `gorm:"not null"`
	Status      string         `gorm:"not null;index:idx_credit_requests_session_status,priority:2"`
	RequestedBy string         `gorm:"not null"`
	DecidedBy   string
	Reason      string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (CreditRequest) TableName() string { return "credit_requests" }

func (request *CreditRequest) BeforeCreate(tx *gorm.DB) error {
	if request.RequestID == "" {
		request.RequestID = uuid.NewString()
	}
	return nil
}

// Event is the plain-data notification emitted on request and decision.
type Event struct {
	RequestID string
	SessionID string
	PlayerID  string
	Amount    cashier.Amount
	Status    Status
}

// Notifier receives approval events. Delivery is the caller's concern.
type Notifier interface {
	CreditRequested(ctx context.Context, event Event)
	CreditDecided(ctx context.Context, event Event)
}

// Service runs the workflow over a gorm.DB.
type Service struct {
	db       *gorm.DB
	ledger   *cashier.Service
	notifier Notifier
	nowFn    func() int64
}

// New wires the workflow.
func New(db *gorm.DB, ledger *cashier.Service, nowFn func() int64, notifier Notifier) *Service {
	return &Service{db: db, ledger: ledger, notifier: notifier, nowFn: nowFn}
}

// Request files a credit request. When the requested value fits within
// the player's remaining limit the request is auto-approved and the
// credit is issued immediately; otherwise it stays pending. The row
// and the issuance share one database transaction, so a failed
// issuance leaves no decided-but-creditless row behind.
func (service *Service) Request(ctx context.Context, sessionID cashier.SessionID, playerID cashier.PlayerID, chips cashier.ChipBreakdown, actor cashier.Actor) (CreditRequest, error) {
	amount := chips.Value()
	if amount <= 0 {
		return CreditRequest{}, fmt.Errorf("%w: requires chips", ErrInvalidRequest)
	}
	rawChips, err := json.Marshal(chips)
	if err != nil {
		return CreditRequest{}, err
	}
	var request CreditRequest
	err = service.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txLedger := service.ledger.WithStore(gormstore.New(tx))
		session, err := openLedgerSession(ctx, txLedger, sessionID)
		if err != nil {
			return err
		}
		outstanding, err := txLedger.OutstandingCredit(ctx, sessionID, playerID)
		if err != nil {
			return err
		}
		request = CreditRequest{
			SessionID:   sessionID.String(),
			PlayerID:    playerID.String(),
			Chips:       datatypes.JSON(rawChips),
			Amount:      amount.Int64(),
			Status:      string(StatusPending),
			RequestedBy: actor.String(),
			CreatedAt:   time.Unix(service.nowFn(), 0).UTC(),
		}
		autoApprove := amount <= session.CreditLimit-outstanding
		if autoApprove {
			request.Status = string(StatusAutoApproved)
			request.DecidedBy = actor.String()
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		if autoApprove {
			if _, err := txLedger.IssueCredit(ctx, sessionID, playerID, chips, request.RequestID, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CreditRequest{}, err
	}
	service.emit(ctx, request, request.Status == string(StatusAutoApproved))
	return request, nil
}

// Approve issues the credit for a pending request. The status flip
// runs first: its guarded update elects a single decider, and a failed
// issuance rolls the flip back with it.
func (service *Service) Approve(ctx context.Context, requestID string, actor cashier.Actor) (CreditRequest, error) {
	var request CreditRequest
	err := service.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pendingRequest, err := service.pending(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := service.decide(ctx, tx, &pendingRequest, StatusApproved, actor, ""); err != nil {
			return err
		}
		var chips cashier.ChipBreakdown
		if err := json.Unmarshal(pendingRequest.Chips, &chips); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		sessionID, err := cashier.NewSessionID(pendingRequest.SessionID)
		if err != nil {
			return err
		}
		playerID, err := cashier.NewPlayerID(pendingRequest.PlayerID)
		if err != nil {
			return err
		}
		txLedger := service.ledger.WithStore(gormstore.New(tx))
		if _, err := txLedger.IssueCredit(ctx, sessionID, playerID, chips, pendingRequest.RequestID, actor); err != nil {
			return err
		}
		request = pendingRequest
		return nil
	})
	if err != nil {
		return CreditRequest{}, err
	}
	service.emit(ctx, request, true)
	return request, nil
}

// Reject closes a pending request without issuing credit.
func (service *Service) Reject(ctx context.Context, requestID string, reason string, actor cashier.Actor) (CreditRequest, error) {
	request, err := service.pending(ctx, service.db, requestID)
	if err != nil {
		return CreditRequest{}, err
	}
	if err := service.decide(ctx, service.db, &request, StatusRejected, actor, reason); err != nil {
		return CreditRequest{}, err
	}
	service.emit(ctx, request, true)
	return request, nil
}

// ListPending returns undecided requests for a session, oldest first.
func (service *Service) ListPending(ctx context.Context, sessionID cashier.SessionID) ([]CreditRequest, error) {
	var requests []CreditRequest
	err := service.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID.String(), string(StatusPending)).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (service *Service) pending(ctx context.Context, db *gorm.DB, requestID string) (CreditRequest, error) {
	var request CreditRequest
	err := db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Take(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CreditRequest{}, ErrUnknownRequest
		}
		return CreditRequest{}, err
	}
	if request.Status != string(StatusPending) {
		return CreditRequest{}, fmt.Errorf("%w: %s", ErrRequestClosed, request.Status)
	}
	return request, nil
}

func (service *Service) decide(ctx context.Context, db *gorm.DB, request *CreditRequest, status Status, actor cashier.Actor, reason string) error {
	result := db.WithContext(ctx).
		Model(&CreditRequest{}).
		Where("request_id = ? AND status = ?", request.RequestID, string(StatusPending)).
		Updates(map[string]any{
			"status":     string(status),
			"decided_by": actor.String(),
			"reason":     reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestClosed
	}
	request.Status = string(status)
	request.DecidedBy = actor.String()
	request.Reason = reason
	return nil
}

func openLedgerSession(ctx context.Context, ledger *cashier.Service, sessionID cashier.SessionID) (cashier.Session, error) {
	session, err := ledger.GetSession(ctx, sessionID)
	if err != nil {
		return cashier.Session{}, err
	}
	if session.Closed {
		return cashier.Session{}, fmt.Errorf("%w: session %s", cashier.ErrSessionClosed, sessionID)
	}
	return session, nil
}

func (service *Service) emit(ctx context.Context, request CreditRequest, decided bool) {
	if service.notifier == nil {
		return
	}
	event := Event{
		RequestID: request.RequestID,
		SessionID: request.SessionID,
		PlayerID:  request.PlayerID,
		Amount:    cashier.Amount(request.Amount),
		Status:    Status(request.Status),
	}
	if decided && event.Status != StatusPending {
		service.notifier.CreditDecided(ctx, event)
		return
	}
	service.notifier.CreditRequested(ctx, event)
}
