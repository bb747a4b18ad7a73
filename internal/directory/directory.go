// Package directory resolves players by id, member code, or phone,
// creating them on first sight.
package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrInvalidPlayer   = errors.New("invalid player reference")
	ErrDuplicatePlayer = errors.New("player already exists")
)

// Player mirrors the players table.
type Player struct {
	PlayerID  string    `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Phone     string    `gorm:"index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Player) TableName() string { return "players" }

func (player *Player) BeforeCreate(tx *gorm.DB) error {
	if player.PlayerID == "" {
		player.PlayerID = uuid.NewString()
	}
	return nil
}

// Ref carries whatever the caller knows about a player. At least one
// field must be set; Name is used only when a new player is created.
type Ref struct {
	PlayerID string
	Code     string
	Phone    string
	Name     string
}

// Resolved is the directory's answer: a stable id and display name.
type Resolved struct {
	PlayerID string
	Name     string
}

// Service resolves and creates players over a gorm.DB.
type Service struct {
	db *gorm.DB
}

// New returns a directory Service.
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Resolve finds a player by id, code, or phone, in that order. When
// nothing matches and a code is supplied, the player is created.
func (service *Service) Resolve(ctx context.Context, ref Ref) (Resolved, error) {
	ref.PlayerID = strings.TrimSpace(ref.PlayerID)
	ref.Code = strings.TrimSpace(ref.Code)
	ref.Phone = strings.TrimSpace(ref.Phone)
	ref.Name = strings.TrimSpace(ref.Name)
	if ref.PlayerID == "" && ref.Code == "" && ref.Phone == "" {
		return Resolved{}, ErrInvalidPlayer
	}

	var player Player
	query := service.db.WithContext(ctx)
	switch {
	case ref.PlayerID != "":
		query = query.Where("player_id = ?", ref.PlayerID)
	case ref.Code != "":
		query = query.Where("code = ?", ref.Code)
	default:
		query = query.Where("phone = ?", ref.Phone)
	}
	err := query.Take(&player).Error
	if err == nil {
		return Resolved{PlayerID: player.PlayerID, Name: player.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Resolved{}, err
	}
	if ref.Code == "" {
		return Resolved{}, ErrUnknownPlayer
	}
	created := Player{Code: ref.Code, Name: ref.Name, Phone: ref.Phone}
	if created.Name == "" {
		created.Name = ref.Code
	}
	if err := service.db.WithContext(ctx).Create(&created).Error; err != nil {
		return Resolved{}, err
	}
	return Resolved{PlayerID: created.PlayerID, Name: created.Name}, nil
}

// Get returns a player by id.
func (service *Service) Get(ctx context.Context, playerID string) (Player, error) {
	var player Player
	err := service.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Take(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Player{}, ErrUnknownPlayer
		}
		return Player{}, err
	}
	return player, nil
}
