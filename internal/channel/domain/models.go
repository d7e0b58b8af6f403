package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Channel struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"not null" json:"name"`
	Slug         string            `gorm:"not null;uniqueIndex" json:"slug"`
	CurrencyCode string            `gorm:"type:char(3);not null" json:"currency_code"`
	IsActive     bool              `gorm:"not null;default:true" json:"is_active"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Channel) TableName() string { return "channels" }

var (
	ErrNotFound    = errors.New("channel_not_found")
	ErrInvalidSlug = errors.New("invalid_channel_slug")
)
