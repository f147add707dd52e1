package model

import (
	"time"

	"github.com/google/uuid"
)

type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"not null"`
	Telefone  *string
	CreatedAt time.Time
}
