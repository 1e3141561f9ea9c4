package auth

import (
	"time"

	"github.com/google/uuid"
)

// Admin represents a dashboard administrator account
type Admin struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	LoginID      string     `db:"login_id" json:"login_id"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}
