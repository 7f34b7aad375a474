package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	MobileNumber *string    `json:"mobile_number,omitempty"`
	Email        *string    `json:"email,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type Admin struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Identifier is the mobile number or email a one-time code is sent to. Exactly one
// of the two is used for lookups; mobile wins when both are given.
type Identifier struct {
	MobileNumber string
	Email        string
}

func (i Identifier) IsZero() bool {
	return i.MobileNumber == "" && i.Email == ""
}

func (i Identifier) IsMobile() bool {
	return i.MobileNumber != ""
}

func (i Identifier) String() string {
	if i.IsMobile() {
		return i.MobileNumber
	}
	return i.Email
}

type OneTimeCode struct {
	ID           uuid.UUID
	MobileNumber *string
	Email        *string
	Code         string
	ExpiresAt    time.Time
	IsUsed       bool
	CreatedAt    time.Time
}

type TokenType string

const (
	TokenTypeAdmin TokenType = "admin"
	TokenTypeUser  TokenType = "user"
)

type TokenClaims struct {
	Subject string
	Type    TokenType
}
