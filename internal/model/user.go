package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account represents a user who can sign in to the ledger.
// PasswordHash is persisted but never rendered in responses.
type Account struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	Role         Role       `json:"role"`
	Approved     bool       `json:"approved"`
	ApprovedBy   string     `json:"approved_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	TokenVersion string     `json:"token_version,omitempty"` // For single session enforcement
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the account's password
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

func (a *Account) Actor() Actor {
	return Actor{Username: a.Username, Role: a.Role}
}

// AccountResponse is used for API responses (without sensitive data)
type AccountResponse struct {
	Username    string     `json:"username"`
	Role        Role       `json:"role"`
	Approved    bool       `json:"approved"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToResponse converts Account to AccountResponse
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		Username:    a.Username,
		Role:        a.Role,
		Approved:    a.Approved,
		ApprovedBy:  a.ApprovedBy,
		CreatedAt:   a.CreatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}
