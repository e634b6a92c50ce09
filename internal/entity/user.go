package entity

import "time"

// User is the part of an account exposed outside the identity provider.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

// Account is a stored identity record.
type Account struct {
	UID           string    `json:"uid" db:"uid"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (a *Account) User() *User {
	return &User{UID: a.UID, Email: a.Email, EmailVerified: a.EmailVerified}
}
