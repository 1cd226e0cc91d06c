// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. RefreshToken holds the single live refresh token;
// ResetToken and ResetTokenExpires are either both set or both nil.
type User struct {
	ID                string     `json:"id"`
	UserName          string     `json:"username"`
	Email             string     `json:"email"`
	Name              *string    `json:"name,omitempty"`
	Department        *string    `json:"department,omitempty"`
	HashedPassword    string     `json:"-"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	RefreshToken      *string    `json:"-"`
	ResetToken        *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
}
