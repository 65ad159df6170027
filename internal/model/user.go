package model

import (
	"time"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusPending UserStatus = "pending"
	UserStatusLocked  UserStatus = "locked"
)

// User is a midwife's login account.
type User struct {
	Base
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Name             string     `db:"name" json:"name"`
	Status           UserStatus `db:"status" json:"status"`
	LoginAttempts    int        `db:"login_attempts" json:"-"`
	LastLoginAttempt time.Time  `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}
