package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles, from most to least privileged. The permission matrix over these
// lives in the auth package.
const (
	RoleAdmin    = "admin"
	RoleSubAdmin = "sub_admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// User is the model for the 'users' table.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Role         string `json:"role" db:"role"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"fullName" db:"full_name"`
	Phone        string `json:"phone" db:"phone"`
	IsActive     bool   `json:"isActive" db:"is_active"`

	Address *string `json:"address,omitempty" db:"address"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
