package auth

import (
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
)

// RegisterInput carries a new member signup.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries a credential check.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the result of a successful login or registration.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
