package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound           = errors.New("user_not_found")
	ErrEmailTaken         = errors.New("user_email_taken")
	ErrInvalidData        = errors.New("invalid_user_data")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactive           = errors.New("user_inactive")
)

type RegisterRequest struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	ImePrezime string       `json:"ime_prezime"`
	Role      Role          `json:"role"`
	FirmaID   *snowflake.ID `json:"firma_id"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (User, error)
	// Authenticate verifies credentials and returns the active user.
	Authenticate(ctx context.Context, email, password string) (User, error)
	GetByID(ctx context.Context, id snowflake.ID) (User, error)
	// AssignFirma binds a paušalac account to its firma.
	AssignFirma(ctx context.Context, userID, firmaID snowflake.ID) error
}
