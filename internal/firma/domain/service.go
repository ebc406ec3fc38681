package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound    = errors.New("firma_not_found")
	ErrInvalidPIB  = errors.New("invalid_pib")
	ErrInvalidData = errors.New("invalid_firma_data")
	ErrPIBTaken    = errors.New("pib_already_registered")
)

// CreateFirmaRequest carries the registration data for a new tenant.
type CreateFirmaRequest struct {
	PIB            string          `json:"pib"`
	MaticniBroj    string          `json:"maticni_broj"`
	Naziv          string          `json:"naziv"`
	Adresa         string          `json:"adresa"`
	Broj           string          `json:"broj"`
	PostanskiBroj  string          `json:"postanski_broj"`
	Mesto          string          `json:"mesto"`
	Drzava         string          `json:"drzava"`
	Telefon        string          `json:"telefon"`
	Email          string          `json:"email"`
	DinarskiRacuni []DinarskiRacun `json:"dinarski_racuni"`
	DevizniRacuni  []DevizniRacun  `json:"devizni_racuni"`
	PrefiksFakture string          `json:"prefiks_fakture"`
	SufiksFakture  string          `json:"sufiks_fakture"`
}

// UpdateProfileRequest covers the fields a paušalac may edit themselves.
type UpdateProfileRequest struct {
	Telefon        *string          `json:"telefon"`
	Email          *string          `json:"email"`
	DinarskiRacuni *[]DinarskiRacun `json:"dinarski_racuni"`
	DevizniRacuni  *[]DevizniRacun  `json:"devizni_racuni"`
	PrefiksFakture *string          `json:"prefiks_fakture"`
	SufiksFakture  *string          `json:"sufiks_fakture"`
}

// UpdateRegistrationRequest covers the admin-only identity fields.
type UpdateRegistrationRequest struct {
	PIB         *string `json:"pib"`
	MaticniBroj *string `json:"maticni_broj"`
	Naziv       *string `json:"naziv"`
	Adresa      *string `json:"adresa"`
	Broj        *string `json:"broj"`
	Mesto       *string `json:"mesto"`
	IsActive    *bool   `json:"is_active"`
}

type Service interface {
	Create(ctx context.Context, req CreateFirmaRequest) (Firma, error)
	GetByID(ctx context.Context, id snowflake.ID) (Firma, error)
	UpdateProfile(ctx context.Context, id snowflake.ID, req UpdateProfileRequest) (Firma, error)
	UpdateRegistration(ctx context.Context, id snowflake.ID, req UpdateRegistrationRequest) (Firma, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
