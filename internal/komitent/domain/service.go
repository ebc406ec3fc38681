package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/pkg/db/pagination"
)

var (
	ErrNotFound     = errors.New("komitent_not_found")
	ErrInvalidPIB   = errors.New("invalid_komitent_pib")
	ErrInvalidData  = errors.New("invalid_komitent_data")
	ErrPIBExists    = errors.New("komitent_pib_exists")
	ErrInUse        = errors.New("komitent_in_use")
	ErrInvalidScope = errors.New("invalid_tenant_scope")
)

type CreateKomitentRequest struct {
	PIB           string `json:"pib"`
	MaticniBroj   string `json:"maticni_broj"`
	Naziv         string `json:"naziv"`
	Adresa        string `json:"adresa"`
	Broj          string `json:"broj"`
	PostanskiBroj string `json:"postanski_broj"`
	Mesto         string `json:"mesto"`
	Drzava        string `json:"drzava"`
	Email         string `json:"email"`
	KontaktOsoba  string `json:"kontakt_osoba"`
	Napomene      string `json:"napomene"`
	IBAN          string `json:"iban"`
	SWIFT         string `json:"swift"`
}

// UpdateKomitentRequest deliberately has no PIB field: the tax id is
// immutable once the komitent exists.
type UpdateKomitentRequest struct {
	Naziv        *string `json:"naziv"`
	Adresa       *string `json:"adresa"`
	Broj         *string `json:"broj"`
	Mesto        *string `json:"mesto"`
	Email        *string `json:"email"`
	KontaktOsoba *string `json:"kontakt_osoba"`
	Napomene     *string `json:"napomene"`
	IBAN         *string `json:"iban"`
	SWIFT        *string `json:"swift"`
}

type ListKomitentFilter struct {
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListKomitentResponse struct {
	pagination.PageInfo
	Komitenti []Komitent `json:"komitenti"`
}

type Service interface {
	Create(ctx context.Context, sc scope.Scope, req CreateKomitentRequest) (Komitent, error)
	Update(ctx context.Context, sc scope.Scope, id snowflake.ID, req UpdateKomitentRequest) (Komitent, error)
	GetByID(ctx context.Context, sc scope.Scope, id snowflake.ID) (Komitent, error)
	List(ctx context.Context, sc scope.Scope, filter ListKomitentFilter, page pagination.Pagination) (ListKomitentResponse, error)
	Delete(ctx context.Context, sc scope.Scope, id snowflake.ID) error
}
