package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/shopspring/decimal"
	"github.com/pausalko/pausalko/pkg/db/pagination"
)

var (
	ErrNotFound        = errors.New("artikal_not_found")
	ErrInvalidData     = errors.New("invalid_artikal_data")
	ErrInvalidCena     = errors.New("invalid_artikal_cena")
	ErrInvalidJedinica = errors.New("invalid_jedinica_mere")
	ErrInvalidScope    = errors.New("invalid_tenant_scope")
)

type CreateArtikalRequest struct {
	Naziv             string           `json:"naziv"`
	Opis              string           `json:"opis"`
	PodrazumevanaCena *decimal.Decimal `json:"podrazumevana_cena"`
	JedinicaMere      JedinicaMere     `json:"jedinica_mere"`
}

type UpdateArtikalRequest struct {
	Naziv             *string          `json:"naziv"`
	Opis              *string          `json:"opis"`
	PodrazumevanaCena *decimal.Decimal `json:"podrazumevana_cena"`
	JedinicaMere      *JedinicaMere    `json:"jedinica_mere"`
}

type ListArtikalResponse struct {
	pagination.PageInfo
	Artikli []Artikal `json:"artikli"`
}

type Service interface {
	Create(ctx context.Context, sc scope.Scope, req CreateArtikalRequest) (Artikal, error)
	Update(ctx context.Context, sc scope.Scope, id snowflake.ID, req UpdateArtikalRequest) (Artikal, error)
	GetByID(ctx context.Context, sc scope.Scope, id snowflake.ID) (Artikal, error)
	List(ctx context.Context, sc scope.Scope, search string, page pagination.Pagination) (ListArtikalResponse, error)
	Delete(ctx context.Context, sc scope.Scope, id snowflake.ID) error
}
