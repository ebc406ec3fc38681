package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("faktura_not_found")
	ErrInvalidScope      = errors.New("invalid_tenant_scope")
	ErrInvalidTransition = errors.New("invalid_faktura_transition")
	ErrNoStavke          = errors.New("faktura_without_stavke")
	ErrNoKomitent        = errors.New("faktura_without_komitent")
	ErrInvalidStavka     = errors.New("invalid_faktura_stavka")
	ErrInvalidTip        = errors.New("invalid_tip_fakture")
	ErrInvalidValuta     = errors.New("invalid_valuta_fakture")
	ErrMissingRazlog     = errors.New("storno_razlog_required")
	ErrKursUnavailable   = errors.New("srednji_kurs_unavailable")
	ErrNumberingFailure  = errors.New("numbering_failure")
	ErrPDFNotReady       = errors.New("faktura_pdf_not_ready")
	ErrInvalidAvansna    = errors.New("invalid_avansna_reference")
)

// StavkaInput is one requested invoice line; totals are always recomputed
// server-side, never taken from the caller.
type StavkaInput struct {
	ArtikalID    *snowflake.ID             `json:"artikal_id"`
	Naziv        string                    `json:"naziv"`
	Kolicina     decimal.Decimal           `json:"kolicina"`
	JedinicaMere artikaldomain.JedinicaMere `json:"jedinica_mere"`
	Cena         decimal.Decimal           `json:"cena"`
}

type CreateFakturaRequest struct {
	KomitentID       snowflake.ID  `json:"komitent_id"`
	TipFakture       TipFakture    `json:"tip_fakture"`
	Valuta           Valuta        `json:"valuta"`
	Jezik            string        `json:"jezik"`
	DatumPrometa     time.Time     `json:"datum_prometa"`
	ValutaPlacanja   int           `json:"valuta_placanja"`
	BrojUgovora      string        `json:"broj_ugovora"`
	BrojOdluke       string        `json:"broj_odluke"`
	BrojNarudzbenice string        `json:"broj_narudzbenice"`
	PozivNaBroj      string        `json:"poziv_na_broj"`
	Model            string        `json:"model"`
	AvansnaFakturaID *snowflake.ID `json:"avansna_faktura_id"`
	Stavke           []StavkaInput `json:"stavke"`
}

// EditFakturaRequest replaces the draft's content wholesale. Invoice number
// and status are never touched by an edit.
type EditFakturaRequest struct {
	KomitentID     *snowflake.ID `json:"komitent_id"`
	DatumPrometa   *time.Time    `json:"datum_prometa"`
	ValutaPlacanja *int          `json:"valuta_placanja"`
	Jezik          *string       `json:"jezik"`
	Stavke         []StavkaInput `json:"stavke"`
}

type ListFakturaFilter struct {
	Status     *FakturaStatus
	Tip        *TipFakture
	Valuta     *Valuta
	KomitentID *snowflake.ID
	DatumOd    *time.Time
	DatumDo    *time.Time
	SortBy     string
	SortDesc   bool
}

type ListFakturaResponse struct {
	pagination.PageInfo
	Fakture []Faktura `json:"fakture"`
}

type Service interface {
	Create(ctx context.Context, sc scope.Scope, userID snowflake.ID, req CreateFakturaRequest) (Faktura, error)
	Edit(ctx context.Context, sc scope.Scope, id snowflake.ID, req EditFakturaRequest) (Faktura, error)
	Finalize(ctx context.Context, sc scope.Scope, id snowflake.ID) (Faktura, error)
	Storno(ctx context.Context, sc scope.Scope, id snowflake.ID, razlog, actor string) (Faktura, error)
	GetByID(ctx context.Context, sc scope.Scope, id snowflake.ID) (Faktura, error)
	List(ctx context.Context, sc scope.Scope, filter ListFakturaFilter, page pagination.Pagination) (ListFakturaResponse, error)
	Delete(ctx context.Context, sc scope.Scope, id snowflake.ID) error
	SendEmail(ctx context.Context, sc scope.Scope, id snowflake.ID, to []string) error
}
