package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The create preconditions fail with distinct errors so the orchestrator
// can tell "nothing to do" apart from "something is wrong".
var (
	ErrInvalidInvoiceState = errors.New("kpo_invalid_invoice_state")
	ErrNonLedgerableType   = errors.New("kpo_non_ledgerable_type")
	ErrDuplicateEntry      = errors.New("kpo_duplicate_entry")
	ErrEntryNotFound       = errors.New("kpo_entry_not_found")
	ErrInvalidScope        = errors.New("invalid_tenant_scope")
	ErrSequenceConflict    = errors.New("kpo_sequence_conflict")
)

type ListFilter struct {
	Godina         *int
	DatumOd        *time.Time
	DatumDo        *time.Time
	KomitentSearch string
	Status         StatusFilter
	Valuta         *fakturadomain.Valuta
	SortBy         string
	SortDesc       bool
}

type ListResponse struct {
	pagination.PageInfo
	Entries []KPOEntry `json:"entries"`
}

type PrometFilter struct {
	Godina  *int
	DatumOd *time.Time
	DatumDo *time.Time
	Status  StatusFilter
	Valuta  *fakturadomain.Valuta
}

type Service interface {
	// CreateEntry records an issued non-profaktura invoice in the ledger.
	// It must run inside the finalize transaction so the entry and the
	// invoice-status write commit together or not at all.
	CreateEntry(ctx context.Context, tx *gorm.DB, faktura *fakturadomain.Faktura, komitent *komitentdomain.Komitent) (*KPOEntry, error)

	// MarkStatus flips only the status mirror of the entry for a faktura.
	MarkStatus(ctx context.Context, tx *gorm.DB, fakturaID snowflake.ID, status EntryStatus) error

	// FindByFaktura returns the single entry for an invoice, or nil.
	FindByFaktura(ctx context.Context, tx *gorm.DB, fakturaID snowflake.ID) (*KPOEntry, error)

	List(ctx context.Context, sc scope.Scope, filter ListFilter, page pagination.Pagination) (ListResponse, error)
	TotalPromet(ctx context.Context, sc scope.Scope, filter PrometFilter) (decimal.Decimal, error)
}
