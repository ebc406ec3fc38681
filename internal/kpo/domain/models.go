// Package domain contains the statutory KPO ledger record.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/shopspring/decimal"
)

// KPOEntry is one row of the Knjiga Prometa Obveznika. Entries are
// append-mostly: after creation only StatusFakture may ever change, every
// other field is frozen for the life of the system. The komitent and broj
// fakture columns are copies taken at finalize time, immune to later edits
// of the komitent.
type KPOEntry struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	FirmaID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_kpo_firma_redni_godina,priority:1;index:idx_kpo_firma_godina,priority:1" json:"firma_id"`
	FakturaID snowflake.ID `gorm:"not null;uniqueIndex:ux_kpo_faktura" json:"faktura_id"`

	RedniBroj    int       `gorm:"not null;uniqueIndex:ux_kpo_firma_redni_godina,priority:2" json:"redni_broj"`
	BrojFakture  string    `gorm:"type:varchar(50);not null" json:"broj_fakture"`
	DatumPrometa time.Time `gorm:"type:date;not null" json:"datum_prometa"`
	DatumDospeca time.Time `gorm:"type:date;not null" json:"datum_dospeca"`

	KomitentNaziv string `gorm:"type:text;not null" json:"komitent_naziv"`
	KomitentPIB   string `gorm:"type:varchar(9);not null" json:"komitent_pib"`

	Opis     string               `gorm:"type:text" json:"opis,omitempty"`
	IznosRSD decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"iznos_rsd"`
	Valuta   fakturadomain.Valuta `gorm:"type:varchar(3);not null" json:"valuta"`

	StatusFakture EntryStatus `gorm:"type:varchar(20);not null" json:"status_fakture"`

	Godina    int       `gorm:"not null;uniqueIndex:ux_kpo_firma_redni_godina,priority:3;index:idx_kpo_firma_godina,priority:2" json:"godina"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (KPOEntry) TableName() string { return "kpo_entries" }

// EntryStatus mirrors the invoice status in the ledger.
type EntryStatus string

const (
	EntryIzdata     EntryStatus = "izdata"
	EntryStornirana EntryStatus = "stornirana"
)

// StatusFilter selects which entries a read operation sees.
type StatusFilter string

const (
	FilterIzdata     StatusFilter = "izdata"
	FilterStornirana StatusFilter = "stornirana"
	FilterAll        StatusFilter = "all"
)
