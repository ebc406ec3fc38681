// Package domain contains the invoice aggregate and its lifecycle states.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
	"github.com/shopspring/decimal"
)

// FakturaStatus represents invoice lifecycle states.
type FakturaStatus string

const (
	StatusDraft      FakturaStatus = "draft"
	StatusIzdata     FakturaStatus = "izdata"
	StatusStornirana FakturaStatus = "stornirana"
)

// TipFakture distinguishes invoice families. Profakture carry no tax
// obligation and are never recorded in the KPO book.
type TipFakture string

const (
	TipStandardna TipFakture = "standardna"
	TipProfaktura TipFakture = "profaktura"
	TipAvansna    TipFakture = "avansna"
	TipDevizna    TipFakture = "devizna"
)

// Ledgerable reports whether finalizing an invoice of this type creates a
// KPO entry.
func (t TipFakture) Ledgerable() bool {
	return t != TipProfaktura
}

// Valuta is the invoice currency.
type Valuta string

const (
	ValutaRSD Valuta = "RSD"
	ValutaEUR Valuta = "EUR"
	ValutaUSD Valuta = "USD"
	ValutaGBP Valuta = "GBP"
	ValutaCHF Valuta = "CHF"
)

func ValidValuta(v Valuta) bool {
	switch v {
	case ValutaRSD, ValutaEUR, ValutaUSD, ValutaGBP, ValutaCHF:
		return true
	}
	return false
}

func ValidTip(t TipFakture) bool {
	switch t {
	case TipStandardna, TipProfaktura, TipAvansna, TipDevizna:
		return true
	}
	return false
}

// StatusPDF tracks the background rendering pipeline for a finalized
// invoice.
type StatusPDF string

const (
	PDFPending    StatusPDF = "pending"
	PDFGenerating StatusPDF = "generating"
	PDFGenerated  StatusPDF = "generated"
	PDFFailed     StatusPDF = "failed"
)

// Faktura is the invoice aggregate. Draft is the only editable state; the
// number a draft carries is a provisional placeholder until Finalize
// assigns the definitive one.
type Faktura struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	FirmaID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_fakture_firma_broj,priority:1;index:idx_fakture_firma_status,priority:1" json:"firma_id"`
	KomitentID snowflake.ID `gorm:"not null;index" json:"komitent_id"`
	UserID     snowflake.ID `gorm:"not null" json:"user_id"`

	BrojFakture string     `gorm:"type:varchar(50);not null;uniqueIndex:ux_fakture_firma_broj,priority:2" json:"broj_fakture"`
	TipFakture  TipFakture `gorm:"type:varchar(20);not null" json:"tip_fakture"`
	Valuta      Valuta     `gorm:"type:varchar(3);not null" json:"valuta"`
	Jezik       string     `gorm:"type:varchar(2);not null;default:'sr'" json:"jezik"`

	DatumPrometa   time.Time `gorm:"type:date;not null" json:"datum_prometa"`
	ValutaPlacanja int       `gorm:"not null" json:"valuta_placanja"`
	DatumDospeca   time.Time `gorm:"type:date;not null" json:"datum_dospeca"`

	BrojUgovora      string `gorm:"type:varchar(100)" json:"broj_ugovora,omitempty"`
	BrojOdluke       string `gorm:"type:varchar(100)" json:"broj_odluke,omitempty"`
	BrojNarudzbenice string `gorm:"type:varchar(100)" json:"broj_narudzbenice,omitempty"`
	PozivNaBroj      string `gorm:"type:varchar(50)" json:"poziv_na_broj,omitempty"`
	Model            string `gorm:"type:varchar(10)" json:"model,omitempty"`

	UkupanIznosRSD decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"ukupan_iznos_rsd"`
	// Set only on devizne fakture, snapshotted at finalize time.
	UkupanIznosOriginalnaValuta *decimal.Decimal `gorm:"type:decimal(12,2)" json:"ukupan_iznos_originalna_valuta,omitempty"`
	SrednjiKurs                 *decimal.Decimal `gorm:"type:decimal(10,4)" json:"srednji_kurs,omitempty"`

	Status           FakturaStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_fakture_firma_status,priority:2" json:"status"`
	AvansnaFakturaID *snowflake.ID `gorm:"index" json:"avansna_faktura_id,omitempty"`

	PDFUrl    string    `gorm:"type:varchar(500)" json:"pdf_url,omitempty"`
	StatusPDF StatusPDF `gorm:"type:varchar(20);not null;default:'pending'" json:"status_pdf"`
	PDFError  string    `gorm:"type:text" json:"pdf_error,omitempty"`

	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
	StorniranaAt *time.Time `json:"stornirana_at,omitempty"`
	StornoRazlog string     `gorm:"type:text" json:"storno_razlog,omitempty"`
	StornoActor  string     `gorm:"type:text" json:"storno_actor,omitempty"`

	Stavke []FakturaStavka `gorm:"foreignKey:FakturaID" json:"stavke,omitempty"`
}

// TableName sets the database table name.
func (Faktura) TableName() string { return "fakture" }

// FakturaStavka is a single invoice line. It copies artikal data at
// invoicing time; ArtikalID is a weak reference nulled when the catalog
// item is deleted.
type FakturaStavka struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	FakturaID snowflake.ID  `gorm:"not null;index" json:"faktura_id"`
	ArtikalID *snowflake.ID `gorm:"index" json:"artikal_id,omitempty"`

	Naziv        string                     `gorm:"type:text;not null" json:"naziv"`
	Kolicina     decimal.Decimal            `gorm:"type:decimal(10,2);not null" json:"kolicina"`
	JedinicaMere artikaldomain.JedinicaMere `gorm:"type:varchar(20);not null" json:"jedinica_mere"`
	Cena         decimal.Decimal            `gorm:"type:decimal(10,2);not null" json:"cena"`
	Ukupno       decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"ukupno"`

	RedniBroj int `gorm:"not null" json:"redni_broj"`
}

// TableName sets the database table name.
func (FakturaStavka) TableName() string { return "faktura_stavke" }

// CalculateUkupno recomputes the line total from quantity and unit price.
func (s *FakturaStavka) CalculateUkupno() {
	s.Ukupno = s.Kolicina.Mul(s.Cena).Round(2)
}

// CalculateDatumDospeca derives the due date from the transaction date and
// the payment term, rolling weekend due dates forward to Monday.
func CalculateDatumDospeca(datumPrometa time.Time, valutaPlacanja int) time.Time {
	due := datumPrometa.AddDate(0, 0, valutaPlacanja)
	switch due.Weekday() {
	case time.Saturday:
		due = due.AddDate(0, 0, 2)
	case time.Sunday:
		due = due.AddDate(0, 0, 1)
	}
	return due
}
