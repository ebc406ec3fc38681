// Package domain contains persistence models for paušalne firme (tenants).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DinarskiRacun is a domestic bank account, kept as an ordered JSON list on
// the firma so the invoice template can print them in the configured order.
type DinarskiRacun struct {
	Banka      string `json:"banka"`
	BrojRacuna string `json:"broj_racuna"`
}

// DevizniRacun is a foreign-currency account used on devizne fakture.
type DevizniRacun struct {
	Banka  string `json:"banka"`
	IBAN   string `json:"iban"`
	SWIFT  string `json:"swift"`
	Valuta string `json:"valuta"`
}

// Firma represents a flat-rate-taxed sole proprietor business (tenant).
// It owns all other tenant-scoped entities by foreign key.
type Firma struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	PIB           string       `gorm:"type:varchar(9);not null;uniqueIndex:ux_firme_pib" json:"pib"`
	MaticniBroj   string       `gorm:"type:varchar(8);not null" json:"maticni_broj"`
	Naziv         string       `gorm:"type:text;not null" json:"naziv"`
	Adresa        string       `gorm:"type:text;not null" json:"adresa"`
	Broj          string       `gorm:"type:varchar(20);not null" json:"broj"`
	PostanskiBroj string       `gorm:"type:varchar(10);not null" json:"postanski_broj"`
	Mesto         string       `gorm:"type:varchar(100);not null" json:"mesto"`
	Drzava        string       `gorm:"type:varchar(50);not null;default:'Srbija'" json:"drzava"`
	Telefon       string       `gorm:"type:varchar(20);not null" json:"telefon"`
	Email         string       `gorm:"type:varchar(120);not null" json:"email"`

	DinarskiRacuni datatypes.JSONSlice[DinarskiRacun] `gorm:"not null" json:"dinarski_racuni"`
	DevizniRacuni  datatypes.JSONSlice[DevizniRacun]  `json:"devizni_racuni,omitempty"`

	// Invoice numbering configuration. Advance invoices draw from their own
	// counter; everything else shares BrojacFakture.
	PrefiksFakture string `gorm:"type:varchar(10)" json:"prefiks_fakture"`
	SufiksFakture  string `gorm:"type:varchar(10)" json:"sufiks_fakture"`
	BrojacFakture  int    `gorm:"not null;default:1" json:"brojac_fakture"`
	BrojacAvansne  int    `gorm:"not null;default:1" json:"brojac_avansne"`
	GodinaBrojaca  int    `gorm:"not null;default:0" json:"godina_brojaca"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Firma) TableName() string { return "firme" }
