// Package domain contains persistence models for komitenti (counterparties).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Komitent is a client that receives invoices. PIB is unique per firma and
// immutable after creation; deletion is rejected while any faktura still
// references the komitent.
type Komitent struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	FirmaID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_komitenti_firma_pib,priority:1" json:"firma_id"`

	PIB         string `gorm:"type:varchar(9);not null;uniqueIndex:ux_komitenti_firma_pib,priority:2" json:"pib"`
	MaticniBroj string `gorm:"type:varchar(8);not null" json:"maticni_broj"`
	Naziv       string `gorm:"type:text;not null" json:"naziv"`

	Adresa        string `gorm:"type:text;not null" json:"adresa"`
	Broj          string `gorm:"type:varchar(20);not null" json:"broj"`
	PostanskiBroj string `gorm:"type:varchar(10);not null" json:"postanski_broj"`
	Mesto         string `gorm:"type:varchar(100);not null" json:"mesto"`
	Drzava        string `gorm:"type:varchar(50);not null" json:"drzava"`

	Email        string `gorm:"type:varchar(120);not null" json:"email"`
	KontaktOsoba string `gorm:"type:text" json:"kontakt_osoba,omitempty"`
	Napomene     string `gorm:"type:text" json:"napomene,omitempty"`

	// Required only for devizne fakture.
	IBAN  string `gorm:"type:varchar(34)" json:"iban,omitempty"`
	SWIFT string `gorm:"type:varchar(11)" json:"swift,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Komitent) TableName() string { return "komitenti" }
