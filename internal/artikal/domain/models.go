// Package domain contains persistence models for artikli (catalog items).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// JedinicaMere is the fixed unit-of-measure enumeration.
type JedinicaMere string

const (
	JedinicaCas            JedinicaMere = "cas"
	JedinicaDan            JedinicaMere = "dan"
	JedinicaKomad          JedinicaMere = "komad"
	JedinicaKilogram       JedinicaMere = "kilogram"
	JedinicaMetar          JedinicaMere = "metar"
	JedinicaMetarKvadratni JedinicaMere = "metar_kvadratni"
	JedinicaMetarKubni     JedinicaMere = "metar_kubni"
	JedinicaLitar          JedinicaMere = "litar"
	JedinicaUsluga         JedinicaMere = "usluga"
)

// ValidJedinica reports whether the unit is one of the allowed values.
func ValidJedinica(j JedinicaMere) bool {
	switch j {
	case JedinicaCas, JedinicaDan, JedinicaKomad, JedinicaKilogram,
		JedinicaMetar, JedinicaMetarKvadratni, JedinicaMetarKubni,
		JedinicaLitar, JedinicaUsluga:
		return true
	}
	return false
}

// Artikal is a catalog item. Invoice lines copy its data at invoicing time,
// so deleting an artikal never affects issued fakture.
type Artikal struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	FirmaID snowflake.ID `gorm:"not null;index" json:"firma_id"`

	Naziv string `gorm:"type:text;not null" json:"naziv"`
	Opis  string `gorm:"type:text" json:"opis,omitempty"`
	// Optional default price; when present it must be at least 0.01.
	PodrazumevanaCena *decimal.Decimal `gorm:"type:decimal(10,2)" json:"podrazumevana_cena,omitempty"`
	JedinicaMere      JedinicaMere     `gorm:"type:varchar(20);not null" json:"jedinica_mere"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Artikal) TableName() string { return "artikli" }
