// Package numbering assigns invoice numbers and KPO ordinals. Both
// sequences are per-tenant and must stay gapless for issued documents, so
// every assignment happens inside the caller's transaction under a row
// lock and is only consumed if that transaction commits.
package numbering

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	"github.com/pausalko/pausalko/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrFirmaNotFound = errors.New("numbering_firma_not_found")

type Service interface {
	// NextBrojFakture consumes the firma's counter for the invoice type and
	// returns the formatted number. Counters reset to 1 when the issuing
	// year moves past the year of the last assignment.
	NextBrojFakture(ctx context.Context, tx *gorm.DB, firmaID snowflake.ID, tip fakturadomain.TipFakture, godina int) (string, error)

	// NextRedniBroj returns max(redni_broj)+1 for the firma's KPO book in
	// the given year, holding the sequence row-locked until commit.
	NextRedniBroj(ctx context.Context, tx *gorm.DB, firmaID snowflake.ID, godina int) (int, error)
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

type service struct {
	log *zap.Logger
}

func New(p Params) Service {
	return &service{log: p.Logger.Named("numbering")}
}

func (s *service) NextBrojFakture(ctx context.Context, tx *gorm.DB, firmaID snowflake.ID, tip fakturadomain.TipFakture, godina int) (string, error) {
	var firma firmadomain.Firma
	if err := db.ForUpdate(tx.WithContext(ctx)).
		Where("id = ?", firmaID).
		First(&firma).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrFirmaNotFound
		}
		return "", err
	}

	// A new calendar year restarts both counters.
	if firma.GodinaBrojaca != godina {
		firma.BrojacFakture = 1
		firma.BrojacAvansne = 1
		firma.GodinaBrojaca = godina
	}

	// Avansne fakture carry an A marker so the two counters can never
	// produce the same broj within one firma.
	var broj int
	marker := ""
	updates := map[string]interface{}{"godina_brojaca": firma.GodinaBrojaca}
	if tip == fakturadomain.TipAvansna {
		broj = firma.BrojacAvansne
		marker = "A"
		updates["brojac_avansne"] = broj + 1
		updates["brojac_fakture"] = firma.BrojacFakture
	} else {
		broj = firma.BrojacFakture
		updates["brojac_fakture"] = broj + 1
		updates["brojac_avansne"] = firma.BrojacAvansne
	}

	if err := tx.WithContext(ctx).
		Model(&firmadomain.Firma{}).
		Where("id = ?", firmaID).
		Updates(updates).Error; err != nil {
		return "", err
	}

	formatted := fmt.Sprintf("%s%s%d%s", firma.PrefiksFakture, marker, broj, firma.SufiksFakture)
	s.log.Debug("assigned invoice number",
		zap.Int64("firma_id", firmaID.Int64()),
		zap.String("broj_fakture", formatted),
	)
	return formatted, nil
}

func (s *service) NextRedniBroj(ctx context.Context, tx *gorm.DB, firmaID snowflake.ID, godina int) (int, error) {
	// Lock the firma row first so concurrent finalizes for the same tenant
	// serialize before reading the max. The aggregate alone is not enough
	// under read committed.
	var firma firmadomain.Firma
	if err := db.ForUpdate(tx.WithContext(ctx)).
		Select("id").
		Where("id = ?", firmaID).
		First(&firma).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrFirmaNotFound
		}
		return 0, err
	}

	var max int
	if err := tx.WithContext(ctx).
		Table("kpo_entries").
		Where("firma_id = ? AND godina = ?", firmaID, godina).
		Select("COALESCE(MAX(redni_broj), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
