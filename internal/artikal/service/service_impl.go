package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/artikal/domain"
	"github.com/pausalko/pausalko/internal/clock"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/pkg/db/option"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var minCena = decimal.NewFromFloat(0.01)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("artikal.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req domain.CreateArtikalRequest) (domain.Artikal, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Artikal{}, domain.ErrInvalidScope
	}

	if strings.TrimSpace(req.Naziv) == "" {
		return domain.Artikal{}, domain.ErrInvalidData
	}
	if !domain.ValidJedinica(req.JedinicaMere) {
		return domain.Artikal{}, domain.ErrInvalidJedinica
	}
	if err := validateCena(req.PodrazumevanaCena); err != nil {
		return domain.Artikal{}, err
	}

	now := s.clock.Now()
	artikal := domain.Artikal{
		ID:                s.genID.Generate(),
		FirmaID:           firmaID,
		Naziv:             strings.TrimSpace(req.Naziv),
		Opis:              strings.TrimSpace(req.Opis),
		PodrazumevanaCena: req.PodrazumevanaCena,
		JedinicaMere:      req.JedinicaMere,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.db.WithContext(ctx).Create(&artikal).Error; err != nil {
		return domain.Artikal{}, err
	}
	return artikal, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id snowflake.ID, req domain.UpdateArtikalRequest) (domain.Artikal, error) {
	artikal, err := s.GetByID(ctx, sc, id)
	if err != nil {
		return domain.Artikal{}, err
	}

	if req.Naziv != nil {
		if strings.TrimSpace(*req.Naziv) == "" {
			return domain.Artikal{}, domain.ErrInvalidData
		}
		artikal.Naziv = strings.TrimSpace(*req.Naziv)
	}
	if req.Opis != nil {
		artikal.Opis = strings.TrimSpace(*req.Opis)
	}
	if req.PodrazumevanaCena != nil {
		if err := validateCena(req.PodrazumevanaCena); err != nil {
			return domain.Artikal{}, err
		}
		artikal.PodrazumevanaCena = req.PodrazumevanaCena
	}
	if req.JedinicaMere != nil {
		if !domain.ValidJedinica(*req.JedinicaMere) {
			return domain.Artikal{}, domain.ErrInvalidJedinica
		}
		artikal.JedinicaMere = *req.JedinicaMere
	}
	artikal.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&artikal).Error; err != nil {
		return domain.Artikal{}, err
	}
	return artikal, nil
}

func (s *Service) GetByID(ctx context.Context, sc scope.Scope, id snowflake.ID) (domain.Artikal, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Artikal{}, domain.ErrInvalidScope
	}

	var artikal domain.Artikal
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM artikli WHERE firma_id = ? AND id = ?`,
		firmaID,
		id,
	).Scan(&artikal).Error
	if err != nil {
		return domain.Artikal{}, err
	}
	if artikal.ID == 0 {
		return domain.Artikal{}, domain.ErrNotFound
	}
	return artikal, nil
}

func (s *Service) List(ctx context.Context, sc scope.Scope, search string, page pagination.Pagination) (domain.ListArtikalResponse, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.ListArtikalResponse{}, domain.ErrInvalidScope
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.Artikal{}).
		Where("firma_id = ?", firmaID)
	if search = strings.TrimSpace(search); search != "" {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "naziv",
			Operator: option.ILIKE,
			Value:    "%" + search + "%",
		}).Apply(stmt)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return domain.ListArtikalResponse{}, err
	}

	var items []domain.Artikal
	err := option.ApplyPagination(page).Apply(stmt).
		Order("naziv asc, id asc").
		Find(&items).Error
	if err != nil {
		return domain.ListArtikalResponse{}, err
	}

	return domain.ListArtikalResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Artikli:  items,
	}, nil
}

// Delete removes the artikal unconditionally. Invoice lines hold a weak
// reference that the schema nulls, so issued fakture are unaffected.
func (s *Service) Delete(ctx context.Context, sc scope.Scope, id snowflake.ID) error {
	artikal, err := s.GetByID(ctx, sc, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE faktura_stavke SET artikal_id = NULL WHERE artikal_id = ?`, artikal.ID).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM artikli WHERE id = ?`, artikal.ID).Error
	})
}

func validateCena(cena *decimal.Decimal) error {
	if cena == nil {
		return nil
	}
	if cena.LessThan(minCena) {
		return domain.ErrInvalidCena
	}
	return nil
}
