package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/clock"
	"github.com/pausalko/pausalko/internal/komitent/domain"
	"github.com/pausalko/pausalko/internal/komitent/repository"
	"github.com/pausalko/pausalko/internal/scope"
	pkgdb "github.com/pausalko/pausalko/pkg/db"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var pibPattern = regexp.MustCompile(`^\d{9}$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  repository.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("komitent.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req domain.CreateKomitentRequest) (domain.Komitent, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Komitent{}, domain.ErrInvalidScope
	}

	pib := strings.TrimSpace(req.PIB)
	if !pibPattern.MatchString(pib) {
		return domain.Komitent{}, domain.ErrInvalidPIB
	}
	if strings.TrimSpace(req.Naziv) == "" || strings.TrimSpace(req.Adresa) == "" {
		return domain.Komitent{}, domain.ErrInvalidData
	}

	now := s.clock.Now()
	komitent := domain.Komitent{
		ID:            s.genID.Generate(),
		FirmaID:       firmaID,
		PIB:           pib,
		MaticniBroj:   strings.TrimSpace(req.MaticniBroj),
		Naziv:         strings.TrimSpace(req.Naziv),
		Adresa:        strings.TrimSpace(req.Adresa),
		Broj:          strings.TrimSpace(req.Broj),
		PostanskiBroj: strings.TrimSpace(req.PostanskiBroj),
		Mesto:         strings.TrimSpace(req.Mesto),
		Drzava:        strings.TrimSpace(req.Drzava),
		Email:         strings.TrimSpace(req.Email),
		KontaktOsoba:  strings.TrimSpace(req.KontaktOsoba),
		Napomene:      strings.TrimSpace(req.Napomene),
		IBAN:          strings.TrimSpace(req.IBAN),
		SWIFT:         strings.TrimSpace(req.SWIFT),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &komitent); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Komitent{}, domain.ErrPIBExists
		}
		return domain.Komitent{}, err
	}
	return komitent, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id snowflake.ID, req domain.UpdateKomitentRequest) (domain.Komitent, error) {
	komitent, err := s.GetByID(ctx, sc, id)
	if err != nil {
		return domain.Komitent{}, err
	}

	if req.Naziv != nil {
		if strings.TrimSpace(*req.Naziv) == "" {
			return domain.Komitent{}, domain.ErrInvalidData
		}
		komitent.Naziv = strings.TrimSpace(*req.Naziv)
	}
	if req.Adresa != nil {
		komitent.Adresa = strings.TrimSpace(*req.Adresa)
	}
	if req.Broj != nil {
		komitent.Broj = strings.TrimSpace(*req.Broj)
	}
	if req.Mesto != nil {
		komitent.Mesto = strings.TrimSpace(*req.Mesto)
	}
	if req.Email != nil {
		komitent.Email = strings.TrimSpace(*req.Email)
	}
	if req.KontaktOsoba != nil {
		komitent.KontaktOsoba = strings.TrimSpace(*req.KontaktOsoba)
	}
	if req.Napomene != nil {
		komitent.Napomene = strings.TrimSpace(*req.Napomene)
	}
	if req.IBAN != nil {
		komitent.IBAN = strings.TrimSpace(*req.IBAN)
	}
	if req.SWIFT != nil {
		komitent.SWIFT = strings.TrimSpace(*req.SWIFT)
	}
	komitent.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, s.db, &komitent); err != nil {
		return domain.Komitent{}, err
	}
	return komitent, nil
}

func (s *Service) GetByID(ctx context.Context, sc scope.Scope, id snowflake.ID) (domain.Komitent, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Komitent{}, domain.ErrInvalidScope
	}

	item, err := s.repo.FindByID(ctx, s.db, firmaID, id)
	if err != nil {
		return domain.Komitent{}, err
	}
	if item == nil {
		return domain.Komitent{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, sc scope.Scope, filter domain.ListKomitentFilter, page pagination.Pagination) (domain.ListKomitentResponse, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.ListKomitentResponse{}, domain.ErrInvalidScope
	}

	items, total, err := s.repo.List(ctx, s.db, firmaID, filter, page)
	if err != nil {
		return domain.ListKomitentResponse{}, err
	}

	komitenti := make([]domain.Komitent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		komitenti = append(komitenti, *item)
	}

	return domain.ListKomitentResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		Komitenti: komitenti,
	}, nil
}

// Delete refuses to remove a komitent that is still referenced by any
// faktura. This is the referential-integrity rule behind the statutory
// ledger snapshots, not an advisory check.
func (s *Service) Delete(ctx context.Context, sc scope.Scope, id snowflake.ID) error {
	komitent, err := s.GetByID(ctx, sc, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.CountFakture(ctx, tx, komitent.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrInUse
		}
		return s.repo.Delete(ctx, tx, komitent.ID)
	})
}
