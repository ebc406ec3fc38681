package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/clock"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
	"github.com/pausalko/pausalko/internal/kpo/domain"
	"github.com/pausalko/pausalko/internal/kpo/repository"
	"github.com/pausalko/pausalko/internal/numbering"
	"github.com/pausalko/pausalko/internal/scope"
	pkgdb "github.com/pausalko/pausalko/pkg/db"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      repository.Repository
	Numbering numbering.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      repository.Repository
	numbering numbering.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("kpo.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		numbering: p.Numbering,
	}
}

// CreateEntry runs inside the caller's finalize transaction. The faktura
// passed in must already carry its definitive number and the izdata status;
// the entry snapshots komitent identification so later komitent edits never
// rewrite the statutory book.
func (s *Service) CreateEntry(ctx context.Context, tx *gorm.DB, faktura *fakturadomain.Faktura, komitent *komitentdomain.Komitent) (*domain.KPOEntry, error) {
	if faktura.Status != fakturadomain.StatusIzdata {
		return nil, domain.ErrInvalidInvoiceState
	}
	if !faktura.TipFakture.Ledgerable() {
		return nil, domain.ErrNonLedgerableType
	}

	if existing, err := s.repo.FindByFaktura(ctx, tx, faktura.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrDuplicateEntry
	}

	godina := faktura.DatumPrometa.Year()
	redniBroj, err := s.numbering.NextRedniBroj(ctx, tx, faktura.FirmaID, godina)
	if err != nil {
		return nil, err
	}

	entry := domain.KPOEntry{
		ID:            s.genID.Generate(),
		FirmaID:       faktura.FirmaID,
		FakturaID:     faktura.ID,
		RedniBroj:     redniBroj,
		BrojFakture:   faktura.BrojFakture,
		DatumPrometa:  faktura.DatumPrometa,
		DatumDospeca:  faktura.DatumDospeca,
		KomitentNaziv: komitent.Naziv,
		KomitentPIB:   komitent.PIB,
		Opis:          opisFromStavke(faktura.Stavke),
		IznosRSD:      faktura.UkupanIznosRSD,
		Valuta:        faktura.Valuta,
		StatusFakture: domain.EntryIzdata,
		Godina:        godina,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSequenceConflict
		}
		return nil, err
	}

	s.log.Info("kpo entry recorded",
		zap.Int64("firma_id", faktura.FirmaID.Int64()),
		zap.Int64("faktura_id", faktura.ID.Int64()),
		zap.Int("redni_broj", redniBroj),
		zap.Int("godina", godina),
	)
	return &entry, nil
}

func (s *Service) MarkStatus(ctx context.Context, tx *gorm.DB, fakturaID snowflake.ID, status domain.EntryStatus) error {
	affected, err := s.repo.UpdateStatus(ctx, tx, fakturaID, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func (s *Service) FindByFaktura(ctx context.Context, tx *gorm.DB, fakturaID snowflake.ID) (*domain.KPOEntry, error) {
	return s.repo.FindByFaktura(ctx, tx, fakturaID)
}

func (s *Service) List(ctx context.Context, sc scope.Scope, filter domain.ListFilter, page pagination.Pagination) (domain.ListResponse, error) {
	if !sc.Valid() {
		return domain.ListResponse{}, domain.ErrInvalidScope
	}

	items, total, err := s.repo.List(ctx, s.db, sc, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	entries := make([]domain.KPOEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	return domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Entries:  entries,
	}, nil
}

func (s *Service) TotalPromet(ctx context.Context, sc scope.Scope, filter domain.PrometFilter) (decimal.Decimal, error) {
	if !sc.Valid() {
		return decimal.Zero, domain.ErrInvalidScope
	}
	return s.repo.SumIznos(ctx, s.db, sc, filter)
}

// opisFromStavke collapses line names into the single free-text ledger
// description, first line first.
func opisFromStavke(stavke []fakturadomain.FakturaStavka) string {
	opis := ""
	for i, stavka := range stavke {
		if i > 0 {
			opis += ", "
		}
		opis += stavka.Naziv
	}
	return opis
}
