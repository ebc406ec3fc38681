package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
	"github.com/pausalko/pausalko/internal/clock"
	"github.com/pausalko/pausalko/internal/config"
	"github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/pausalko/pausalko/internal/faktura/repository"
	komitentrepo "github.com/pausalko/pausalko/internal/komitent/repository"
	kpodomain "github.com/pausalko/pausalko/internal/kpo/domain"
	"github.com/pausalko/pausalko/internal/numbering"
	obsmetrics "github.com/pausalko/pausalko/internal/observability/metrics"
	"github.com/pausalko/pausalko/internal/providers/email"
	"github.com/pausalko/pausalko/internal/providers/nbs"
	"github.com/pausalko/pausalko/internal/providers/pdf"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/internal/tasks"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Config       config.Config
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         repository.Repository
	KomitentRepo komitentrepo.Repository
	Numbering    numbering.Service
	KPO          kpodomain.Service
	Rates        nbs.Provider
	PDF          pdf.Provider
	Email        email.Provider
	Dispatcher   *tasks.Dispatcher
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.Config
	genID        *snowflake.Node
	clock        clock.Clock
	repo         repository.Repository
	komitentRepo komitentrepo.Repository
	numbering    numbering.Service
	kpo          kpodomain.Service
	rates        nbs.Provider
	pdf          pdf.Provider
	email        email.Provider
	dispatcher   *tasks.Dispatcher
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("faktura.service"),
		cfg:          p.Config,
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		komitentRepo: p.KomitentRepo,
		numbering:    p.Numbering,
		kpo:          p.KPO,
		rates:        p.Rates,
		pdf:          p.PDF,
		email:        p.Email,
		dispatcher:   p.Dispatcher,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, userID snowflake.ID, req domain.CreateFakturaRequest) (domain.Faktura, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Faktura{}, domain.ErrInvalidScope
	}

	if !domain.ValidTip(req.TipFakture) {
		return domain.Faktura{}, domain.ErrInvalidTip
	}
	if err := validateValuta(req.TipFakture, req.Valuta); err != nil {
		return domain.Faktura{}, err
	}
	jezik := req.Jezik
	if jezik == "" {
		jezik = "sr"
	}
	if jezik != "sr" && jezik != "en" {
		return domain.Faktura{}, domain.ErrInvalidStavka
	}
	if req.ValutaPlacanja < 0 {
		return domain.Faktura{}, domain.ErrInvalidStavka
	}
	if req.DatumPrometa.IsZero() {
		return domain.Faktura{}, domain.ErrInvalidStavka
	}

	komitent, err := s.komitentRepo.FindByID(ctx, s.db, firmaID, req.KomitentID)
	if err != nil {
		return domain.Faktura{}, err
	}
	if komitent == nil {
		return domain.Faktura{}, domain.ErrNoKomitent
	}

	stavke, err := buildStavke(s.genID, 0, req.Stavke)
	if err != nil {
		return domain.Faktura{}, err
	}

	if req.AvansnaFakturaID != nil {
		if err := s.validateAvansnaRef(ctx, firmaID, req.TipFakture, *req.AvansnaFakturaID); err != nil {
			return domain.Faktura{}, err
		}
	}

	id := s.genID.Generate()
	now := s.clock.Now()
	faktura := domain.Faktura{
		ID:         id,
		FirmaID:    firmaID,
		KomitentID: komitent.ID,
		UserID:     userID,
		// Drafts carry a provisional unique number; Finalize assigns the
		// definitive one from the firma counter.
		BrojFakture:      "DRAFT-" + id.String(),
		TipFakture:       req.TipFakture,
		Valuta:           req.Valuta,
		Jezik:            jezik,
		DatumPrometa:     req.DatumPrometa,
		ValutaPlacanja:   req.ValutaPlacanja,
		DatumDospeca:     domain.CalculateDatumDospeca(req.DatumPrometa, req.ValutaPlacanja),
		BrojUgovora:      strings.TrimSpace(req.BrojUgovora),
		BrojOdluke:       strings.TrimSpace(req.BrojOdluke),
		BrojNarudzbenice: strings.TrimSpace(req.BrojNarudzbenice),
		PozivNaBroj:      strings.TrimSpace(req.PozivNaBroj),
		Model:            strings.TrimSpace(req.Model),
		Status:           domain.StatusDraft,
		AvansnaFakturaID: req.AvansnaFakturaID,
		StatusPDF:        domain.PDFPending,
		CreatedAt:        now,
	}
	for i := range stavke {
		stavke[i].FakturaID = id
	}
	faktura.Stavke = stavke
	applyTotals(&faktura, nil)

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &faktura)
	}); err != nil {
		return domain.Faktura{}, err
	}
	return faktura, nil
}

func (s *Service) Edit(ctx context.Context, sc scope.Scope, id snowflake.ID, req domain.EditFakturaRequest) (domain.Faktura, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Faktura{}, domain.ErrInvalidScope
	}

	var result domain.Faktura
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		faktura, err := s.repo.FindByIDForUpdate(ctx, tx, firmaID, id)
		if err != nil {
			return err
		}
		if faktura == nil {
			return domain.ErrNotFound
		}
		if faktura.Status != domain.StatusDraft {
			return domain.ErrInvalidTransition
		}

		if req.KomitentID != nil {
			komitent, err := s.komitentRepo.FindByID(ctx, tx, firmaID, *req.KomitentID)
			if err != nil {
				return err
			}
			if komitent == nil {
				return domain.ErrNoKomitent
			}
			faktura.KomitentID = komitent.ID
		}
		if req.DatumPrometa != nil {
			if req.DatumPrometa.IsZero() {
				return domain.ErrInvalidStavka
			}
			faktura.DatumPrometa = *req.DatumPrometa
		}
		if req.ValutaPlacanja != nil {
			if *req.ValutaPlacanja < 0 {
				return domain.ErrInvalidStavka
			}
			faktura.ValutaPlacanja = *req.ValutaPlacanja
		}
		if req.Jezik != nil {
			if *req.Jezik != "sr" && *req.Jezik != "en" {
				return domain.ErrInvalidStavka
			}
			faktura.Jezik = *req.Jezik
		}
		faktura.DatumDospeca = domain.CalculateDatumDospeca(faktura.DatumPrometa, faktura.ValutaPlacanja)

		if req.Stavke != nil {
			stavke, err := buildStavke(s.genID, faktura.ID, req.Stavke)
			if err != nil {
				return err
			}
			if err := s.repo.ReplaceStavke(ctx, tx, faktura.ID, stavke); err != nil {
				return err
			}
			faktura.Stavke = stavke
		}
		applyTotals(faktura, nil)

		if err := s.repo.Save(ctx, tx, faktura); err != nil {
			return err
		}
		result = *faktura
		return nil
	})
	if err != nil {
		return domain.Faktura{}, err
	}
	return result, nil
}

// Finalize turns a draft into an issued invoice: definitive number, frozen
// totals, KPO entry for ledgerable types. Everything happens in one
// transaction; any failure leaves the draft untouched.
func (s *Service) Finalize(ctx context.Context, sc scope.Scope, id snowflake.ID) (domain.Faktura, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Faktura{}, domain.ErrInvalidScope
	}

	var result domain.Faktura
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		faktura, err := s.repo.FindByIDForUpdate(ctx, tx, firmaID, id)
		if err != nil {
			return err
		}
		if faktura == nil {
			return domain.ErrNotFound
		}
		if faktura.Status != domain.StatusDraft {
			return domain.ErrInvalidTransition
		}
		if len(faktura.Stavke) == 0 {
			return domain.ErrNoStavke
		}

		komitent, err := s.komitentRepo.FindByID(ctx, tx, firmaID, faktura.KomitentID)
		if err != nil {
			return err
		}
		if komitent == nil {
			return domain.ErrNoKomitent
		}

		now := s.clock.Now()
		broj, err := s.numbering.NextBrojFakture(ctx, tx, firmaID, faktura.TipFakture, now.Year())
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrNumberingFailure, err)
		}
		faktura.BrojFakture = broj
		faktura.DatumDospeca = domain.CalculateDatumDospeca(faktura.DatumPrometa, faktura.ValutaPlacanja)

		var kurs *decimal.Decimal
		if faktura.Valuta != domain.ValutaRSD {
			rate, err := s.rates.MiddleRate(ctx, faktura.Valuta, faktura.DatumPrometa)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrKursUnavailable, err)
			}
			kurs = &rate
		}
		applyTotals(faktura, kurs)

		faktura.Status = domain.StatusIzdata
		faktura.FinalizedAt = &now
		faktura.StatusPDF = domain.PDFPending
		faktura.PDFUrl = ""
		faktura.PDFError = ""

		if err := s.repo.Save(ctx, tx, faktura); err != nil {
			return err
		}

		if faktura.TipFakture.Ledgerable() {
			if _, err := s.kpo.CreateEntry(ctx, tx, faktura, komitent); err != nil {
				return err
			}
		}

		result = *faktura
		return nil
	})
	if err != nil {
		s.metrics.IncFinalize("error")
		return domain.Faktura{}, err
	}

	s.metrics.IncFinalize("ok")
	s.log.Info("faktura finalized",
		zap.Int64("firma_id", firmaID.Int64()),
		zap.Int64("faktura_id", result.ID.Int64()),
		zap.String("broj_fakture", result.BrojFakture),
		zap.String("tip", string(result.TipFakture)),
	)
	s.schedulePDF(firmaID, result.ID)
	return result, nil
}

func (s *Service) Storno(ctx context.Context, sc scope.Scope, id snowflake.ID, razlog, actor string) (domain.Faktura, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Faktura{}, domain.ErrInvalidScope
	}
	if strings.TrimSpace(razlog) == "" {
		return domain.Faktura{}, domain.ErrMissingRazlog
	}

	var result domain.Faktura
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		faktura, err := s.repo.FindByIDForUpdate(ctx, tx, firmaID, id)
		if err != nil {
			return err
		}
		if faktura == nil {
			return domain.ErrNotFound
		}
		if faktura.Status != domain.StatusIzdata {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		faktura.Status = domain.StatusStornirana
		faktura.StorniranaAt = &now
		faktura.StornoRazlog = strings.TrimSpace(razlog)
		faktura.StornoActor = strings.TrimSpace(actor)

		if err := s.repo.Save(ctx, tx, faktura); err != nil {
			return err
		}

		// The invoice stays in the book; only the status mirror flips.
		// Profakture never had an entry, so a missing row is expected there.
		if err := s.kpo.MarkStatus(ctx, tx, faktura.ID, kpodomain.EntryStornirana); err != nil {
			if errors.Is(err, kpodomain.ErrEntryNotFound) && !faktura.TipFakture.Ledgerable() {
				result = *faktura
				return nil
			}
			return err
		}

		result = *faktura
		return nil
	})
	if err != nil {
		s.metrics.IncStorno("error")
		return domain.Faktura{}, err
	}

	s.metrics.IncStorno("ok")
	s.log.Info("faktura stornirana",
		zap.Int64("firma_id", firmaID.Int64()),
		zap.Int64("faktura_id", result.ID.Int64()),
		zap.String("actor", result.StornoActor),
	)
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, sc scope.Scope, id snowflake.ID) (domain.Faktura, error) {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.Faktura{}, domain.ErrInvalidScope
	}
	faktura, err := s.repo.FindByID(ctx, s.db, firmaID, id)
	if err != nil {
		return domain.Faktura{}, err
	}
	if faktura == nil {
		return domain.Faktura{}, domain.ErrNotFound
	}
	return *faktura, nil
}

func (s *Service) List(ctx context.Context, sc scope.Scope, filter domain.ListFakturaFilter, page pagination.Pagination) (domain.ListFakturaResponse, error) {
	if !sc.Valid() {
		return domain.ListFakturaResponse{}, domain.ErrInvalidScope
	}

	items, total, err := s.repo.List(ctx, s.db, sc, filter, page)
	if err != nil {
		return domain.ListFakturaResponse{}, err
	}

	fakture := make([]domain.Faktura, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		fakture = append(fakture, *item)
	}

	return domain.ListFakturaResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Fakture:  fakture,
	}, nil
}

// Delete removes drafts only. Issued invoices are immutable; storno is the
// only way to void them.
func (s *Service) Delete(ctx context.Context, sc scope.Scope, id snowflake.ID) error {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.ErrInvalidScope
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		faktura, err := s.repo.FindByIDForUpdate(ctx, tx, firmaID, id)
		if err != nil {
			return err
		}
		if faktura == nil {
			return domain.ErrNotFound
		}
		if faktura.Status != domain.StatusDraft {
			return domain.ErrInvalidTransition
		}
		return s.repo.Delete(ctx, tx, faktura.ID)
	})
}

func (s *Service) validateAvansnaRef(ctx context.Context, firmaID snowflake.ID, tip domain.TipFakture, avansnaID snowflake.ID) error {
	if tip != domain.TipStandardna {
		return domain.ErrInvalidAvansna
	}
	avansna, err := s.repo.FindByID(ctx, s.db, firmaID, avansnaID)
	if err != nil {
		return err
	}
	if avansna == nil || avansna.TipFakture != domain.TipAvansna || avansna.Status != domain.StatusIzdata {
		return domain.ErrInvalidAvansna
	}
	return nil
}

func validateValuta(tip domain.TipFakture, valuta domain.Valuta) error {
	if !domain.ValidValuta(valuta) {
		return domain.ErrInvalidValuta
	}
	if tip == domain.TipDevizna && valuta == domain.ValutaRSD {
		return domain.ErrInvalidValuta
	}
	if tip != domain.TipDevizna && valuta != domain.ValutaRSD {
		return domain.ErrInvalidValuta
	}
	return nil
}

func buildStavke(genID *snowflake.Node, fakturaID snowflake.ID, inputs []domain.StavkaInput) ([]domain.FakturaStavka, error) {
	stavke := make([]domain.FakturaStavka, 0, len(inputs))
	for i, input := range inputs {
		naziv := strings.TrimSpace(input.Naziv)
		if naziv == "" {
			return nil, domain.ErrInvalidStavka
		}
		if !artikaldomain.ValidJedinica(input.JedinicaMere) {
			return nil, domain.ErrInvalidStavka
		}
		if input.Kolicina.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidStavka
		}
		if input.Cena.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidStavka
		}
		stavka := domain.FakturaStavka{
			ID:           genID.Generate(),
			FakturaID:    fakturaID,
			ArtikalID:    input.ArtikalID,
			Naziv:        naziv,
			Kolicina:     input.Kolicina,
			JedinicaMere: input.JedinicaMere,
			Cena:         input.Cena,
			RedniBroj:    i + 1,
		}
		stavka.CalculateUkupno()
		stavke = append(stavke, stavka)
	}
	return stavke, nil
}

// applyTotals recomputes the invoice totals from its stavke. For foreign
// currency invoices the line sum is the original-currency amount; the RSD
// amount exists only once a kurs snapshot is taken at finalize.
func applyTotals(faktura *domain.Faktura, kurs *decimal.Decimal) {
	sum := decimal.Zero
	for i := range faktura.Stavke {
		faktura.Stavke[i].CalculateUkupno()
		sum = sum.Add(faktura.Stavke[i].Ukupno)
	}
	sum = sum.Round(2)

	if faktura.Valuta == domain.ValutaRSD {
		faktura.UkupanIznosRSD = sum
		faktura.UkupanIznosOriginalnaValuta = nil
		faktura.SrednjiKurs = nil
		return
	}

	faktura.UkupanIznosOriginalnaValuta = &sum
	if kurs != nil {
		faktura.SrednjiKurs = kurs
		faktura.UkupanIznosRSD = sum.Mul(*kurs).Round(2)
	} else {
		faktura.UkupanIznosRSD = decimal.Zero
	}
}
