package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/clock"
	"github.com/pausalko/pausalko/internal/firma/domain"
	pkgdb "github.com/pausalko/pausalko/pkg/db"
	"github.com/pausalko/pausalko/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var pibPattern = regexp.MustCompile(`^\d{9}$`)

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
	repo  repository.Repository[domain.Firma]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("firma.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.Firma](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateFirmaRequest) (domain.Firma, error) {
	pib := strings.TrimSpace(req.PIB)
	if !pibPattern.MatchString(pib) {
		return domain.Firma{}, domain.ErrInvalidPIB
	}
	if strings.TrimSpace(req.Naziv) == "" || strings.TrimSpace(req.Adresa) == "" {
		return domain.Firma{}, domain.ErrInvalidData
	}
	if len(req.DinarskiRacuni) == 0 {
		return domain.Firma{}, domain.ErrInvalidData
	}

	now := s.clock.Now()
	firma := domain.Firma{
		ID:             s.genID.Generate(),
		PIB:            pib,
		MaticniBroj:    strings.TrimSpace(req.MaticniBroj),
		Naziv:          strings.TrimSpace(req.Naziv),
		Adresa:         strings.TrimSpace(req.Adresa),
		Broj:           strings.TrimSpace(req.Broj),
		PostanskiBroj:  strings.TrimSpace(req.PostanskiBroj),
		Mesto:          strings.TrimSpace(req.Mesto),
		Drzava:         defaultString(req.Drzava, "Srbija"),
		Telefon:        strings.TrimSpace(req.Telefon),
		Email:          strings.TrimSpace(req.Email),
		DinarskiRacuni: datatypes.NewJSONSlice(req.DinarskiRacuni),
		DevizniRacuni:  datatypes.NewJSONSlice(req.DevizniRacuni),
		PrefiksFakture: strings.TrimSpace(req.PrefiksFakture),
		SufiksFakture:  strings.TrimSpace(req.SufiksFakture),
		BrojacFakture:  1,
		BrojacAvansne:  1,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, &firma); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Firma{}, domain.ErrPIBTaken
		}
		return domain.Firma{}, err
	}

	s.log.Info("firma registered",
		zap.String("firma_id", firma.ID.String()),
		zap.String("pib", firma.PIB),
	)
	return firma, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Firma, error) {
	item, err := s.repo.FindOne(ctx, &domain.Firma{ID: id})
	if err != nil {
		return domain.Firma{}, err
	}
	if item == nil {
		return domain.Firma{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id snowflake.ID, req domain.UpdateProfileRequest) (domain.Firma, error) {
	firma, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Firma{}, err
	}

	if req.Telefon != nil {
		firma.Telefon = strings.TrimSpace(*req.Telefon)
	}
	if req.Email != nil {
		firma.Email = strings.TrimSpace(*req.Email)
	}
	if req.DinarskiRacuni != nil {
		if len(*req.DinarskiRacuni) == 0 {
			return domain.Firma{}, domain.ErrInvalidData
		}
		firma.DinarskiRacuni = datatypes.NewJSONSlice(*req.DinarskiRacuni)
	}
	if req.DevizniRacuni != nil {
		firma.DevizniRacuni = datatypes.NewJSONSlice(*req.DevizniRacuni)
	}
	if req.PrefiksFakture != nil {
		firma.PrefiksFakture = strings.TrimSpace(*req.PrefiksFakture)
	}
	if req.SufiksFakture != nil {
		firma.SufiksFakture = strings.TrimSpace(*req.SufiksFakture)
	}
	firma.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&firma).Error; err != nil {
		return domain.Firma{}, err
	}
	return firma, nil
}

func (s *Service) UpdateRegistration(ctx context.Context, id snowflake.ID, req domain.UpdateRegistrationRequest) (domain.Firma, error) {
	firma, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Firma{}, err
	}

	if req.PIB != nil {
		pib := strings.TrimSpace(*req.PIB)
		if !pibPattern.MatchString(pib) {
			return domain.Firma{}, domain.ErrInvalidPIB
		}
		firma.PIB = pib
	}
	if req.MaticniBroj != nil {
		firma.MaticniBroj = strings.TrimSpace(*req.MaticniBroj)
	}
	if req.Naziv != nil {
		if strings.TrimSpace(*req.Naziv) == "" {
			return domain.Firma{}, domain.ErrInvalidData
		}
		firma.Naziv = strings.TrimSpace(*req.Naziv)
	}
	if req.Adresa != nil {
		firma.Adresa = strings.TrimSpace(*req.Adresa)
	}
	if req.Broj != nil {
		firma.Broj = strings.TrimSpace(*req.Broj)
	}
	if req.Mesto != nil {
		firma.Mesto = strings.TrimSpace(*req.Mesto)
	}
	if req.IsActive != nil {
		firma.IsActive = *req.IsActive
	}
	firma.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&firma).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Firma{}, domain.ErrPIBTaken
		}
		return domain.Firma{}, err
	}
	return firma, nil
}

// Delete removes the firma and all tenant-owned records. KPO entries go
// first because they restrict-delete their fakture; user accounts survive
// with a nulled firma reference.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	firma, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			`DELETE FROM kpo_entries WHERE firma_id = ?`,
			`DELETE FROM faktura_stavke WHERE faktura_id IN (SELECT id FROM fakture WHERE firma_id = ?)`,
			`DELETE FROM fakture WHERE firma_id = ?`,
			`DELETE FROM artikli WHERE firma_id = ?`,
			`DELETE FROM komitenti WHERE firma_id = ?`,
		} {
			if err := tx.Exec(stmt, firma.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec(`UPDATE users SET firma_id = NULL WHERE firma_id = ?`, firma.ID).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM firme WHERE id = ?`, firma.ID).Error
	})
}

func defaultString(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}
