package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/pausalko/pausalko/internal/scope"
	pkgdb "github.com/pausalko/pausalko/pkg/db"
	"github.com/pausalko/pausalko/pkg/db/option"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"gorm.io/gorm"
)

var sortAllowList = map[string]bool{
	"datum_prometa":    true,
	"created_at":       true,
	"broj_fakture":     true,
	"ukupan_iznos_rsd": true,
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, faktura *domain.Faktura) error
	Save(ctx context.Context, db *gorm.DB, faktura *domain.Faktura) error
	FindByID(ctx context.Context, db *gorm.DB, firmaID, id snowflake.ID) (*domain.Faktura, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, firmaID, id snowflake.ID) (*domain.Faktura, error)
	ReplaceStavke(ctx context.Context, db *gorm.DB, fakturaID snowflake.ID, stavke []domain.FakturaStavka) error
	List(ctx context.Context, db *gorm.DB, sc scope.Scope, filter domain.ListFakturaFilter, page pagination.Pagination) ([]*domain.Faktura, int64, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	UpdatePDF(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.StatusPDF, url, errMsg string) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, faktura *domain.Faktura) error {
	return db.WithContext(ctx).Create(faktura).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, faktura *domain.Faktura) error {
	// Omit stavke so Save never cascades line writes; ReplaceStavke owns those.
	return db.WithContext(ctx).Omit("Stavke").Save(faktura).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, firmaID, id snowflake.ID) (*domain.Faktura, error) {
	return r.find(ctx, db, firmaID, id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, firmaID, id snowflake.ID) (*domain.Faktura, error) {
	return r.find(ctx, pkgdb.ForUpdate(tx), firmaID, id)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, firmaID, id snowflake.ID) (*domain.Faktura, error) {
	var faktura domain.Faktura
	err := db.WithContext(ctx).
		Where("firma_id = ? AND id = ?", firmaID, id).
		First(&faktura).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	err = db.WithContext(ctx).
		Where("faktura_id = ?", id).
		Order("redni_broj asc").
		Find(&faktura.Stavke).Error
	if err != nil {
		return nil, err
	}
	return &faktura, nil
}

func (r *repo) ReplaceStavke(ctx context.Context, db *gorm.DB, fakturaID snowflake.ID, stavke []domain.FakturaStavka) error {
	if err := db.WithContext(ctx).
		Exec(`DELETE FROM faktura_stavke WHERE faktura_id = ?`, fakturaID).Error; err != nil {
		return err
	}
	if len(stavke) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&stavke).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, sc scope.Scope, filter domain.ListFakturaFilter, page pagination.Pagination) ([]*domain.Faktura, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Faktura{})
	// An explicitly unscoped reader spans all firme.
	if firmaID, ok := sc.FirmaID(); ok {
		stmt = stmt.Where("firma_id = ?", firmaID)
	}

	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if filter.Tip != nil {
		stmt = stmt.Where("tip_fakture = ?", *filter.Tip)
	}
	if filter.Valuta != nil {
		stmt = stmt.Where("valuta = ?", *filter.Valuta)
	}
	if filter.KomitentID != nil {
		stmt = stmt.Where("komitent_id = ?", *filter.KomitentID)
	}
	if filter.DatumOd != nil {
		stmt = stmt.Where("datum_prometa >= ?", *filter.DatumOd)
	}
	if filter.DatumDo != nil {
		stmt = stmt.Where("datum_prometa <= ?", *filter.DatumDo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.WithSortBy(option.QuerySortBy{
		Allow:   sortAllowList,
		Column:  filter.SortBy,
		Desc:    filter.SortDesc,
		Default: "created_at",
	}).Apply(stmt)

	var fakture []*domain.Faktura
	err := option.ApplyPagination(page).Apply(stmt).
		Order("id asc").
		Find(&fakture).Error
	if err != nil {
		return nil, 0, err
	}
	return fakture, total, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).
		Exec(`DELETE FROM faktura_stavke WHERE faktura_id = ?`, id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM fakture WHERE id = ?`, id).Error
}

func (r *repo) UpdatePDF(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.StatusPDF, url, errMsg string) error {
	return db.WithContext(ctx).
		Model(&domain.Faktura{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status_pdf": status,
			"pdf_url":    url,
			"pdf_error":  errMsg,
		}).Error
}
