package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/komitent/domain"
	"github.com/pausalko/pausalko/pkg/db/option"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, komitent *domain.Komitent) error
	Save(ctx context.Context, db *gorm.DB, komitent *domain.Komitent) error
	FindByID(ctx context.Context, db *gorm.DB, firmaID, id snowflake.ID) (*domain.Komitent, error)
	List(ctx context.Context, db *gorm.DB, firmaID snowflake.ID, filter domain.ListKomitentFilter, page pagination.Pagination) ([]*domain.Komitent, int64, error)
	CountFakture(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, komitent *domain.Komitent) error {
	return db.WithContext(ctx).Create(komitent).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, komitent *domain.Komitent) error {
	return db.WithContext(ctx).Save(komitent).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, firmaID, id snowflake.ID) (*domain.Komitent, error) {
	var komitent domain.Komitent
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM komitenti WHERE firma_id = ? AND id = ?`,
		firmaID,
		id,
	).Scan(&komitent).Error
	if err != nil {
		return nil, err
	}
	if komitent.ID == 0 {
		return nil, nil
	}
	return &komitent, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, firmaID snowflake.ID, filter domain.ListKomitentFilter, page pagination.Pagination) ([]*domain.Komitent, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Komitent{}).
		Where("firma_id = ?", firmaID)
	if filter.Search != "" {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "naziv",
			Operator: option.ILIKE,
			Value:    "%" + filter.Search + "%",
		}).Apply(stmt)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var komitenti []*domain.Komitent
	err := option.ApplyPagination(page).Apply(stmt).
		Order("naziv asc, id asc").
		Find(&komitenti).Error
	if err != nil {
		return nil, 0, err
	}
	return komitenti, total, nil
}

func (r *repo) CountFakture(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM fakture WHERE komitent_id = ?`,
		id,
	).Scan(&count).Error
	return count, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM komitenti WHERE id = ?`, id).Error
}
