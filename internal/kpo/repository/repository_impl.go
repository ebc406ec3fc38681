package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/kpo/domain"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/pkg/db/option"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var sortAllowList = map[string]bool{
	"datum_prometa": true,
	"iznos_rsd":     true,
	"redni_broj":    true,
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *domain.KPOEntry) error
	FindByFaktura(ctx context.Context, db *gorm.DB, fakturaID snowflake.ID) (*domain.KPOEntry, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, fakturaID snowflake.ID, status domain.EntryStatus) (int64, error)
	List(ctx context.Context, db *gorm.DB, sc scope.Scope, filter domain.ListFilter, page pagination.Pagination) ([]*domain.KPOEntry, int64, error)
	SumIznos(ctx context.Context, db *gorm.DB, sc scope.Scope, filter domain.PrometFilter) (decimal.Decimal, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.KPOEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByFaktura(ctx context.Context, db *gorm.DB, fakturaID snowflake.ID) (*domain.KPOEntry, error) {
	var entry domain.KPOEntry
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM kpo_entries WHERE faktura_id = ?`,
		fakturaID,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, fakturaID snowflake.ID, status domain.EntryStatus) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE kpo_entries SET status_fakture = ? WHERE faktura_id = ?`,
		status,
		fakturaID,
	)
	return res.RowsAffected, res.Error
}

// applyStatus narrows by ledger status. An empty filter means issued only;
// turnover never silently includes storno rows.
func applyStatus(stmt *gorm.DB, status domain.StatusFilter) *gorm.DB {
	if status == "" {
		status = domain.FilterIzdata
	}
	if status != domain.FilterAll {
		stmt = stmt.Where("status_fakture = ?", string(status))
	}
	return stmt
}

// applyScope narrows to the bound tenant; an explicitly unscoped reader
// sees every firma's book.
func applyScope(stmt *gorm.DB, sc scope.Scope) *gorm.DB {
	if firmaID, ok := sc.FirmaID(); ok {
		stmt = stmt.Where("firma_id = ?", firmaID)
	}
	return stmt
}

func (r *repo) List(ctx context.Context, db *gorm.DB, sc scope.Scope, filter domain.ListFilter, page pagination.Pagination) ([]*domain.KPOEntry, int64, error) {
	stmt := applyScope(db.WithContext(ctx).Model(&domain.KPOEntry{}), sc)

	stmt = applyStatus(stmt, filter.Status)
	if filter.Godina != nil {
		stmt = stmt.Where("godina = ?", *filter.Godina)
	}
	if filter.DatumOd != nil {
		stmt = stmt.Where("datum_prometa >= ?", *filter.DatumOd)
	}
	if filter.DatumDo != nil {
		stmt = stmt.Where("datum_prometa <= ?", *filter.DatumDo)
	}
	if filter.Valuta != nil {
		stmt = stmt.Where("valuta = ?", *filter.Valuta)
	}
	if filter.KomitentSearch != "" {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "komitent_naziv",
			Operator: option.ILIKE,
			Value:    "%" + filter.KomitentSearch + "%",
		}).Apply(stmt)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.WithSortBy(option.QuerySortBy{
		Allow:   sortAllowList,
		Column:  filter.SortBy,
		Desc:    filter.SortDesc,
		Default: "redni_broj",
	}).Apply(stmt)

	var entries []*domain.KPOEntry
	err := option.ApplyPagination(page).Apply(stmt).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repo) SumIznos(ctx context.Context, db *gorm.DB, sc scope.Scope, filter domain.PrometFilter) (decimal.Decimal, error) {
	stmt := applyScope(db.WithContext(ctx).Model(&domain.KPOEntry{}), sc)

	stmt = applyStatus(stmt, filter.Status)
	if filter.Godina != nil {
		stmt = stmt.Where("godina = ?", *filter.Godina)
	}
	if filter.DatumOd != nil {
		stmt = stmt.Where("datum_prometa >= ?", *filter.DatumOd)
	}
	if filter.DatumDo != nil {
		stmt = stmt.Where("datum_prometa <= ?", *filter.DatumDo)
	}
	if filter.Valuta != nil {
		stmt = stmt.Where("valuta = ?", *filter.Valuta)
	}

	var sum decimal.NullDecimal
	if err := stmt.Select("SUM(iznos_rsd)").Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
