// Package option builds gorm queries from declarative conditions, keeping
// sort columns on a fixed allow-list so callers can never inject arbitrary
// order-by expressions.
package option

import (
	"fmt"

	"github.com/pausalko/pausalko/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ    Operator = "="
	GTE   Operator = ">="
	LTE   Operator = "<="
	ILIKE Operator = "ILIKE"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type conditionOption struct {
	cond Condition
}

func ApplyOperator(cond Condition) QueryOption {
	return conditionOption{cond: cond}
}

func (o conditionOption) Apply(db *gorm.DB) *gorm.DB {
	switch o.cond.Operator {
	case ILIKE:
		// sqlite and mysql have no ILIKE; LIKE is case-insensitive enough there.
		if db.Dialector != nil && db.Dialector.Name() != "postgres" {
			return db.Where(fmt.Sprintf("%s LIKE ?", o.cond.Field), o.cond.Value)
		}
		return db.Where(fmt.Sprintf("%s ILIKE ?", o.cond.Field), o.cond.Value)
	case GTE, LTE, EQ:
		return db.Where(fmt.Sprintf("%s %s ?", o.cond.Field, o.cond.Operator), o.cond.Value)
	default:
		return db
	}
}

// QuerySortBy sorts by a requested column only when the allow-list permits it.
type QuerySortBy struct {
	Allow   map[string]bool
	Column  string
	Desc    bool
	Default string
}

type sortOption struct {
	sort QuerySortBy
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return sortOption{sort: sort}
}

func (o sortOption) Apply(db *gorm.DB) *gorm.DB {
	column := o.sort.Column
	if column == "" || !o.sort.Allow[column] {
		column = o.sort.Default
	}
	if column == "" {
		return db
	}
	direction := "asc"
	if o.sort.Desc {
		direction = "desc"
	}
	return db.Order(fmt.Sprintf("%s %s", column, direction))
}

type paginationOption struct {
	page pagination.Pagination
}

func ApplyPagination(page pagination.Pagination) QueryOption {
	return paginationOption{page: page}
}

func (o paginationOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Offset(o.page.Offset()).Limit(o.page.Limit())
}
