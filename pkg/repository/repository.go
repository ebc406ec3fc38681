package repository

import (
	"context"

	"github.com/pausalko/pausalko/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed store for simple per-entity access.
// Services that need transactional raw SQL keep their own repositories and
// use this only for uncontended reads and writes.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID string, resource any) error
	Delete(ctx context.Context, resourceID string) error
	Count(ctx context.Context, query *T) (int64, error)
}
