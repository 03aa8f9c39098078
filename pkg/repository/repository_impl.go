package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/pkg/db/option"
	"gorm.io/gorm"
)

var errUnscopedDelete = errors.New("repository: delete without conditions")

type store[T any] struct {
	db *gorm.DB
}

func (s *store[T]) table(ctx context.Context, opts []option.QueryOption) *gorm.DB {
	stmt := s.db.WithContext(ctx).Model(new(T))
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}

func (s *store[T]) Get(ctx context.Context, id snowflake.ID) (*T, error) {
	rows, err := s.List(ctx, option.Where("id = ?", id), option.WithLimit(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (s *store[T]) GetMany(ctx context.Context, ids []snowflake.ID) ([]*T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.List(ctx, option.Where("id IN ?", ids))
}

func (s *store[T]) List(ctx context.Context, opts ...option.QueryOption) ([]*T, error) {
	var rows []*T
	if err := s.table(ctx, opts).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *store[T]) Count(ctx context.Context, opts ...option.QueryOption) (int64, error) {
	var n int64
	err := s.table(ctx, opts).Count(&n).Error
	return n, err
}

func (s *store[T]) Insert(ctx context.Context, row *T) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *store[T]) InsertMany(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *store[T]) Patch(ctx context.Context, id snowflake.ID, columns map[string]any) (int64, error) {
	tx := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(columns)
	return tx.RowsAffected, tx.Error
}

func (s *store[T]) Delete(ctx context.Context, opts ...option.QueryOption) error {
	if len(opts) == 0 {
		return errUnscopedDelete
	}
	stmt := s.db.WithContext(ctx)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt.Delete(new(T)).Error
}
