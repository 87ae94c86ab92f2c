package product

import (
	"context"
	"errors"
	"fmt"

	"go-shop/internal/apperr"
	"go-shop/internal/paging"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, p *Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *Store) List(ctx context.Context, page int) ([]Product, paging.Meta, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Product{}).Count(&total).Error; err != nil {
		return nil, paging.Meta{}, err
	}
	products := []Product{}
	if err := s.db.WithContext(ctx).Scopes(paging.Scope(page)).Order("id asc").Find(&products).Error; err != nil {
		return nil, paging.Meta{}, err
	}
	return products, paging.NewMeta(page, total), nil
}

// Update writes only the fields present in ch.
func (s *Store) Update(ctx context.Context, id uint, ch Changes) (*Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := ch.columns()
	if len(cols) == 0 {
		return p, nil
	}
	if err := s.db.WithContext(ctx).Model(p).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes the product and its comments.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comentario WHERE producto_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Product{}).Count(&n).Error
	return n, err
}
