package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-shop/internal/apperr"
	"go-shop/internal/paging"
	"go-shop/internal/product"
	"go-shop/internal/user"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author", func(q *gorm.DB) *gorm.DB { return q.Select("id", "name", "profile_picture") }).
		Preload("Product", func(q *gorm.DB) *gorm.DB { return q.Select("id", "name", "image") })
}

// List returns one page of comments, newest first.
func (s *Store) List(ctx context.Context, f Filter, page int) ([]Comment, paging.Meta, error) {
	q := s.db.WithContext(ctx).Model(&Comment{})
	if f.ProductID != nil {
		q = q.Where("producto_id = ?", *f.ProductID)
	}
	if f.UserID != nil {
		q = q.Where("usuario_id = ?", *f.UserID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, paging.Meta{}, err
	}
	comments := []Comment{}
	err := q.Scopes(withRefs, paging.Scope(page)).
		Order("fecha desc").Order("id desc").
		Find(&comments).Error
	if err != nil {
		return nil, paging.Meta{}, err
	}
	return comments, paging.NewMeta(page, total), nil
}

func (s *Store) Get(ctx context.Context, id uint) (*Comment, error) {
	var c Comment
	if err := s.db.WithContext(ctx).Scopes(withRefs).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create checks that both referenced rows exist before inserting.
func (s *Store) Create(ctx context.Context, c *Comment) error {
	if c.PostedAt.IsZero() {
		c.PostedAt = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(tx, &c.UserID, &c.ProductID); err != nil {
			return err
		}
		return tx.Omit("Author", "Product").Create(c).Error
	})
	if err != nil {
		return wrap("create comment", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id uint, ch Changes) (*Comment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Comment
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if err := checkRefs(tx, ch.UserID, ch.ProductID); err != nil {
			return err
		}
		cols := ch.columns()
		if len(cols) == 0 {
			return nil
		}
		return tx.Model(&existing).Updates(cols).Error
	})
	if err != nil {
		return nil, wrap(fmt.Sprintf("update comment %d", id), err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Comment{}).Count(&n).Error
	return n, err
}

// AverageRating is 0 when there are no comments.
func (s *Store) AverageRating(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	if err := s.db.WithContext(ctx).Model(&Comment{}).Select("AVG(calificacion)").Row().Scan(&avg); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func checkRefs(tx *gorm.DB, userID, productID *uint) error {
	v := apperr.NewValidation()
	if userID != nil {
		var n int64
		if err := tx.Model(&user.User{}).Where("id = ?", *userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			v.Add("usuario_id", "The selected usuario_id is invalid.")
		}
	}
	if productID != nil {
		var n int64
		if err := tx.Model(&product.Product{}).Where("id = ?", *productID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			v.Add("producto_id", "The selected producto_id is invalid.")
		}
	}
	return v.OrNil()
}

func wrap(op string, err error) error {
	if _, ok := apperr.AsValidation(err); ok || errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
