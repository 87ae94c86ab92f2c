package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-shop/internal/apperr"
	"go-shop/internal/paging"

	"gorm.io/gorm"
)

const emailTakenMsg = "The email has already been taken."

// Store is the credential store backed by the users table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, u *User) error {
	if !u.Role.Valid() {
		u.Role = RoleUser
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Invalid("email", emailTakenMsg)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// EmailTaken reports whether another user (not exceptID) owns email.
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *Store) List(ctx context.Context, page int) ([]User, paging.Meta, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, paging.Meta{}, err
	}
	users := []User{}
	if err := s.db.WithContext(ctx).Scopes(paging.Scope(page)).Order("id asc").Find(&users).Error; err != nil {
		return nil, paging.Meta{}, err
	}
	return users, paging.NewMeta(page, total), nil
}

// Update applies only the non-nil fields of ch and returns the fresh row.
func (s *Store) Update(ctx context.Context, id uint, ch Changes) (*User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := ch.columns()
	if len(cols) == 0 {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(cols).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("email", emailTakenMsg)
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return s.GetByID(ctx, id)
}

// Delete hard-deletes the user together with every comment they wrote.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The FK cascade covers this on postgres; drivers without FK
		// enforcement need the explicit delete.
		if err := tx.Exec("DELETE FROM comentario WHERE usuario_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&User{}, id)
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
	err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error
	return n, err
}

func (s *Store) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&User{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}
