// Package dbtest provides in-memory sqlite and miniredis fixtures for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"go-shop/internal/comment"
	"go-shop/internal/db"
	"go-shop/internal/product"
	"go-shop/internal/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seq atomic.Int64

// Open returns a migrated, private in-memory database that lives as long as t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := db.SQLiteDSN(fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1)))
	conn, err := db.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection keeps the shared-cache database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Redis starts a miniredis server and returns a client bound to it.
func Redis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// SeedUser inserts a user whose password is the plain text pw.
func SeedUser(t testing.TB, conn *gorm.DB, name, email, pw string, role user.Role) user.User {
	t.Helper()
	hash, err := user.HashPassword(pw)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := user.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func SeedProduct(t testing.TB, conn *gorm.DB, name string, price float64, stock int) product.Product {
	t.Helper()
	p := product.Product{
		Name:        name,
		Description: name + " description",
		Price:       price,
		Stock:       stock,
		Image:       "https://media.example.com/" + name + ".png",
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func SeedComment(t testing.TB, conn *gorm.DB, userID, productID uint, rating int, text string) comment.Comment {
	t.Helper()
	c := comment.Comment{Content: text, Rating: rating, UserID: userID, ProductID: productID}
	if err := comment.NewStore(conn).Create(t.Context(), &c); err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	return c
}
