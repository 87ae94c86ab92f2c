package product_test

import (
	"context"
	"testing"

	"go-shop/internal/apperr"
	"go-shop/internal/comment"
	"go-shop/internal/dbtest"
	"go-shop/internal/product"
	"go-shop/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpdateStockOnlyPreservesOtherFields(t *testing.T) {
	conn := dbtest.Open(t)
	store := product.NewStore(conn)
	ctx := context.Background()
	seeded := dbtest.SeedProduct(t, conn, "chair", 49.99, 3)

	stock := 7
	got, err := store.Update(ctx, seeded.ID, product.Changes{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.Equal(t, seeded.Name, got.Name)
	assert.Equal(t, seeded.Description, got.Description)
	assert.InDelta(t, seeded.Price, got.Price, 0.001)
	assert.Equal(t, seeded.Image, got.Image)
}

func TestStore_UpdateZeroValuesAreWritten(t *testing.T) {
	conn := dbtest.Open(t)
	store := product.NewStore(conn)
	seeded := dbtest.SeedProduct(t, conn, "desk", 120, 5)

	zero := 0
	free := 0.0
	got, err := store.Update(context.Background(), seeded.ID, product.Changes{Stock: &zero, Price: &free})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, 0.0, got.Price)
}

func TestStore_GetAndDeleteNotFound(t *testing.T) {
	store := product.NewStore(dbtest.Open(t))
	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, store.Delete(context.Background(), 42), apperr.ErrNotFound)
}

func TestStore_DeleteCascadesComments(t *testing.T) {
	conn := dbtest.Open(t)
	store := product.NewStore(conn)
	ctx := context.Background()
	u := dbtest.SeedUser(t, conn, "Ana", "ana@example.com", "secret1", user.RoleUser)
	p := dbtest.SeedProduct(t, conn, "lamp", 10, 1)
	c := dbtest.SeedComment(t, conn, u.ID, p.ID, 3, "ok")

	require.NoError(t, store.Delete(ctx, p.ID))
	_, err := comment.NewStore(conn).Get(ctx, c.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_ListOrderedByID(t *testing.T) {
	conn := dbtest.Open(t)
	store := product.NewStore(conn)
	a := dbtest.SeedProduct(t, conn, "a", 1, 1)
	b := dbtest.SeedProduct(t, conn, "b", 2, 2)

	list, meta, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
	assert.Equal(t, int64(2), meta.Total)
}
