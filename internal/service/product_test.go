package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/transport"
)

func newProductRequest(name string) transport.CreateProductRequest {
	return transport.CreateProductRequest{
		Name:        name,
		Category:    "tools",
		Quantity:    json.Number("5"),
		Price:       json.Number("12.50"),
		Description: "a useful thing",
	}
}

type fakeIndexer struct {
	indexed map[uuid.UUID]models.Product
	deleted []uuid.UUID
	queries []string
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[uuid.UUID]models.Product{}}
}

func (f *fakeIndexer) IndexProduct(_ context.Context, p *models.Product) error {
	f.indexed[p.ID] = *p
	return nil
}

func (f *fakeIndexer) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndexer) SearchProducts(_ context.Context, owner uuid.UUID, q string, _, _ int) (int64, []models.Product, error) {
	f.queries = append(f.queries, q)
	var out []models.Product
	for _, p := range f.indexed {
		if p.UserID == owner && strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			out = append(out, p)
		}
	}
	return int64(len(out)), out, nil
}

func TestProductService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	prod, err := env.products.CreateProduct(ctx, owner, newProductRequest("Hammer"), nil)
	require.NoError(t, err)
	assert.Equal(t, owner, prod.UserID)
	assert.Equal(t, models.DefaultSKU, prod.SKU)
	assert.Equal(t, int64(5), prod.Quantity)
	assert.InDelta(t, 12.5, prod.Price, 0.0001)
	assert.True(t, prod.Image.IsZero())

	stored, err := env.repo.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", stored.Name)

	assert.Equal(t, []string{"product_created"}, env.events.types())
}

func TestProductService_Create_WithImage(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	img := &ImageUpload{
		FileName:    "Hammer.PNG",
		ContentType: "image/png",
		Size:        2048,
		Body:        strings.NewReader("png-bytes"),
	}
	prod, err := env.products.CreateProduct(context.Background(), owner, newProductRequest("Hammer"), img)
	require.NoError(t, err)

	require.Len(t, env.images.keys, 1)
	key := env.images.keys[0]
	assert.True(t, strings.HasPrefix(key, DefaultImageFolder+"/"+owner.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	assert.Equal(t, "Hammer.PNG", prod.Image.FileName)
	assert.Equal(t, "https://cdn.example.com/"+key, prod.Image.FilePath)
	assert.Equal(t, "image/png", prod.Image.FileType)
	assert.Equal(t, "2.0 kB", prod.Image.FileSize)
}

func TestProductService_Create_UploadFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	env.images.err = errTransport

	img := &ImageUpload{FileName: "a.jpg", ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("abc")}
	_, err := env.products.CreateProduct(ctx, owner, newProductRequest("Saw"), img)
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, "Image could not be uploaded", Message(err))

	items, err := env.products.ListProducts(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProductService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	missing := newProductRequest("")
	_, err := env.products.CreateProduct(ctx, owner, missing, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Please fill in all fields", Message(err))

	negative := newProductRequest("Drill")
	negative.Quantity = json.Number("-1")
	_, err = env.products.CreateProduct(ctx, owner, negative, nil)
	assert.ErrorIs(t, err, ErrValidation)

	badPrice := newProductRequest("Drill")
	badPrice.Price = json.Number("cheap")
	_, err = env.products.CreateProduct(ctx, owner, badPrice, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	prod, err := env.products.CreateProduct(ctx, owner, newProductRequest("Wrench"), nil)
	require.NoError(t, err)

	got, err := env.products.GetProduct(ctx, owner, prod.ID.String())
	require.NoError(t, err)
	assert.Equal(t, prod.ID, got.ID)

	_, err = env.products.GetProduct(ctx, stranger, prod.ID.String())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "User not authorized", Message(err))

	_, err = env.products.UpdateProduct(ctx, stranger, prod.ID.String(), transport.PatchProductRequest{Name: "Mine now"}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, env.products.DeleteProduct(ctx, stranger, prod.ID.String()), ErrUnauthorized)

	_, err = env.products.GetProduct(ctx, owner, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.products.GetProduct(ctx, owner, "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := env.products.ListProducts(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProductService_Update_Partial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	img := &ImageUpload{FileName: "a.jpg", ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("abc")}
	prod, err := env.products.CreateProduct(ctx, owner, newProductRequest("Pliers"), img)
	require.NoError(t, err)

	updated, err := env.products.UpdateProduct(ctx, owner, prod.ID.String(), transport.PatchProductRequest{
		Price: json.Number("20"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pliers", updated.Name)
	assert.Equal(t, int64(5), updated.Quantity)
	assert.InDelta(t, 20.0, updated.Price, 0.0001)
	assert.Equal(t, prod.Image, updated.Image)

	stored, err := env.repo.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, stored.Price, 0.0001)
	assert.Equal(t, prod.Image.FilePath, stored.Image.FilePath)

	_, err = env.products.UpdateProduct(ctx, owner, prod.ID.String(), transport.PatchProductRequest{
		Quantity: json.Number("1.5"),
	}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	prod, err := env.products.CreateProduct(ctx, owner, newProductRequest("Level"), nil)
	require.NoError(t, err)

	require.NoError(t, env.products.DeleteProduct(ctx, owner, prod.ID.String()))
	_, err = env.products.GetProduct(ctx, owner, prod.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, env.products.DeleteProduct(ctx, owner, prod.ID.String()), ErrNotFound)
	assert.Equal(t, []string{"product_created", "product_deleted"}, env.events.types())
}

func TestProductService_Search_Store(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	_, err := env.products.CreateProduct(ctx, owner, newProductRequest("Claw Hammer"), nil)
	require.NoError(t, err)
	_, err = env.products.CreateProduct(ctx, owner, newProductRequest("Screwdriver"), nil)
	require.NoError(t, err)
	_, err = env.products.CreateProduct(ctx, other, newProductRequest("Sledge Hammer"), nil)
	require.NoError(t, err)

	res, err := env.products.SearchProducts(ctx, owner, "hammer", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Claw Hammer", res.Items[0].Name)
	assert.Equal(t, 0, res.Offset)
	assert.Equal(t, 10, res.Limit)

	_, err = env.products.SearchProducts(ctx, owner, "  ", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_Search_Index(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	idx := newFakeIndexer()
	env.products.Index = idx
	owner := uuid.New()

	prod, err := env.products.CreateProduct(ctx, owner, newProductRequest("Tape Measure"), nil)
	require.NoError(t, err)
	require.Contains(t, idx.indexed, prod.ID)

	res, err := env.products.SearchProducts(ctx, owner, "tape", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"tape"}, idx.queries)
	assert.Equal(t, int64(1), res.Total)

	require.NoError(t, env.products.DeleteProduct(ctx, owner, prod.ID.String()))
	assert.Equal(t, []uuid.UUID{prod.ID}, idx.deleted)
	assert.NotContains(t, idx.indexed, prod.ID)
}
