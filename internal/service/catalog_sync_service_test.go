package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sales-assistant-be/internal/model"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/internal/repository/specification"
	"sales-assistant-be/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	rows      []*model.CatalogProduct
	specs     []specification.Specification
	findErr   error
	upsertErr error
}

func (f *fakeCatalogRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.CatalogProduct, error) {
	f.specs = specs
	var active []*model.CatalogProduct
	for _, r := range f.rows {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active, f.findErr
}

func (f *fakeCatalogRepo) UpsertMany(ctx context.Context, products []*model.CatalogProduct) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows = append(f.rows, products...)
	return nil
}

func (f *fakeCatalogRepo) DeactivateExcept(ctx context.Context, keep []string) (int64, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, u := range keep {
		keepSet[u] = true
	}
	var n int64
	for _, r := range f.rows {
		if r.IsActive && !keepSet[r.URL] {
			r.IsActive = false
			n++
		}
	}
	return n, nil
}

type fakeUnitOfWork struct {
	repo      *fakeCatalogRepo
	began     bool
	committed bool
	rolled    bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.began = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.rolled = true
	return nil
}

func (u *fakeUnitOfWork) CatalogProductRepository() contract.CatalogProductRepository {
	return u.repo
}

type fakeUowFactory struct {
	repo *fakeCatalogRepo
	last *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	f.last = &fakeUnitOfWork{repo: f.repo}
	return f.last
}

func writeExport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCatalogSyncImportAndLoad(t *testing.T) {
	path := writeExport(t, `[
		{"product_name": "Embraco NJ 9238 GK", "price": "689,00", "status": "instock", "url": "https://shop.example/nj9238", "category": "Kompressoren"},
		{"product_name": "No URL", "price": 10, "status": "instock", "url": ""},
		{"product_name": "", "price": 10, "status": "instock", "url": "https://shop.example/blank"}
	]`)

	factory := &fakeUowFactory{repo: &fakeCatalogRepo{}}
	svc := NewCatalogSyncService(factory, nil)

	res, err := svc.ImportFile(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.True(t, factory.last.began)
	assert.True(t, factory.last.committed)

	products, err := svc.LoadActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Embraco NJ 9238 GK", products[0].Name)
	assert.InDelta(t, 689.0, float64(products[0].Price), 0.001)
	assert.Contains(t, factory.repo.specs, specification.Specification(specification.ActiveProducts{}))
}

func TestCatalogSyncPrune(t *testing.T) {
	repo := &fakeCatalogRepo{rows: []*model.CatalogProduct{
		{Name: "Discontinued", URL: "https://shop.example/old", IsActive: true},
	}}
	factory := &fakeUowFactory{repo: repo}
	svc := NewCatalogSyncService(factory, nil)

	path := writeExport(t, `[{"product_name": "Danfoss TE 2", "price": 89, "status": "instock", "url": "https://shop.example/te2"}]`)
	res, err := svc.ImportFile(context.Background(), path, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Deactivated)

	products, err := svc.LoadActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Danfoss TE 2", products[0].Name)

	_, err = svc.ImportFile(context.Background(), writeExport(t, `[]`), true)
	assert.Error(t, err)
}

func TestCatalogSyncErrors(t *testing.T) {
	factory := &fakeUowFactory{repo: &fakeCatalogRepo{findErr: errors.New("db down"), upsertErr: errors.New("constraint")}}
	svc := NewCatalogSyncService(factory, nil)

	_, err := svc.LoadActive(context.Background())
	assert.ErrorContains(t, err, "db down")

	_, err = svc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), false)
	assert.Error(t, err)

	path := writeExport(t, `[{"product_name": "X 100", "price": 1, "status": "instock", "url": "https://shop.example/x"}]`)
	_, err = svc.ImportFile(context.Background(), path, false)
	assert.ErrorContains(t, err, "constraint")
	assert.True(t, factory.last.rolled)
	assert.False(t, factory.last.committed)
}
