package service

import (
	"context"
	"fmt"
	"strings"

	"sales-assistant-be/internal/mapper"
	"sales-assistant-be/internal/model"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/repository/specification"
	"sales-assistant-be/internal/repository/unitofwork"
	"sales-assistant-be/pkg/catalog"
)

type ImportResult struct {
	Imported    int
	Skipped     int
	Deactivated int64
}

// ICatalogSyncService moves the fallback catalog between its JSON export and
// the catalog_products table.
type ICatalogSyncService interface {
	LoadActive(ctx context.Context) ([]catalog.LocalProduct, error)
	// ImportFile upserts the export. With prune, products missing from the
	// export are deactivated in the same transaction.
	ImportFile(ctx context.Context, path string, prune bool) (*ImportResult, error)
}

type catalogSyncService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.CatalogProductMapper
	logger     logger.ILogger
}

func NewCatalogSyncService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ICatalogSyncService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &catalogSyncService{
		uowFactory: uowFactory,
		mapper:     mapper.NewCatalogProductMapper(),
		logger:     log,
	}
}

func (s *catalogSyncService) LoadActive(ctx context.Context) ([]catalog.LocalProduct, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.CatalogProductRepository().FindAll(ctx,
		specification.ActiveProducts{},
		specification.OrderBy{Field: "name"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog products: %w", err)
	}

	s.logger.Info("CATALOG", "Loaded fallback catalog from database", map[string]interface{}{"count": len(rows)})
	return s.mapper.ToLocals(rows), nil
}

// Rows without a name or URL are skipped: the URL is the upsert key.
func (s *catalogSyncService) ImportFile(ctx context.Context, path string, prune bool) (*ImportResult, error) {
	products, err := catalog.LoadLocalFile(path)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	rows := make([]*model.CatalogProduct, 0, len(products))
	urls := make([]string, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.URL) == "" {
			res.Skipped++
			continue
		}
		rows = append(rows, s.mapper.ToModel(p, path))
		urls = append(urls, p.URL)
	}
	if prune && len(urls) == 0 {
		return nil, fmt.Errorf("refusing to prune with an empty export %s", path)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	repo := uow.CatalogProductRepository()

	if err := repo.UpsertMany(ctx, rows); err != nil {
		uow.Rollback()
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	if prune {
		n, err := repo.DeactivateExcept(ctx, urls)
		if err != nil {
			uow.Rollback()
			return nil, fmt.Errorf("failed to deactivate stale products: %w", err)
		}
		res.Deactivated = n
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	res.Imported = len(rows)

	s.logger.Info("CATALOG", "Imported fallback catalog", map[string]interface{}{
		"path":        path,
		"imported":    res.Imported,
		"skipped":     res.Skipped,
		"deactivated": res.Deactivated,
	})
	return res, nil
}
