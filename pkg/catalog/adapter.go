package catalog

import (
	"context"
	"errors"

	"sales-assistant-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const adapterModule = "CATALOG"

// Adapter is the single catalog entry point for the assistant. Lookups go
// to the remote shop first; any remote failure or empty answer falls back
// to the local catalog. Remote errors are logged, never returned.
type Adapter struct {
	remote Remote
	local  *Local
	logger logger.ILogger
}

// NewAdapter builds an adapter. remote may be nil (local only) and local may
// be nil (remote only).
func NewAdapter(remote Remote, local *Local, log logger.ILogger) *Adapter {
	if local == nil {
		local = NewLocal(nil, "")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Adapter{remote: remote, local: local, logger: log}
}

func (a *Adapter) logRemoteFailure(op string, err error, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["operation"] = op
	details["error"] = err.Error()
	details["catalog_unavailable"] = errors.Is(err, ErrCatalogUnavailable) || errors.Is(err, context.DeadlineExceeded)
	a.logger.Warn(adapterModule, "Remote catalog failed, using local fallback", details)
}

// withFallback runs the remote lookup and falls back to the local one when it
// errors or returns nothing.
func (a *Adapter) withFallback(
	ctx context.Context,
	op string,
	details map[string]interface{},
	remote func(context.Context) ([]ProductRecord, error),
	local func() []ProductRecord,
) []ProductRecord {
	ctx, span := otel.Tracer("catalog.adapter").Start(ctx, op)
	defer span.End()

	if a.remote != nil {
		records, err := remote(ctx)
		if err == nil && len(records) > 0 {
			span.SetAttributes(attribute.String("catalog.source", string(SourceRemote)), attribute.Int("catalog.count", len(records)))
			return normalizeRecords(records, SourceRemote)
		}
		if err != nil {
			a.logRemoteFailure(op, err, details)
		} else {
			a.logger.Debug(adapterModule, "Remote catalog returned nothing, using local fallback", details)
		}
	}

	records := local()
	span.SetAttributes(attribute.String("catalog.source", string(SourceLocal)), attribute.Int("catalog.count", len(records)))
	return normalizeRecords(records, SourceLocal)
}

func (a *Adapter) Search(ctx context.Context, query string, limit int) []ProductRecord {
	return a.withFallback(ctx, "catalog.search",
		map[string]interface{}{"query": query},
		func(ctx context.Context) ([]ProductRecord, error) {
			return a.remote.SearchProducts(ctx, query, limit)
		},
		func() []ProductRecord { return a.local.Search(query, limit) },
	)
}

func (a *Adapter) SearchCategory(ctx context.Context, c Category, limit int) []ProductRecord {
	return a.withFallback(ctx, "catalog.search_category",
		map[string]interface{}{"category": c.Name},
		func(ctx context.Context) ([]ProductRecord, error) {
			return a.remote.ProductsByCategory(ctx, c.ID, limit)
		},
		func() []ProductRecord { return a.local.ByCategory(c, limit) },
	)
}

func (a *Adapter) SearchPriceRange(ctx context.Context, r PriceRange, limit int) []ProductRecord {
	return a.withFallback(ctx, "catalog.search_price_range",
		map[string]interface{}{"min": r.Min, "max": r.Max},
		func(ctx context.Context) ([]ProductRecord, error) {
			return a.remote.ProductsByPriceRange(ctx, r.Min, r.Max, limit)
		},
		func() []ProductRecord { return a.local.ByPriceRange(r, limit) },
	)
}

// GetByID is remote only; nil when the shop is unreachable or the product
// does not exist.
func (a *Adapter) GetByID(ctx context.Context, id int) *ProductRecord {
	if a.remote == nil {
		return nil
	}
	rec, err := a.remote.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logRemoteFailure("catalog.get_by_id", err, map[string]interface{}{"id": id})
		}
		return nil
	}
	rec.StockStatus = NormalizeStockStatus(string(rec.StockStatus))
	rec.Source = SourceRemote
	return rec
}

func (a *Adapter) GetOrder(ctx context.Context, id int) *OrderRecord {
	if a.remote == nil {
		return nil
	}
	rec, err := a.remote.GetOrder(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logRemoteFailure("catalog.get_order", err, map[string]interface{}{"id": id})
		}
		return nil
	}
	return rec
}

func (a *Adapter) GetOrdersByPhone(ctx context.Context, phone string) []OrderRecord {
	if a.remote == nil || phone == "" {
		return nil
	}
	orders, err := a.remote.CustomerOrders(ctx, phone, "")
	if err != nil {
		a.logRemoteFailure("catalog.orders_by_phone", err, map[string]interface{}{"phone_digits": len(digitsOnly(phone))})
		return nil
	}
	return orders
}

// normalizeRecords enforces the output contract whatever the source: the
// stock status is one of the three enum values and the source is set.
func normalizeRecords(records []ProductRecord, source Source) []ProductRecord {
	out := make([]ProductRecord, len(records))
	for i, r := range records {
		switch r.StockStatus {
		case StockInStock, StockOutOfStock, StockUnknown:
		default:
			r.StockStatus = NormalizeStockStatus(string(r.StockStatus))
		}
		if r.Source == "" {
			r.Source = source
		}
		out[i] = r
	}
	return out
}
