package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/auth"
	"github.com/nmesfin/mesob/internal/orders/ports"
	"github.com/nmesfin/mesob/internal/users"
)

// Service owns the menu catalog. Reads go through the Redis cache; every
// write invalidates it and broadcasts a menu update.
type Service struct {
	store    Store
	cache    *MenuCache
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewService(store Store, cache *MenuCache, notifier ports.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// ListMenu returns every product, newest first. Cache failures degrade to
// a database read rather than failing the request.
func (s *Service) ListMenu(ctx context.Context) ([]Product, error) {
	if s.cache != nil {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WarnContext(ctx, "menu cache read failed", "error", err)
		}
	}

	products, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "list products", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, products); err != nil {
			s.logger.WarnContext(ctx, "menu cache write failed", "error", err)
		}
	}
	return products, nil
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	PriceCents  int64  `json:"price_cents" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
	Image       string `json:"image"`
	IsAvailable *bool  `json:"is_available"`
}

// CreateProduct adds a menu entry. Admin only.
func (s *Service) CreateProduct(ctx context.Context, ident auth.Identity, input ProductInput) (*Product, error) {
	if err := requireAdmin(ident); err != nil {
		return nil, err
	}

	image := strings.TrimSpace(input.Image)
	if image == "" {
		image = defaultImage(input.Name)
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	created, err := s.store.Insert(ctx, Product{
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Category:    input.Category,
		Image:       image,
		IsAvailable: available,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "create product", err)
	}

	s.afterWrite(ctx)
	return created, nil
}

// UpdateProduct rewrites a menu entry. An omitted image or availability
// flag keeps the stored value.
func (s *Service) UpdateProduct(ctx context.Context, ident auth.Identity, id string, input ProductInput) (*Product, error) {
	if err := requireAdmin(ident); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, ProductUpdate{
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Category:    input.Category,
		Image:       strings.TrimSpace(input.Image),
		IsAvailable: input.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "product not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "update product", err)
	}

	s.afterWrite(ctx)
	return updated, nil
}

// DeleteProduct removes a menu entry. Admin only.
func (s *Service) DeleteProduct(ctx context.Context, ident auth.Identity, id string) error {
	if err := requireAdmin(ident); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return apperror.New(apperror.KindNotFound, "product not found")
		}
		return apperror.Wrap(apperror.KindInternal, "delete product", err)
	}

	s.afterWrite(ctx)
	return nil
}

// Resolve returns catalog entries for the requested ids, keyed by id.
// Unknown ids are simply absent so callers can decide how to react.
func (s *Service) Resolve(ctx context.Context, ids []string) (map[string]ports.CatalogProduct, error) {
	products, err := s.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make(map[string]ports.CatalogProduct, len(products))
	for _, product := range products {
		result[product.ID] = ports.CatalogProduct{
			ID:         product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
		}
	}
	return result, nil
}

func (s *Service) afterWrite(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "menu cache invalidation failed", "error", err)
		}
	}
	s.notifier.Publish(ctx, ports.EventMenuUpdated, nil)
}

func requireAdmin(ident auth.Identity) error {
	if users.Role(ident.Role) != users.RoleAdmin {
		return apperror.New(apperror.KindAuthorization, "admin role required")
	}
	return nil
}
