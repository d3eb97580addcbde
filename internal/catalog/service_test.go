package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/auth"
	"github.com/nmesfin/mesob/internal/orders/ports"
)

type fakeStore struct {
	mu       sync.Mutex
	products map[string]Product
	next     int
	listErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: make(map[string]Product)}
}

func (f *fakeStore) List(context.Context) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	result := make([]Product, 0, len(f.products))
	for _, p := range f.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeStore) GetMany(_ context.Context, ids []string) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeStore) Insert(_ context.Context, product Product) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	product.ID = "prod-" + strconv.Itoa(f.next)
	f.products[product.ID] = product
	return &product, nil
}

func (f *fakeStore) Update(_ context.Context, id string, update ProductUpdate) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	existing.Name = update.Name
	existing.Description = update.Description
	existing.PriceCents = update.PriceCents
	existing.Category = update.Category
	if update.Image != "" {
		existing.Image = update.Image
	}
	if update.IsAvailable != nil {
		existing.IsAvailable = *update.IsAvailable
	}
	f.products[id] = existing
	return &existing, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type eventRecorder struct {
	events []string
}

func (e *eventRecorder) Publish(_ context.Context, event string, _ any) {
	e.events = append(e.events, event)
}

func (e *eventRecorder) PublishToRoom(_ context.Context, _, event string, _ any) {
	e.events = append(e.events, event)
}

var (
	adminIdent    = auth.Identity{UserID: "staff-1", Role: "admin"}
	customerIdent = auth.Identity{UserID: "cust-1", Role: "customer"}
)

func newTestService(t *testing.T) (*Service, *fakeStore, *MenuCache, *eventRecorder) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newFakeStore()
	cache := NewMenuCache(client, time.Minute)
	recorder := &eventRecorder{}
	service := NewService(store, cache, recorder, slog.New(slog.DiscardHandler))
	return service, store, cache, recorder
}

func validInput() ProductInput {
	return ProductInput{
		Name:        "Doro Wat",
		Description: "Slow-cooked chicken stew",
		PriceCents:  5000,
		Category:    "Mains",
	}
}

func TestCreateProduct(t *testing.T) {
	t.Run("rejects non-admin callers", func(t *testing.T) {
		service, _, _, recorder := newTestService(t)

		_, err := service.CreateProduct(context.Background(), customerIdent, validInput())
		if !apperror.IsAuthorization(err) {
			t.Fatalf("expected authorization error, got: %v", err)
		}
		if len(recorder.events) != 0 {
			t.Errorf("expected no events, got %v", recorder.events)
		}
	})

	t.Run("fills a default image and broadcasts", func(t *testing.T) {
		service, _, _, recorder := newTestService(t)

		product, err := service.CreateProduct(context.Background(), adminIdent, validInput())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if product.ID == "" {
			t.Error("expected id assigned")
		}
		if product.Image == "" {
			t.Error("expected default image")
		}
		if !product.IsAvailable {
			t.Error("expected product available by default")
		}
		if len(recorder.events) != 1 || recorder.events[0] != ports.EventMenuUpdated {
			t.Errorf("expected a menu.updated event, got %v", recorder.events)
		}
	})

	t.Run("keeps a provided image", func(t *testing.T) {
		service, _, _, _ := newTestService(t)

		input := validInput()
		input.Image = "https://example.com/doro.jpg"

		product, err := service.CreateProduct(context.Background(), adminIdent, input)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if product.Image != input.Image {
			t.Errorf("expected image kept, got %q", product.Image)
		}
	})
}

func TestListMenu(t *testing.T) {
	t.Run("populates and then serves the cache", func(t *testing.T) {
		service, store, cache, _ := newTestService(t)

		if _, err := service.CreateProduct(context.Background(), adminIdent, validInput()); err != nil {
			t.Fatalf("create: %v", err)
		}

		first, err := service.ListMenu(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if len(first) != 1 {
			t.Fatalf("expected 1 product, got %d", len(first))
		}

		if _, err := cache.Get(context.Background()); err != nil {
			t.Fatalf("expected cache populated, got: %v", err)
		}

		// serve from cache even when the store starts failing
		store.listErr = errors.New("store down")
		second, err := service.ListMenu(context.Background())
		if err != nil {
			t.Fatalf("expected cached read, got: %v", err)
		}
		if len(second) != 1 {
			t.Errorf("expected 1 cached product, got %d", len(second))
		}
	})

	t.Run("writes invalidate the cached menu", func(t *testing.T) {
		service, _, cache, _ := newTestService(t)

		created, err := service.CreateProduct(context.Background(), adminIdent, validInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := service.ListMenu(context.Background()); err != nil {
			t.Fatalf("list: %v", err)
		}

		if err := service.DeleteProduct(context.Background(), adminIdent, created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}

		if _, err := cache.Get(context.Background()); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("expected cache invalidated, got: %v", err)
		}

		products, err := service.ListMenu(context.Background())
		if err != nil {
			t.Fatalf("list after delete: %v", err)
		}
		if len(products) != 0 {
			t.Errorf("expected empty menu, got %d products", len(products))
		}
	})
}

func TestUpdateProduct(t *testing.T) {
	service, _, _, recorder := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, adminIdent, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("rewrites fields and keeps the image when omitted", func(t *testing.T) {
		input := validInput()
		input.PriceCents = 5500
		unavailable := false
		input.IsAvailable = &unavailable

		updated, err := service.UpdateProduct(ctx, adminIdent, created.ID, input)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if updated.PriceCents != 5500 {
			t.Errorf("expected price 5500, got %d", updated.PriceCents)
		}
		if updated.IsAvailable {
			t.Error("expected product marked unavailable")
		}
		if updated.Image != created.Image {
			t.Errorf("expected image kept, got %q", updated.Image)
		}
	})

	t.Run("omitted availability keeps the stored flag", func(t *testing.T) {
		// marked unavailable by the previous subtest
		input := validInput()
		input.PriceCents = 6000

		updated, err := service.UpdateProduct(ctx, adminIdent, created.ID, input)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if updated.PriceCents != 6000 {
			t.Errorf("expected price 6000, got %d", updated.PriceCents)
		}
		if updated.IsAvailable {
			t.Error("expected product to stay unavailable when the flag is omitted")
		}
	})

	t.Run("unknown product reports not found", func(t *testing.T) {
		_, err := service.UpdateProduct(ctx, adminIdent, "missing", validInput())
		if !apperror.IsNotFound(err) {
			t.Fatalf("expected not found error, got: %v", err)
		}
	})

	t.Run("rejects non-admin callers", func(t *testing.T) {
		before := len(recorder.events)
		if _, err := service.UpdateProduct(ctx, customerIdent, created.ID, validInput()); !apperror.IsAuthorization(err) {
			t.Fatalf("expected authorization error, got: %v", err)
		}
		if len(recorder.events) != before {
			t.Error("expected no events from rejected update")
		}
	})
}

func TestDeleteProduct(t *testing.T) {
	service, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, adminIdent, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.DeleteProduct(ctx, customerIdent, created.ID); !apperror.IsAuthorization(err) {
		t.Fatalf("expected authorization error, got: %v", err)
	}

	if err := service.DeleteProduct(ctx, adminIdent, created.ID); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if err := service.DeleteProduct(ctx, adminIdent, created.ID); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found error, got: %v", err)
	}
}

func TestResolve(t *testing.T) {
	service, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, adminIdent, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resolved, err := service.Resolve(ctx, []string{created.ID, "missing"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved product, got %d", len(resolved))
	}
	entry := resolved[created.ID]
	if entry.Name != "Doro Wat" || entry.PriceCents != 5000 {
		t.Errorf("unexpected resolved entry: %+v", entry)
	}
}
