package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/shop"
)

// Shop owns the catalog, categories, orders, settings and toy of the day.
//
// Reads return copies. Every mutation works on a copy, writes the full
// snapshot to the KV store and only then replaces the in-memory state, so
// a failed write leaves both untouched.
type Shop struct {
	kv KV

	mu          sync.RWMutex
	toys        []shop.Toy
	categories  []shop.Category
	orders      []shop.Order
	settings    shop.Settings
	toyOfTheDay string
}

// Open loads every snapshot from kv. Missing catalog and category
// snapshots are seeded and persisted; missing settings start as
// defaultSettings.
func Open(ctx context.Context, kv KV, defaultSettings shop.Settings) (*Shop, error) {
	s := &Shop{kv: kv}

	seededToys, err := load(ctx, kv, KeyToys, &s.toys, shop.SeedToys)
	if err != nil {
		return nil, err
	}
	seededCats, err := load(ctx, kv, KeyCategories, &s.categories, shop.SeedCategories)
	if err != nil {
		return nil, err
	}
	if _, err := load(ctx, kv, KeyOrders, &s.orders, func() []shop.Order { return []shop.Order{} }); err != nil {
		return nil, err
	}
	if _, err := load(ctx, kv, KeySettings, &s.settings, defaultSettings.Trimmed); err != nil {
		return nil, err
	}
	if _, err := load(ctx, kv, KeyToyOfTheDay, &s.toyOfTheDay, func() string { return "" }); err != nil {
		return nil, err
	}

	if seededToys {
		if err := put(ctx, kv, KeyToys, s.toys); err != nil {
			return nil, err
		}
	}
	if seededCats {
		if err := put(ctx, kv, KeyCategories, s.categories); err != nil {
			return nil, err
		}
	}
	if seededToys || seededCats {
		slog.Info("seeded shop state", "toys", len(s.toys), "categories", len(s.categories))
	}
	return s, nil
}

// load decodes key into dst, or sets dst from seed when the key is missing.
func load[T any](ctx context.Context, kv KV, key string, dst *T, seed func() T) (seeded bool, err error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		*dst = seed()
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return false, nil
}

func put(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw, 0); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func cloneToys(toys []shop.Toy) []shop.Toy {
	out := make([]shop.Toy, len(toys))
	for i, t := range toys {
		out[i] = t.Clone()
	}
	return out
}

func cloneOrders(orders []shop.Order) []shop.Order {
	out := make([]shop.Order, len(orders))
	for i, o := range orders {
		c := o
		c.Items = make([]shop.CartItem, len(o.Items))
		for j, it := range o.Items {
			c.Items[j] = shop.CartItem{Toy: it.Toy.Clone(), Quantity: it.Quantity}
		}
		out[i] = c
	}
	return out
}

// Toys returns the catalog.
func (s *Shop) Toys() []shop.Toy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneToys(s.toys)
}

// Toy returns the catalog entry with id.
func (s *Shop) Toy(id string) (shop.Toy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := shop.FindToy(s.toys, id)
	return t.Clone(), ok
}

// Categories returns the persisted categories.
func (s *Shop) Categories() []shop.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shop.Category(nil), s.categories...)
}

// Orders returns all orders, newest first.
func (s *Shop) Orders() []shop.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

// KnownOrderIDs returns the set of order ids.
func (s *Shop) KnownOrderIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]bool, len(s.orders))
	for _, o := range s.orders {
		ids[o.ID] = true
	}
	return ids
}

func (s *Shop) Settings() shop.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// ToyOfTheDay returns the featured toy: the chosen one if it still exists,
// else the first catalog entry.
func (s *Shop) ToyOfTheDay() (shop.Toy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := shop.PickToyOfTheDay(s.toys, s.toyOfTheDay)
	return t.Clone(), ok
}

func (s *Shop) updateToys(ctx context.Context, fn func([]shop.Toy) ([]shop.Toy, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneToys(s.toys))
	if err != nil {
		return err
	}
	if err := put(ctx, s.kv, KeyToys, next); err != nil {
		return err
	}
	s.toys = next
	return nil
}

func (s *Shop) updateCategories(ctx context.Context, fn func([]shop.Category) ([]shop.Category, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(append([]shop.Category(nil), s.categories...))
	if err != nil {
		return err
	}
	if err := put(ctx, s.kv, KeyCategories, next); err != nil {
		return err
	}
	s.categories = next
	return nil
}

func (s *Shop) updateOrders(ctx context.Context, fn func([]shop.Order) ([]shop.Order, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneOrders(s.orders))
	if err != nil {
		return err
	}
	if err := put(ctx, s.kv, KeyOrders, next); err != nil {
		return err
	}
	s.orders = next
	return nil
}

// AddToy puts t at the front of the catalog.
func (s *Shop) AddToy(ctx context.Context, t shop.Toy) error {
	return s.updateToys(ctx, func(toys []shop.Toy) ([]shop.Toy, error) {
		return append([]shop.Toy{t.Clone()}, toys...), nil
	})
}

// UpdateToy replaces the entry with t.ID.
func (s *Shop) UpdateToy(ctx context.Context, t shop.Toy) error {
	return s.updateToys(ctx, func(toys []shop.Toy) ([]shop.Toy, error) {
		for i := range toys {
			if toys[i].ID == t.ID {
				toys[i] = t.Clone()
				return toys, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", shop.ErrUnknownToy, t.ID)
	})
}

// DeleteToy removes the entry with id.
func (s *Shop) DeleteToy(ctx context.Context, id string) error {
	return s.updateToys(ctx, func(toys []shop.Toy) ([]shop.Toy, error) {
		for i := range toys {
			if toys[i].ID == id {
				return append(toys[:i], toys[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", shop.ErrUnknownToy, id)
	})
}

// AddCategory appends c unless its id is taken.
func (s *Shop) AddCategory(ctx context.Context, c shop.Category) error {
	return s.updateCategories(ctx, func(cats []shop.Category) ([]shop.Category, error) {
		for _, existing := range cats {
			if existing.ID == c.ID {
				return nil, fmt.Errorf("%w: %s", shop.ErrDuplicateCategory, c.ID)
			}
		}
		return append(cats, c), nil
	})
}

// DeleteCategory removes the category with id. The "all" category cannot
// be removed. Entries in the category keep their category id.
func (s *Shop) DeleteCategory(ctx context.Context, id string) error {
	if id == shop.AllCategoryID {
		return fmt.Errorf("%w: %s", shop.ErrProtectedCategory, id)
	}
	return s.updateCategories(ctx, func(cats []shop.Category) ([]shop.Category, error) {
		for i := range cats {
			if cats[i].ID == id {
				return append(cats[:i], cats[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", shop.ErrUnknownCategory, id)
	})
}

// MergeCatalog merges an import batch: toys by normalized name, categories
// by id. If the category snapshot cannot be written the toy snapshot is
// restored.
func (s *Shop) MergeCatalog(ctx context.Context, toys []shop.Toy, cats []shop.Category) (addedToys, addedCats int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextToys, addedToys := csvimport.MergeToys(s.toys, toys)
	nextCats, addedCats := csvimport.MergeCategories(s.categories, cats)

	if addedToys > 0 {
		if err := put(ctx, s.kv, KeyToys, nextToys); err != nil {
			return 0, 0, err
		}
	}
	if addedCats > 0 {
		if err := put(ctx, s.kv, KeyCategories, nextCats); err != nil {
			if addedToys > 0 {
				if rbErr := put(ctx, s.kv, KeyToys, s.toys); rbErr != nil {
					slog.Error("restore toys snapshot failed", "error", rbErr)
				}
			}
			return 0, 0, err
		}
	}

	s.toys = cloneToys(nextToys)
	s.categories = nextCats
	return addedToys, addedCats, nil
}

// AddOrders puts orders, in the given order, in front of the existing ones.
// Orders whose id is already present are dropped. It returns how many were
// added.
func (s *Shop) AddOrders(ctx context.Context, orders []shop.Order) (int, error) {
	added := 0
	err := s.updateOrders(ctx, func(existing []shop.Order) ([]shop.Order, error) {
		ids := make(map[string]bool, len(existing))
		for _, o := range existing {
			ids[o.ID] = true
		}
		var fresh []shop.Order
		for _, o := range cloneOrders(orders) {
			if ids[o.ID] {
				continue
			}
			ids[o.ID] = true
			fresh = append(fresh, o)
		}
		added = len(fresh)
		return append(fresh, existing...), nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// RemoveOrder deletes the order with id.
func (s *Shop) RemoveOrder(ctx context.Context, id string) error {
	return s.updateOrders(ctx, func(orders []shop.Order) ([]shop.Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", shop.ErrUnknownOrder, id)
	})
}

// ToggleOrderStatus flips the order between new and completed and returns it.
func (s *Shop) ToggleOrderStatus(ctx context.Context, id string) (shop.Order, error) {
	var toggled shop.Order
	err := s.updateOrders(ctx, func(orders []shop.Order) ([]shop.Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				orders[i].Status = orders[i].Status.Toggle()
				toggled = orders[i]
				return orders, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", shop.ErrUnknownOrder, id)
	})
	return toggled, err
}

// SaveSettings stores trimmed bot settings.
func (s *Shop) SaveSettings(ctx context.Context, settings shop.Settings) error {
	settings = settings.Trimmed()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := put(ctx, s.kv, KeySettings, settings); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// SetToyOfTheDay features the toy with id.
func (s *Shop) SetToyOfTheDay(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := shop.FindToy(s.toys, id); !ok {
		return fmt.Errorf("%w: %s", shop.ErrUnknownToy, id)
	}
	if err := put(ctx, s.kv, KeyToyOfTheDay, id); err != nil {
		return err
	}
	s.toyOfTheDay = id
	return nil
}

// RecordSession marks an admin session as active for ttl.
func (s *Shop) RecordSession(ctx context.Context, id string, ttl time.Duration) error {
	if err := s.kv.Set(ctx, SessionKey(id), []byte("true"), ttl); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// HasSession reports whether the admin session id is active.
func (s *Shop) HasSession(ctx context.Context, id string) (bool, error) {
	_, err := s.kv.Get(ctx, SessionKey(id))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return true, nil
}

// EndSession forgets an admin session.
func (s *Shop) EndSession(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, SessionKey(id)); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
