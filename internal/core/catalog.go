package core

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/logging"
	"github.com/JonMunkholm/leopold/internal/shop"
)

// CatalogSyncResult summarizes one catalog sync.
type CatalogSyncResult struct {
	SyncID          string `json:"syncId"`
	Rows            int    `json:"rows"`
	Imported        int    `json:"imported"`
	Skipped         int    `json:"skipped"`
	AddedToys       int    `json:"addedToys"`
	AddedCategories int    `json:"addedCategories"`
	DurationMs      int64  `json:"durationMs"`
}

// SyncCatalog downloads the sheet at url (the configured sheet when empty),
// imports it and merges new entries and categories into the catalog. On
// any failure the catalog is unchanged.
func (s *Service) SyncCatalog(ctx context.Context, url string) (CatalogSyncResult, error) {
	if err := s.limiter.Acquire(ctx, "catalog"); err != nil {
		return CatalogSyncResult{}, err
	}
	defer s.limiter.Release()

	return s.syncCatalog(ctx, url)
}

// syncCatalog runs a catalog sync. The caller holds the sync slot.
func (s *Service) syncCatalog(ctx context.Context, url string) (CatalogSyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, SyncTimeout)
	defer cancel()

	result := CatalogSyncResult{SyncID: uuid.NewString()}
	ctx, log := logging.WithFields(ctx, "sync_id", result.SyncID, "source", "sheet")
	start := time.Now()
	log.Info("catalog sync started")

	text, err := s.sheets.Fetch(ctx, url)
	if err != nil {
		log.Warn("catalog sync failed", "stage", "fetch", "error", err)
		return result, fmt.Errorf("fetch sheet: %w", err)
	}

	rows := csvimport.Tokenize(text)
	batch, err := csvimport.Import(rows, csvimport.Options{Keywords: s.keywords, Now: s.now()})
	if err != nil {
		log.Warn("catalog sync failed", "stage", "import", "rows", len(rows), "error", err)
		return result, fmt.Errorf("import sheet: %w", err)
	}
	result.Rows = len(rows) - 1
	result.Imported = len(batch.Toys)
	result.Skipped = batch.Skipped

	result.AddedToys, result.AddedCategories, err = s.shop.MergeCatalog(ctx, batch.Toys, batch.Categories)
	if err != nil {
		log.Error("catalog sync failed", "stage", "merge", "error", err)
		return result, fmt.Errorf("merge catalog: %w", err)
	}

	result.DurationMs = time.Since(start).Milliseconds()
	log.Info("catalog sync completed",
		"rows", result.Rows,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"added_toys", result.AddedToys,
		"added_categories", result.AddedCategories,
		"columns", columnsAttr(batch.Columns),
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

func columnsAttr(cols csvimport.ColumnMap) string {
	parts := make([]string, 0, len(cols))
	for _, role := range csvimport.Roles {
		if cols.Has(role) {
			parts = append(parts, fmt.Sprintf("%s=%d", role, cols[role]))
		}
	}
	return strings.Join(parts, ",")
}

// ListToys returns one page of the catalog.
func (s *Service) ListToys(q shop.CatalogQuery) shop.CatalogPage {
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	return shop.FilterToys(s.shop.Toys(), q)
}

// Toy returns the catalog entry with id.
func (s *Service) Toy(id string) (shop.Toy, error) {
	t, ok := s.shop.Toy(id)
	if !ok {
		return shop.Toy{}, fmt.Errorf("%w: %s", shop.ErrUnknownToy, id)
	}
	return t, nil
}

// Categories returns the display category list, including the virtual
// discount category.
func (s *Service) Categories() []shop.Category {
	return shop.DisplayCategories(s.shop.Categories())
}

// ToyOfTheDay returns the featured toy. ok is false for an empty catalog.
func (s *Service) ToyOfTheDay() (shop.Toy, bool) {
	return s.shop.ToyOfTheDay()
}

// SetToyOfTheDay features the toy with id.
func (s *Service) SetToyOfTheDay(ctx context.Context, id string) error {
	if err := s.shop.SetToyOfTheDay(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("toy of the day set", "toy_id", id)
	return nil
}

// AddToy creates a catalog entry from manual input and puts it first.
func (s *Service) AddToy(ctx context.Context, in shop.ToyInput) (shop.Toy, error) {
	t, err := in.Build(strconv.FormatInt(s.nextID(), 10))
	if err != nil {
		return shop.Toy{}, err
	}
	if err := s.shop.AddToy(ctx, t); err != nil {
		return shop.Toy{}, err
	}
	logging.FromContext(ctx).Info("toy added", "toy_id", t.ID, "name", t.Name)
	return t, nil
}

// UpdateToy replaces the entry with id by the manual input.
func (s *Service) UpdateToy(ctx context.Context, id string, in shop.ToyInput) (shop.Toy, error) {
	if _, err := s.Toy(id); err != nil {
		return shop.Toy{}, err
	}
	t, err := in.Build(id)
	if err != nil {
		return shop.Toy{}, err
	}
	if err := s.shop.UpdateToy(ctx, t); err != nil {
		return shop.Toy{}, err
	}
	logging.FromContext(ctx).Info("toy updated", "toy_id", id)
	return t, nil
}

// DeleteToy removes the entry with id.
func (s *Service) DeleteToy(ctx context.Context, id string) error {
	if err := s.shop.DeleteToy(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("toy deleted", "toy_id", id)
	return nil
}

// AddCategory creates a category whose id is derived from name.
func (s *Service) AddCategory(ctx context.Context, name string) (shop.Category, error) {
	if errs := shop.ValidateCategoryName(name); len(errs) > 0 {
		return shop.Category{}, errs
	}
	name = strings.TrimSpace(name)
	c := shop.Category{ID: shop.CategoryID(name), Name: name}
	if err := s.shop.AddCategory(ctx, c); err != nil {
		return shop.Category{}, err
	}
	logging.FromContext(ctx).Info("category added", "category_id", c.ID)
	return c, nil
}

// DeleteCategory removes a category. Entries keep their category id.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.shop.DeleteCategory(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("category deleted", "category_id", id)
	return nil
}

// ExportCatalog writes the catalog as CSV to w.
func (s *Service) ExportCatalog(ctx context.Context, w io.Writer) error {
	toys := s.shop.Toys()
	if err := csvimport.WriteCatalog(w, toys); err != nil {
		return fmt.Errorf("export catalog: %w", err)
	}
	logging.FromContext(ctx).Info("catalog exported", "toys", len(toys))
	return nil
}
