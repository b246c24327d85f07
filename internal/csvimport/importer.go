package csvimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/leopold/internal/shop"
)

var (
	// ErrTooFewRows means the source has no data row after the header.
	ErrTooFewRows = errors.New("csv source needs a header row and at least one data row")

	// ErrMissingColumns means the header row resolves no name or no price column.
	ErrMissingColumns = errors.New("csv source has no name or price column")
)

// Options controls an import run.
type Options struct {
	// Keywords resolves header roles. Nil means DefaultKeywordTable.
	Keywords KeywordTable

	// Now stamps generated identifiers. Zero means time.Now.
	Now time.Time
}

// Batch is the result of importing one sheet. It is not merged into anything.
type Batch struct {
	Toys       []shop.Toy
	Categories []shop.Category

	// Columns is the resolved header mapping, for logging.
	Columns ColumnMap

	// Skipped counts data rows with no content.
	Skipped int
}

// Import normalizes tokenized rows into catalog entries and the categories
// they introduce. The first row is the header.
//
// Identifiers are unique per batch (sheet-<unix millis>-<row>) and never
// derived from content. Categories are returned once per derived id, in
// order of first appearance; the "all" category is never returned.
func Import(rows [][]string, opts Options) (Batch, error) {
	if len(rows) < 2 {
		return Batch{}, fmt.Errorf("%w: got %d rows", ErrTooFewRows, len(rows))
	}

	kw := opts.Keywords
	if kw == nil {
		kw = DefaultKeywordTable()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cols := ResolveHeaders(rows[0], kw)
	if !cols.Has(RoleName) || !cols.Has(RolePrice) {
		return Batch{}, fmt.Errorf("%w: headers %q", ErrMissingColumns, rows[0])
	}

	batch := Batch{Columns: cols}
	seen := make(map[string]bool)
	stamp := now.UnixMilli()

	for i, row := range rows[1:] {
		if blankRow(row) {
			batch.Skipped++
			continue
		}

		toy := rowToToy(row, cols)
		toy.ID = fmt.Sprintf("sheet-%d-%d", stamp, i)

		if toy.Category != shop.AllCategoryID && !seen[toy.Category] {
			seen[toy.Category] = true
			batch.Categories = append(batch.Categories, shop.Category{
				ID:   toy.Category,
				Name: strings.TrimSpace(cols.Value(row, RoleCategory)),
			})
		}
		batch.Toys = append(batch.Toys, toy)
	}

	return batch, nil
}

func rowToToy(row []string, cols ColumnMap) shop.Toy {
	name := cols.Value(row, RoleName)
	if name == "" {
		name = shop.DefaultToyName
	}

	category := shop.AllCategoryID
	if v := strings.TrimSpace(cols.Value(row, RoleCategory)); v != "" {
		category = shop.CategoryID(v)
	}

	toy := shop.Toy{
		Name:        name,
		Price:       ParsePrice(cols.Value(row, RolePrice)),
		Category:    category,
		AgeRange:    cols.Value(row, RoleAge),
		Images:      splitImages(cols.Value(row, RoleImages)),
		Description: cols.Value(row, RoleDescription),
	}

	if raw := cols.Value(row, RoleDiscount); raw != "" {
		d := ParsePrice(raw)
		toy.DiscountPrice = &d
		if !toy.HasDiscount() {
			toy.DiscountPrice = nil
		}
	}
	if toy.AgeRange == "" {
		toy.AgeRange = shop.DefaultAgeRange
	}
	if toy.Description == "" {
		toy.Description = name
	}
	return toy
}

func splitImages(cell string) []string {
	var images []string
	for _, part := range strings.Split(cell, ";") {
		if part = strings.TrimSpace(part); part != "" {
			images = append(images, part)
		}
	}
	if len(images) == 0 {
		return []string{shop.DefaultToyImage}
	}
	return images
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
