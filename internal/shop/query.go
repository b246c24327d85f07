package shop

import "strings"

// DefaultPageSize is the storefront page size.
const DefaultPageSize = 12

// DiscountCategoryName is the display name of the virtual discount category.
const DiscountCategoryName = "🔥 Знижки"

// CatalogQuery selects a page of the catalog.
type CatalogQuery struct {
	Category string // "all", "discount" or a category id; empty means "all"
	Search   string // case-insensitive substring of the name
	Page     int    // 1-based
	PageSize int    // DefaultPageSize when <= 0
}

// CatalogPage is one page of filtered catalog entries.
type CatalogPage struct {
	Items      []Toy `json:"items"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	Total      int   `json:"total"`
}

// Matches reports whether t passes the category and search filters.
func (q CatalogQuery) Matches(t Toy) bool {
	switch q.Category {
	case "", AllCategoryID:
	case DiscountCategoryID:
		if !t.HasDiscount() {
			return false
		}
	default:
		if t.Category != q.Category {
			return false
		}
	}
	return strings.Contains(strings.ToLower(t.Name), strings.ToLower(q.Search))
}

// FilterToys applies q to toys and returns the requested page.
// The page is clamped to the available range.
func FilterToys(toys []Toy, q CatalogQuery) CatalogPage {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	var matched []Toy
	for _, t := range toys {
		if q.Matches(t) {
			matched = append(matched, t)
		}
	}

	totalPages := (len(matched) + size - 1) / size
	page := q.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := min(start+size, len(matched))
	items := []Toy{}
	if start < end {
		items = matched[start:end]
	}

	return CatalogPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(matched),
	}
}

// DisplayCategories returns categories with the virtual discount category
// inserted at position 1 unless one is already present.
func DisplayCategories(categories []Category) []Category {
	out := make([]Category, 0, len(categories)+1)
	for _, c := range categories {
		if c.ID == DiscountCategoryID {
			return append(out, categories...)
		}
	}
	discount := Category{ID: DiscountCategoryID, Name: DiscountCategoryName}
	if len(categories) == 0 {
		return append(out, discount)
	}
	out = append(out, categories[0], discount)
	return append(out, categories[1:]...)
}

// FindToy returns the toy with id.
func FindToy(toys []Toy, id string) (Toy, bool) {
	for _, t := range toys {
		if t.ID == id {
			return t, true
		}
	}
	return Toy{}, false
}

// PickToyOfTheDay returns the toy with id, falling back to the first toy.
func PickToyOfTheDay(toys []Toy, id string) (Toy, bool) {
	if len(toys) == 0 {
		return Toy{}, false
	}
	if id != "" {
		if t, ok := FindToy(toys, id); ok {
			return t, true
		}
	}
	return toys[0], true
}
