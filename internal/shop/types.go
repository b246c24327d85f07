// Package shop holds the storefront domain model: catalog entries, categories,
// orders and shop settings, plus the pure rules that operate on them
// (category id derivation, effective prices, cart math, catalog queries and
// input validation).
package shop

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Prices, discounts and totals are JSON numbers on the wire and in stored
// snapshots. Decoding accepts both numbers and quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	// AllCategoryID is the sentinel category every catalog entry belongs to.
	// It is never removable.
	AllCategoryID = "all"

	// DiscountCategoryID is the virtual category of discounted entries.
	// It is synthesized for display and never persisted.
	DiscountCategoryID = "discount"

	// ImportedCategoryID marks order lines that could not be matched to the catalog.
	ImportedCategoryID = "imported"

	// DefaultToyImage is used when an entry has no images.
	DefaultToyImage = "https://placehold.co/400x400/fbbf24/ffffff?text=Leopold+Toy"

	// DefaultAgeRange is the age label given to entries without one.
	DefaultAgeRange = "3+"

	// DefaultToyName is used for imported rows with a blank name.
	DefaultToyName = "Без назви"
)

// Toy is a catalog entry.
type Toy struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Category      string           `json:"category"`
	AgeRange      string           `json:"ageRange"`
	Images        []string         `json:"images"`
	Description   string           `json:"description"`
}

// HasDiscount reports whether the entry carries a discount below its base price.
func (t Toy) HasDiscount() bool {
	return t.DiscountPrice != nil && t.DiscountPrice.IsPositive() && t.DiscountPrice.LessThan(t.Price)
}

// EffectivePrice is the price a customer pays for one unit.
func (t Toy) EffectivePrice() decimal.Decimal {
	if t.HasDiscount() {
		return *t.DiscountPrice
	}
	return t.Price
}

// MainImage returns the first image or the placeholder.
func (t Toy) MainImage() string {
	if len(t.Images) == 0 || t.Images[0] == "" {
		return DefaultToyImage
	}
	return t.Images[0]
}

// NormalizedName is the identity key used for catalog de-duplication.
func (t Toy) NormalizedName() string {
	return NormalizeName(t.Name)
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (t Toy) Clone() Toy {
	c := t
	if t.DiscountPrice != nil {
		d := *t.DiscountPrice
		c.DiscountPrice = &d
	}
	c.Images = append([]string(nil), t.Images...)
	return c
}

// NormalizeName case-folds and trims a display name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Category groups catalog entries.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// whitespaceRun matches Unicode whitespace as well as ASCII, so a
// non-breaking space in a sheet cell yields the same id as a plain one.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{feff}]+`)

// CategoryID derives a category identifier from its display name:
// lowercased, with every whitespace run replaced by a single hyphen.
func CategoryID(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusCompleted OrderStatus = "completed"
)

// Toggle flips between new and completed.
func (s OrderStatus) Toggle() OrderStatus {
	if s == StatusNew {
		return StatusCompleted
	}
	return StatusNew
}

// CartItem is a catalog snapshot with a quantity, used for cart lines and
// order line items.
type CartItem struct {
	Toy
	Quantity int `json:"quantity"`
}

// LineTotal is the effective unit price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.EffectivePrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Order is a placed or imported customer order.
type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Items         []CartItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Date          string          `json:"date"`
	Status        OrderStatus     `json:"status"`
}

// Settings holds the messaging bot credentials.
type Settings struct {
	TelegramToken  string `json:"telegramToken"`
	TelegramChatID string `json:"telegramChatId"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (s Settings) Trimmed() Settings {
	return Settings{
		TelegramToken:  strings.TrimSpace(s.TelegramToken),
		TelegramChatID: strings.TrimSpace(s.TelegramChatID),
	}
}

// CanNotify reports whether both the token and the channel are set.
func (s Settings) CanNotify() bool {
	t := s.Trimmed()
	return t.TelegramToken != "" && t.TelegramChatID != ""
}
