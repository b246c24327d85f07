package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisplayTimeLayout renders order timestamps the way the shop shows them.
const DisplayTimeLayout = "02.01.2006, 15:04:05"

// DisplayTime formats t in loc for order records. A nil loc means time.Local.
func DisplayTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayTimeLayout)
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func pricePtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// SeedToys returns the catalog used on first run.
func SeedToys() []Toy {
	return []Toy{
		{
			ID:          "1",
			Name:        `Набір LEGO "Весела Ферма"`,
			Price:       price(1200),
			Category:    "lego",
			AgeRange:    "4-7",
			Images:      []string{"https://picsum.photos/seed/lego1/400/400"},
			Description: "Великий набір конструктора для розвитку дрібної моторики.",
		},
		{
			ID:            "2",
			Name:          "Радіокерований Джип 4х4",
			Price:         price(1550),
			DiscountPrice: pricePtr(1299),
			Category:      "cars",
			AgeRange:      "6-12",
			Images:        []string{"https://picsum.photos/seed/car1/400/400"},
			Description:   "Потужний позашляховик на великих колесах. Долає будь-які перешкоди!",
		},
		{
			ID:          "3",
			Name:        `Велика Лялька "Марічка"`,
			Price:       price(850),
			Category:    "dolls",
			AgeRange:    "3-6",
			Images:      []string{"https://picsum.photos/seed/doll1/400/400"},
			Description: "Інтерактивна лялька, що вміє розмовляти та співати пісні.",
		},
		{
			ID:            "4",
			Name:          `Пазли "Карта Світу" (500 ел.)`,
			Price:         price(420),
			DiscountPrice: pricePtr(350),
			Category:      "puzzles",
			AgeRange:      "8+",
			Images:        []string{"https://picsum.photos/seed/puzzle1/400/400"},
			Description:   "Пізнавальна гра для всієї родини. Вивчай географію граючись!",
		},
	}
}

// SeedCategories returns the category set used on first run.
func SeedCategories() []Category {
	return []Category{
		{ID: AllCategoryID, Name: "Всі іграшки"},
		{ID: "lego", Name: "LEGO та конструктори"},
		{ID: "cars", Name: "Машинки та роботи"},
		{ID: "dolls", Name: "Ляльки та будиночки"},
		{ID: "puzzles", Name: "Пазли"},
		{ID: "educational", Name: "Навчання та розвиток"},
		{ID: "soft-toys", Name: "М’які іграшки"},
	}
}
