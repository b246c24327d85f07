package csvimport

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/leopold/internal/shop"
)

func TestWriteCatalog_Format(t *testing.T) {
	disc := decimal.NewFromInt(350)
	toys := []shop.Toy{
		{
			Name:          `Пазли "Карта"`,
			Price:         decimal.NewFromInt(420),
			DiscountPrice: &disc,
			Category:      "puzzles",
			AgeRange:      "8+",
			Images:        []string{"a.jpg", "b.jpg"},
			Description:   "Гра, для родини",
		},
		{
			Name:     "Машинка",
			Price:    decimal.RequireFromString("99.5"),
			Category: "cars",
		},
	}

	var b strings.Builder
	if err := WriteCatalog(&b, toys); err != nil {
		t.Fatal(err)
	}

	want := "\ufeffНайменування,Ціна,Знижка,Категорія,Вік,Фото,Опис\n" +
		`"Пазли ""Карта""",420,350,"puzzles","8+","a.jpg;b.jpg","Гра, для родини"` + "\n" +
		`"Машинка",99.5,,"cars","","",""`
	if b.String() != want {
		t.Errorf("WriteCatalog() =\n%s\nwant\n%s", b.String(), want)
	}
}

func TestWriteCatalog_ReimportsSameCatalog(t *testing.T) {
	toys := shop.SeedToys()

	var b strings.Builder
	if err := WriteCatalog(&b, toys); err != nil {
		t.Fatal(err)
	}

	text, _, err := ReadSheet(strings.NewReader(b.String()), 0)
	if err != nil {
		t.Fatal(err)
	}
	batch, err := Import(Tokenize(text), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(batch.Toys) != len(toys) {
		t.Fatalf("re-imported %d toys, want %d", len(batch.Toys), len(toys))
	}

	for i, got := range batch.Toys {
		orig := toys[i]
		if got.Name != orig.Name {
			t.Errorf("[%d] name %q, want %q", i, got.Name, orig.Name)
		}
		if !got.Price.Equal(orig.Price) {
			t.Errorf("[%d] price %s, want %s", i, got.Price, orig.Price)
		}
		if !got.EffectivePrice().Equal(orig.EffectivePrice()) {
			t.Errorf("[%d] effective price %s, want %s", i, got.EffectivePrice(), orig.EffectivePrice())
		}
		if got.Category != orig.Category || got.AgeRange != orig.AgeRange || got.Description != orig.Description {
			t.Errorf("[%d] got %+v, want %+v", i, got, orig)
		}
	}

	if _, added := MergeToys(toys, batch.Toys); added != 0 {
		t.Errorf("re-import added %d duplicates", added)
	}
}
