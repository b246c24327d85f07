package csvimport

import (
	"io"
	"strings"

	"github.com/JonMunkholm/leopold/internal/shop"
)

// ExportFileName is the download name of a catalog export.
const ExportFileName = "inventory.csv"

const utf8BOM = "\ufeff"

// exportHeader names the columns so that ResolveHeaders maps them back to
// the same roles.
var exportHeader = []string{"Найменування", "Ціна", "Знижка", "Категорія", "Вік", "Фото", "Опис"}

// WriteCatalog writes toys as a BOM-prefixed CSV snapshot. Prices are bare
// numbers; every text column is quoted. Rows are separated by "\n" with no
// trailing newline.
func WriteCatalog(w io.Writer, toys []shop.Toy) error {
	var b strings.Builder
	b.WriteString(utf8BOM)
	b.WriteString(strings.Join(exportHeader, ","))

	for _, t := range toys {
		discount := ""
		if t.DiscountPrice != nil {
			discount = t.DiscountPrice.String()
		}
		fields := []string{
			quote(t.Name),
			t.Price.String(),
			discount,
			quote(t.Category),
			quote(t.AgeRange),
			quote(strings.Join(t.Images, ";")),
			quote(t.Description),
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(fields, ","))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
