package orderparse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/leopold/internal/shop"
)

var kyiv = time.FixedZone("Kyiv", 3*60*60)

const sampleText = "📦 НОВЕ ЗАМОВЛЕННЯ!\n\nКлієнт: Іван\nТелефон: +380501234567\n\nТовари:\n• Машинка (x2)\n\nЗАГАЛЬНА СУМА: 900 грн"

func TestExtract_SampleOrder(t *testing.T) {
	msgs := []Message{{ID: 77, Date: 1767261600, Text: sampleText}}

	orders := Extract(msgs, nil, nil, Options{Location: kyiv})
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}

	o := orders[0]
	if o.ID != "tg-77" {
		t.Errorf("ID = %q", o.ID)
	}
	if o.CustomerName != "Іван" || o.CustomerPhone != "+380501234567" {
		t.Errorf("customer = %q / %q", o.CustomerName, o.CustomerPhone)
	}
	if !o.Total.Equal(decimal.NewFromInt(900)) {
		t.Errorf("Total = %s, want 900", o.Total)
	}
	if o.Status != shop.StatusNew {
		t.Errorf("Status = %q", o.Status)
	}
	// 2026-01-01 10:00 UTC
	if o.Date != "01.01.2026, 13:00:00" {
		t.Errorf("Date = %q", o.Date)
	}
	if len(o.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(o.Items))
	}
	it := o.Items[0]
	if it.Name != "Машинка" || it.Quantity != 2 {
		t.Errorf("item = %q x%d", it.Name, it.Quantity)
	}
	if it.Category != shop.ImportedCategoryID || !it.Price.IsZero() || it.ID != "tg-item-0" {
		t.Errorf("unmatched item = %+v", it.Toy)
	}
	if len(it.Images) != 1 || it.Images[0] != shop.DefaultToyImage {
		t.Errorf("unmatched item images = %v", it.Images)
	}
}

func TestExtract_SkipsNonOrders(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing total", "Клієнт: Іван\nТелефон: +380501234567\n• Машинка (x2)"},
		{"missing phone", "Клієнт: Іван\nЗАГАЛЬНА СУМА: 900"},
		{"missing customer", "Телефон: +380501234567\nЗАГАЛЬНА СУМА: 900"},
		{"non-numeric total", "Клієнт: Іван\nТелефон: 1\nЗАГАЛЬНА СУМА: багато"},
		{"chatter", "Привіт!"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := Extract([]Message{{ID: 1, Date: 1, Text: tt.text}}, nil, nil, Options{})
			if len(orders) != 0 {
				t.Errorf("got %d orders, want 0", len(orders))
			}
		})
	}
}

func TestExtract_KnownAndRepeatedIDs(t *testing.T) {
	msgs := []Message{
		{ID: 1, Text: sampleText},
		{ID: 2, Text: sampleText},
		{ID: 2, Text: sampleText},
		{ID: 3, Text: "hello"},
		{ID: 4, Text: sampleText},
	}
	known := map[string]bool{"tg-1": true}

	orders := Extract(msgs, known, nil, Options{Now: time.Unix(0, 0)})

	var ids []string
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	if len(ids) != 2 || ids[0] != "tg-2" || ids[1] != "tg-4" {
		t.Errorf("ids = %v, want [tg-2 tg-4]", ids)
	}
	if len(known) != 1 {
		t.Error("known set was modified")
	}
}

func TestExtract_FallsBackToDateForID(t *testing.T) {
	orders := Extract([]Message{{Date: 1700000000, Text: sampleText}}, nil, nil, Options{})
	if len(orders) != 1 || orders[0].ID != "tg-1700000000" {
		t.Errorf("got %+v", orders)
	}
}

func TestExtract_MissingDateUsesNow(t *testing.T) {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	orders := Extract([]Message{{ID: 9, Text: sampleText}}, nil, nil, Options{Now: now, Location: time.UTC})
	if orders[0].Date != "03.02.2026, 04:05:06" {
		t.Errorf("Date = %q", orders[0].Date)
	}
}

func TestParseMessage_CatalogMatch(t *testing.T) {
	disc := decimal.NewFromInt(1299)
	catalog := []shop.Toy{
		{ID: "1", Name: "Набір LEGO", Price: decimal.NewFromInt(1200), Category: "lego"},
		{ID: "2", Name: "Радіокерований Джип 4х4", Price: decimal.NewFromInt(1550), DiscountPrice: &disc, Category: "cars", AgeRange: "6-12"},
	}
	text := "Клієнт:  Олена \nТелефон: +380671112233\n" +
		"• джип (x3)\n" +
		"• Невідома річ\n" +
		"ЗАГАЛЬНА СУМА: 3897 грн"

	order, ok := ParseMessage(Message{ID: 5, Date: 1, Text: text}, catalog, Options{})
	if !ok {
		t.Fatal("message not recognized")
	}
	if order.CustomerName != "Олена" {
		t.Errorf("CustomerName = %q", order.CustomerName)
	}
	if len(order.Items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(order.Items), order.Items)
	}

	jeep := order.Items[0]
	if jeep.ID != "2" || jeep.Name != "джип" || jeep.Quantity != 3 {
		t.Errorf("matched line = %q %q x%d", jeep.ID, jeep.Name, jeep.Quantity)
	}
	if !jeep.Price.Equal(decimal.NewFromInt(1550)) || jeep.DiscountPrice == nil || jeep.AgeRange != "6-12" {
		t.Errorf("catalog fields not copied: %+v", jeep.Toy)
	}
	if catalog[1].Name != "Радіокерований Джип 4х4" {
		t.Error("catalog entry modified")
	}

	other := order.Items[1]
	if other.Quantity != 1 || other.ID != "tg-item-1" || other.AgeRange != "any" {
		t.Errorf("unmatched line = %+v", other)
	}
	if !order.Total.Equal(decimal.NewFromInt(3897)) {
		t.Errorf("Total = %s", order.Total)
	}
}

func TestFormatOrder_RoundTrip(t *testing.T) {
	o := shop.Order{
		CustomerName:  "Марія",
		CustomerPhone: "+380931234567",
		Items: []shop.CartItem{
			{Toy: shop.Toy{Name: "Лялька"}, Quantity: 1},
			{Toy: shop.Toy{Name: "Пазли"}, Quantity: 4},
		},
		Total: decimal.NewFromInt(2300),
	}

	text := FormatOrder(o)
	want := "📦 НОВЕ ЗАМОВЛЕННЯ!\n\nКлієнт: Марія\nТелефон: +380931234567\n\nТовари:\n• Лялька (x1)\n• Пазли (x4)\n\nЗАГАЛЬНА СУМА: 2300 грн"
	if text != want {
		t.Errorf("FormatOrder() =\n%s\nwant\n%s", text, want)
	}

	got, ok := ParseMessage(Message{ID: 10, Date: 1, Text: text}, nil, Options{})
	if !ok {
		t.Fatal("formatted order not recognized")
	}
	if got.CustomerName != o.CustomerName || got.CustomerPhone != o.CustomerPhone || !got.Total.Equal(o.Total) {
		t.Errorf("round trip = %+v", got)
	}
	if len(got.Items) != 2 || got.Items[1].Name != "Пазли" || got.Items[1].Quantity != 4 {
		t.Errorf("items = %+v", got.Items)
	}
}
