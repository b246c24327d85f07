package orderparse

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/leopold/internal/shop"
)

// TestMessage is sent to check that the bot can reach the channel.
const TestMessage = "🔔 ТЕСТ ЗВ'ЯЗКУ\nМагазин \"Леопольд\" працює! Давайте жити дружньо! 🐱"

// FormatOrder renders the notification posted for a new order. ParseMessage
// reads this layout back.
func FormatOrder(o shop.Order) string {
	lines := make([]string, len(o.Items))
	for i, it := range o.Items {
		lines[i] = fmt.Sprintf("• %s (x%d)", it.Name, it.Quantity)
	}

	return fmt.Sprintf("📦 НОВЕ ЗАМОВЛЕННЯ!\n\nКлієнт: %s\nТелефон: %s\n\nТовари:\n%s\n\nЗАГАЛЬНА СУМА: %s грн",
		o.CustomerName, o.CustomerPhone, strings.Join(lines, "\n"), o.Total.String())
}
