// Package orderparse rebuilds orders from the text of order-notification
// messages posted by the shop bot, and renders that text for new orders.
//
// Extraction is best effort. A message that lacks the customer, phone or
// total field is not an order and is skipped; nothing in here returns an
// error for malformed input.
package orderparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/leopold/internal/shop"
)

// IDPrefix tags orders recovered from bot messages.
const IDPrefix = "tg-"

// Extraction rules. Each one captures a single field from the message text.
var (
	// customerPattern captures the rest of the "Клієнт:" line.
	customerPattern = regexp.MustCompile(`(?i)Клієнт:\s*(.*)`)

	// phonePattern captures the rest of the "Телефон:" line.
	phonePattern = regexp.MustCompile(`(?i)Телефон:\s*(.*)`)

	// totalPattern captures the digits after "ЗАГАЛЬНА СУМА:".
	totalPattern = regexp.MustCompile(`(?i)ЗАГАЛЬНА СУМА:\s*(\d+)`)

	// itemPattern matches one bullet line; the capture is the item text.
	itemPattern = regexp.MustCompile(`•\s*(.*)`)

	// quantityPattern captures the number after an "x" marker in an item line.
	quantityPattern = regexp.MustCompile(`x(\d+)`)
)

// Message is the part of an upstream chat message the extractor reads.
type Message struct {
	ID   int64  // upstream message id; 0 when absent
	Date int64  // unix seconds; 0 when absent
	Text string
}

// OrderID is the identifier an order recovered from msg receives.
func (m Message) OrderID() string {
	if m.ID != 0 {
		return IDPrefix + strconv.FormatInt(m.ID, 10)
	}
	return IDPrefix + strconv.FormatInt(m.Date, 10)
}

// Options carries the clock and display zone for order dates.
type Options struct {
	Now      time.Time      // used when a message has no date; zero means time.Now
	Location *time.Location // nil means time.Local
}

// ParseMessage reads one message. ok is false when the message is not an
// order notification.
func ParseMessage(msg Message, catalog []shop.Toy, opts Options) (order shop.Order, ok bool) {
	name := customerPattern.FindStringSubmatch(msg.Text)
	phone := phonePattern.FindStringSubmatch(msg.Text)
	total := totalPattern.FindStringSubmatch(msg.Text)
	if name == nil || phone == nil || total == nil {
		return shop.Order{}, false
	}

	amount, err := decimal.NewFromString(total[1])
	if err != nil {
		return shop.Order{}, false
	}

	when := opts.Now
	if msg.Date != 0 {
		when = time.Unix(msg.Date, 0)
	} else if when.IsZero() {
		when = time.Now()
	}

	return shop.Order{
		ID:            msg.OrderID(),
		CustomerName:  strings.TrimSpace(name[1]),
		CustomerPhone: strings.TrimSpace(phone[1]),
		Items:         parseItems(msg.Text, catalog),
		Total:         amount,
		Date:          shop.DisplayTime(when, opts.Location),
		Status:        shop.StatusNew,
	}, true
}

// Extract returns the orders found in msgs whose ids are not in known, in
// message order. Neither msgs nor known is modified; an id seen twice in
// msgs yields one order.
func Extract(msgs []Message, known map[string]bool, catalog []shop.Toy, opts Options) []shop.Order {
	seen := make(map[string]bool, len(msgs))
	var orders []shop.Order

	for _, msg := range msgs {
		if msg.Text == "" {
			continue
		}
		id := msg.OrderID()
		if known[id] || seen[id] {
			continue
		}
		order, ok := ParseMessage(msg, catalog, opts)
		if !ok {
			continue
		}
		seen[id] = true
		orders = append(orders, order)
	}
	return orders
}

func parseItems(text string, catalog []shop.Toy) []shop.CartItem {
	var items []shop.CartItem
	for idx, line := range itemPattern.FindAllStringSubmatch(text, -1) {
		raw := line[1]
		name := strings.TrimSpace(strings.SplitN(raw, "(", 2)[0])
		if name == "" {
			continue
		}

		qty := 1
		if m := quantityPattern.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				qty = n
			}
		}

		items = append(items, shop.CartItem{Toy: matchToy(name, idx, catalog), Quantity: qty})
	}
	return items
}

// matchToy copies the first catalog entry whose name contains name. The
// line keeps the name from the message.
func matchToy(name string, idx int, catalog []shop.Toy) shop.Toy {
	needle := strings.ToLower(name)
	for _, t := range catalog {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			found := t.Clone()
			found.Name = name
			return found
		}
	}
	return shop.Toy{
		ID:       fmt.Sprintf("%sitem-%d", IDPrefix, idx),
		Name:     name,
		Price:    decimal.Zero,
		Category: shop.ImportedCategoryID,
		AgeRange: "any",
		Images:   []string{shop.DefaultToyImage},
	}
}
