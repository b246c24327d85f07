package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/leopold/internal/logging"
	"github.com/JonMunkholm/leopold/internal/orderparse"
	"github.com/JonMunkholm/leopold/internal/shop"
	"github.com/JonMunkholm/leopold/internal/telegram"
)

// PlaceOrder validates a checkout, records the order and, when the bot is
// configured, posts a notification in the background. Notification
// failures are logged and never affect the result.
func (s *Service) PlaceOrder(ctx context.Context, in shop.CheckoutInput) (shop.Order, error) {
	if errs := shop.ValidateCheckout(in); len(errs) > 0 {
		return shop.Order{}, errs
	}

	var cart shop.Cart
	var errs shop.ValidationErrors
	for i, line := range in.Lines {
		t, ok := s.shop.Toy(strings.TrimSpace(line.ToyID))
		if !ok {
			errs = append(errs, shop.ValidationError{
				Field:   fmt.Sprintf("items[%d].toyId", i),
				Value:   line.ToyID,
				Message: "toy is no longer available",
			})
			continue
		}
		cart.AddQuantity(t, line.Quantity)
	}
	if len(errs) > 0 {
		return shop.Order{}, errs
	}

	id := s.nextID()
	order := shop.Order{
		ID:            "ord-" + strconv.FormatInt(id, 10),
		CustomerName:  strings.TrimSpace(in.Name),
		CustomerPhone: strings.TrimSpace(in.Phone),
		Items:         cart.Items(),
		Total:         cart.Total(),
		Date:          shop.DisplayTime(time.UnixMilli(id), s.location),
		Status:        shop.StatusNew,
	}

	if _, err := s.shop.AddOrders(ctx, []shop.Order{order}); err != nil {
		return shop.Order{}, fmt.Errorf("save order: %w", err)
	}

	log := logging.FromContext(ctx)
	log.Info("order placed", append([]any{
		"order_id", order.ID,
		"items", cart.Count(),
		"total", order.Total.String(),
	}, clientAttrs(ctx)...)...)

	s.notify(ctx, order)
	return order, nil
}

// notify posts the order to the configured channel in a goroutine.
func (s *Service) notify(ctx context.Context, order shop.Order) {
	settings := s.shop.Settings()
	if !settings.CanNotify() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		defer cancel()

		err := s.bot.SendMessage(ctx, settings.TelegramToken, settings.TelegramChatID, orderparse.FormatOrder(order))
		if err != nil {
			logging.FromContext(ctx).Warn("order notification failed", "order_id", order.ID, "error", err)
			return
		}
		logging.FromContext(ctx).Debug("order notification sent", "order_id", order.ID)
	}()
}

// OrderSyncResult summarizes one order sync.
type OrderSyncResult struct {
	SyncID     string `json:"syncId"`
	Updates    int    `json:"updates"`
	Found      int    `json:"found"`
	Added      int    `json:"added"`
	DurationMs int64  `json:"durationMs"`
}

// SyncOrders reads recent bot history and adds the order notifications it
// has not seen before, newest batch first.
func (s *Service) SyncOrders(ctx context.Context) (OrderSyncResult, error) {
	settings := s.shop.Settings()
	if settings.TelegramToken == "" {
		return OrderSyncResult{}, fmt.Errorf("sync orders: %w", telegram.ErrNotConfigured)
	}

	if err := s.limiter.Acquire(ctx, "orders"); err != nil {
		return OrderSyncResult{}, err
	}
	defer s.limiter.Release()

	return s.syncOrders(ctx, settings.TelegramToken)
}

// syncOrders runs an order sync with token. The caller holds the sync slot.
func (s *Service) syncOrders(ctx context.Context, token string) (OrderSyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, SyncTimeout)
	defer cancel()

	result := OrderSyncResult{SyncID: uuid.NewString()}
	ctx, log := logging.WithFields(ctx, "sync_id", result.SyncID, "source", "telegram")
	start := time.Now()
	log.Info("order sync started")

	updates, err := s.bot.GetUpdates(ctx, token)
	if err != nil {
		log.Warn("order sync failed", "stage", "fetch", "error", err)
		return result, fmt.Errorf("fetch updates: %w", err)
	}
	result.Updates = len(updates)

	msgs := make([]orderparse.Message, 0, len(updates))
	for _, u := range updates {
		if p := u.Post(); p != nil {
			msgs = append(msgs, orderparse.Message{ID: p.MessageID, Date: p.Date, Text: p.Text})
		}
	}

	orders := orderparse.Extract(msgs, s.shop.KnownOrderIDs(), s.shop.Toys(), orderparse.Options{
		Now:      s.now(),
		Location: s.location,
	})
	result.Found = len(orders)

	if len(orders) > 0 {
		result.Added, err = s.shop.AddOrders(ctx, orders)
		if err != nil {
			log.Error("order sync failed", "stage", "save", "error", err)
			return result, fmt.Errorf("save orders: %w", err)
		}
	}

	result.DurationMs = time.Since(start).Milliseconds()
	log.Info("order sync completed",
		"updates", result.Updates,
		"found", result.Found,
		"added", result.Added,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// Orders returns all orders, newest first.
func (s *Service) Orders() []shop.Order {
	return s.shop.Orders()
}

// RemoveOrder deletes the order with id.
func (s *Service) RemoveOrder(ctx context.Context, id string) error {
	if err := s.shop.RemoveOrder(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("order removed", "order_id", id)
	return nil
}

// ToggleOrderStatus flips an order between new and completed.
func (s *Service) ToggleOrderStatus(ctx context.Context, id string) (shop.Order, error) {
	o, err := s.shop.ToggleOrderStatus(ctx, id)
	if err != nil {
		return shop.Order{}, err
	}
	logging.FromContext(ctx).Info("order status changed", "order_id", id, "status", o.Status)
	return o, nil
}
