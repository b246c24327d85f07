package core

import (
	"context"
	"testing"
	"time"

	"github.com/JonMunkholm/leopold/internal/shop"
	"github.com/JonMunkholm/leopold/internal/telegram"
)

func TestStartScheduler_RunsAndStops(t *testing.T) {
	env := newTestEnv(t, shop.Settings{TelegramToken: "tok"})
	env.sheets.text = "Назва,Ціна\nДзиґа,75\n"
	env.bot.updates = []telegram.Update{{UpdateID: 1, Message: &telegram.Message{
		MessageID: 9,
		Date:      1767261600,
		Text:      "Клієнт: Марія\nТелефон: +380631112233\n• Дзиґа (x1)\nЗАГАЛЬНА СУМА: 75 грн",
	}}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.svc.StartScheduler(ctx, SchedulerConfig{
			CatalogOnStart: true,
			OrdersInterval: 10 * time.Millisecond,
		})
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(env.svc.Orders()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	if env.sheets.calls() != 1 {
		t.Errorf("catalog synced %d times, want 1 (interval disabled)", env.sheets.calls())
	}
	if len(env.shop.Toys()) != 5 {
		t.Errorf("catalog has %d toys after startup sync", len(env.shop.Toys()))
	}
	orders := env.svc.Orders()
	if len(orders) != 1 || orders[0].ID != "tg-9" {
		t.Errorf("orders = %+v", orders)
	}
	// The imported line matches the synced catalog entry.
	if item := orders[0].Items[0]; item.Category == shop.ImportedCategoryID {
		t.Errorf("item not matched to catalog: %+v", item)
	}
}

func TestStartScheduler_SkipsUnconfiguredOrders(t *testing.T) {
	env := newTestEnv(t, shop.Settings{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	env.svc.StartScheduler(ctx, SchedulerConfig{OrdersInterval: 5 * time.Millisecond})

	if env.sheets.calls() != 0 {
		t.Error("catalog sync ran without CatalogOnStart or interval")
	}
	if len(env.svc.Orders()) != 0 {
		t.Error("orders synced without a token")
	}
}

func TestScheduledJobs_SkipWhileSlotHeld(t *testing.T) {
	env := newTestEnv(t, shop.Settings{TelegramToken: "tok"})
	env.svc.limiter = NewSyncLimiter(5 * time.Second)
	env.sheets.text = "Назва,Ціна\nДзиґа,75\n"
	env.bot.updates = []telegram.Update{{UpdateID: 1, Message: &telegram.Message{
		MessageID: 9,
		Date:      1767261600,
		Text:      "Клієнт: Марія\nТелефон: +380631112233\n• Дзиґа (x1)\nЗАГАЛЬНА СУМА: 75 грн",
	}}}

	if err := env.svc.limiter.Acquire(context.Background(), "catalog"); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	env.svc.runCatalogJob(context.Background())
	env.svc.runOrdersJob(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("jobs waited %v for a held slot", elapsed)
	}
	if env.sheets.calls() != 0 {
		t.Error("catalog fetched while another sync held the slot")
	}
	if len(env.svc.Orders()) != 0 {
		t.Error("orders synced while another sync held the slot")
	}
	if st := env.svc.SyncStatus(); st.Running != "catalog" {
		t.Errorf("held slot changed hands: %+v", st)
	}

	env.svc.limiter.Release()
	env.svc.runCatalogJob(context.Background())
	env.svc.runOrdersJob(context.Background())
	if env.sheets.calls() != 1 || len(env.svc.Orders()) != 1 {
		t.Errorf("jobs after release: fetches=%d orders=%d", env.sheets.calls(), len(env.svc.Orders()))
	}
	if env.svc.SyncStatus().Busy {
		t.Error("jobs did not release the slot")
	}
}

func TestTickerChan_Disabled(t *testing.T) {
	tk := tickerChan(0)
	defer tk.stop()
	select {
	case <-tk.c:
		t.Fatal("disabled ticker fired")
	case <-time.After(10 * time.Millisecond):
	}
}
