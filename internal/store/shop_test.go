package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/leopold/internal/shop"
)

// flakyKV wraps Memory and fails writes while failSet is true.
type flakyKV struct {
	*Memory
	failSet bool
	failKey string
}

var errWrite = errors.New("disk full")

func (f *flakyKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.failSet && (f.failKey == "" || f.failKey == key) {
		return errWrite
	}
	return f.Memory.Set(ctx, key, value, ttl)
}

func openShop(t *testing.T, kv KV) *Shop {
	t.Helper()
	s, err := Open(context.Background(), kv, shop.Settings{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestOpen_SeedsAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	s, err := Open(ctx, kv, shop.Settings{TelegramToken: " tok ", TelegramChatID: "42"})
	if err != nil {
		t.Fatal(err)
	}

	if len(s.Toys()) != 4 || len(s.Categories()) != 7 {
		t.Errorf("seeded %d toys, %d categories", len(s.Toys()), len(s.Categories()))
	}
	if got := s.Settings(); got.TelegramToken != "tok" || got.TelegramChatID != "42" {
		t.Errorf("settings = %+v", got)
	}

	raw, err := kv.Get(ctx, KeyToys)
	if err != nil {
		t.Fatalf("toys snapshot missing: %v", err)
	}
	var toys []shop.Toy
	if err := json.Unmarshal(raw, &toys); err != nil || len(toys) != 4 {
		t.Errorf("snapshot = %d toys, err %v", len(toys), err)
	}
}

func TestOpen_LoadsExistingSnapshots(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_ = kv.Set(ctx, KeyToys, []byte(`[{"id":"x","name":"Кубики","price":"10"}]`), 0)
	_ = kv.Set(ctx, KeyCategories, []byte(`[{"id":"all","name":"Всі"}]`), 0)
	_ = kv.Set(ctx, KeyToyOfTheDay, []byte(`"x"`), 0)

	s := openShop(t, kv)
	toys := s.Toys()
	if len(toys) != 1 || toys[0].Name != "Кубики" || !toys[0].Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("toys = %+v", toys)
	}
	if len(s.Categories()) != 1 {
		t.Errorf("categories = %+v", s.Categories())
	}
	if got, ok := s.ToyOfTheDay(); !ok || got.ID != "x" {
		t.Errorf("toy of the day = %+v, %v", got, ok)
	}
}

func TestOpen_CorruptSnapshot(t *testing.T) {
	kv := NewMemory()
	_ = kv.Set(context.Background(), KeyOrders, []byte(`{not json`), 0)

	if _, err := Open(context.Background(), kv, shop.Settings{}); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
}

func TestShop_ToyMutations(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, NewMemory())

	newToy := shop.Toy{ID: "new", Name: "Юла", Price: decimal.NewFromInt(50)}
	if err := s.AddToy(ctx, newToy); err != nil {
		t.Fatal(err)
	}
	if s.Toys()[0].ID != "new" {
		t.Error("AddToy must prepend")
	}

	newToy.Name = "Дзиґа"
	if err := s.UpdateToy(ctx, newToy); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Toy("new"); got.Name != "Дзиґа" {
		t.Errorf("UpdateToy: name = %q", got.Name)
	}

	if err := s.UpdateToy(ctx, shop.Toy{ID: "nope"}); !errors.Is(err, shop.ErrUnknownToy) {
		t.Errorf("UpdateToy unknown: %v", err)
	}

	if err := s.DeleteToy(ctx, "new"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Toy("new"); ok {
		t.Error("toy still present after delete")
	}
	if err := s.DeleteToy(ctx, "new"); !errors.Is(err, shop.ErrUnknownToy) {
		t.Errorf("second delete: %v", err)
	}
}

func TestShop_CategoryMutations(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, NewMemory())

	if err := s.AddCategory(ctx, shop.Category{ID: "robots", Name: "Роботи"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCategory(ctx, shop.Category{ID: "robots", Name: "again"}); !errors.Is(err, shop.ErrDuplicateCategory) {
		t.Errorf("duplicate: %v", err)
	}
	if err := s.DeleteCategory(ctx, shop.AllCategoryID); !errors.Is(err, shop.ErrProtectedCategory) {
		t.Errorf("delete all: %v", err)
	}
	if err := s.DeleteCategory(ctx, "robots"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteCategory(ctx, "robots"); !errors.Is(err, shop.ErrUnknownCategory) {
		t.Errorf("delete missing: %v", err)
	}
}

func TestShop_MergeCatalog(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	s := openShop(t, kv)

	toys := []shop.Toy{
		{ID: "sheet-1-0", Name: " велика лялька \"марічка\" "},
		{ID: "sheet-1-1", Name: "Робот"},
	}
	cats := []shop.Category{{ID: "cars", Name: "dup"}, {ID: "robots", Name: "Роботи"}}

	addedToys, addedCats, err := s.MergeCatalog(ctx, toys, cats)
	if err != nil {
		t.Fatal(err)
	}
	if addedToys != 1 || addedCats != 1 {
		t.Errorf("added %d toys, %d categories; want 1, 1", addedToys, addedCats)
	}
	all := s.Toys()
	if all[len(all)-1].Name != "Робот" {
		t.Error("merged toys must be appended")
	}

	reopened := openShop(t, kv)
	if len(reopened.Toys()) != 5 || len(reopened.Categories()) != 8 {
		t.Errorf("persisted %d toys, %d categories", len(reopened.Toys()), len(reopened.Categories()))
	}
}

func TestShop_FailedWriteLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: NewMemory()}
	s := openShop(t, kv)
	before := len(s.Toys())

	kv.failSet = true
	if err := s.AddToy(ctx, shop.Toy{ID: "x", Name: "x"}); !errors.Is(err, errWrite) {
		t.Fatalf("AddToy error = %v", err)
	}
	if len(s.Toys()) != before {
		t.Error("in-memory catalog changed after failed write")
	}
	if _, err := s.AddOrders(ctx, []shop.Order{{ID: "o"}}); err == nil {
		t.Error("AddOrders should fail")
	}
	if len(s.Orders()) != 0 {
		t.Error("orders changed after failed write")
	}
	if err := s.SaveSettings(ctx, shop.Settings{TelegramToken: "t"}); err == nil {
		t.Error("SaveSettings should fail")
	}
	if s.Settings().TelegramToken != "" {
		t.Error("settings changed after failed write")
	}
}

func TestShop_MergeCatalogRestoresToysOnCategoryFailure(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: NewMemory()}
	s := openShop(t, kv)

	kv.failSet, kv.failKey = true, KeyCategories
	_, _, err := s.MergeCatalog(ctx, []shop.Toy{{ID: "n", Name: "Новинка"}}, []shop.Category{{ID: "new", Name: "New"}})
	if !errors.Is(err, errWrite) {
		t.Fatalf("MergeCatalog error = %v", err)
	}
	if len(s.Toys()) != 4 {
		t.Errorf("in-memory toys = %d, want 4", len(s.Toys()))
	}

	kv.failSet = false
	if got := len(openShop(t, kv).Toys()); got != 4 {
		t.Errorf("persisted toys = %d, want 4", got)
	}
}

func TestShop_Orders(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, NewMemory())

	if _, err := s.AddOrders(ctx, []shop.Order{{ID: "a", Status: shop.StatusNew}}); err != nil {
		t.Fatal(err)
	}
	added, err := s.AddOrders(ctx, []shop.Order{{ID: "b", Status: shop.StatusNew}, {ID: "a"}, {ID: "c", Status: shop.StatusNew}})
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	var ids []string
	for _, o := range s.Orders() {
		ids = append(ids, o.ID)
	}
	if len(ids) != 3 || ids[0] != "b" || ids[1] != "c" || ids[2] != "a" {
		t.Errorf("order ids = %v, want [b c a]", ids)
	}
	if known := s.KnownOrderIDs(); !known["a"] || !known["c"] || known["z"] {
		t.Errorf("KnownOrderIDs = %v", known)
	}

	o, err := s.ToggleOrderStatus(ctx, "c")
	if err != nil || o.Status != shop.StatusCompleted {
		t.Errorf("toggle = %+v, %v", o, err)
	}
	if o, _ = s.ToggleOrderStatus(ctx, "c"); o.Status != shop.StatusNew {
		t.Errorf("second toggle = %q", o.Status)
	}

	if err := s.RemoveOrder(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveOrder(ctx, "b"); !errors.Is(err, shop.ErrUnknownOrder) {
		t.Errorf("remove missing: %v", err)
	}
}

func TestShop_ToyOfTheDay(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, NewMemory())

	if got, _ := s.ToyOfTheDay(); got.ID != "1" {
		t.Errorf("default = %q, want first toy", got.ID)
	}
	if err := s.SetToyOfTheDay(ctx, "3"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ToyOfTheDay(); got.ID != "3" {
		t.Errorf("after set = %q", got.ID)
	}
	if err := s.SetToyOfTheDay(ctx, "missing"); !errors.Is(err, shop.ErrUnknownToy) {
		t.Errorf("unknown id: %v", err)
	}
	if err := s.DeleteToy(ctx, "3"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ToyOfTheDay(); got.ID != "1" {
		t.Errorf("after delete = %q, want fallback", got.ID)
	}
}

func TestShop_Sessions(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, NewMemory())

	if ok, _ := s.HasSession(ctx, "abc"); ok {
		t.Error("unknown session reported active")
	}
	if err := s.RecordSession(ctx, "abc", time.Hour); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.HasSession(ctx, "abc"); !ok || err != nil {
		t.Errorf("HasSession = %v, %v", ok, err)
	}
	if err := s.EndSession(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.HasSession(ctx, "abc"); ok {
		t.Error("session active after EndSession")
	}
}

func TestShop_ReadsAreCopies(t *testing.T) {
	s := openShop(t, NewMemory())
	toys := s.Toys()
	toys[0].Name = "changed"
	toys[0].Images[0] = "changed"

	again := s.Toys()
	if again[0].Name == "changed" || again[0].Images[0] == "changed" {
		t.Error("Toys() exposes internal state")
	}
}
