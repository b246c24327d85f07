package shop

import "testing"

func TestCart_AddIncrementsExistingLine(t *testing.T) {
	var c Cart
	car := Toy{ID: "car", Price: dec("100")}
	doll := Toy{ID: "doll", Price: dec("200"), DiscountPrice: decPtr("150")}

	c.Add(car)
	c.Add(doll)
	c.Add(car)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.Count() != 3 {
		t.Errorf("Count() = %d, want 3", c.Count())
	}
	// 2*100 + 1*150
	if got := c.Total(); !got.Equal(dec("350")) {
		t.Errorf("Total() = %s, want 350", got)
	}
}

func TestCart_UpdateQuantityClampsAtOne(t *testing.T) {
	var c Cart
	c.AddQuantity(Toy{ID: "a", Price: dec("10")}, 3)

	c.UpdateQuantity("a", -10)
	if got := c.Items()[0].Quantity; got != 1 {
		t.Errorf("quantity after large negative delta = %d, want 1", got)
	}

	c.UpdateQuantity("a", 4)
	if got := c.Items()[0].Quantity; got != 5 {
		t.Errorf("quantity = %d, want 5", got)
	}

	c.UpdateQuantity("missing", 1)
	if c.Len() != 1 {
		t.Errorf("unknown id changed the cart")
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	var c Cart
	c.Add(Toy{ID: "a"})
	c.Add(Toy{ID: "b"})
	c.Add(Toy{ID: "c"})

	c.Remove("b")
	items := c.Items()
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Errorf("after Remove got %+v", items)
	}

	c.Clear()
	if c.Len() != 0 || !c.Total().IsZero() {
		t.Errorf("Clear left %d lines", c.Len())
	}
}

func TestCart_ItemsAreCopies(t *testing.T) {
	var c Cart
	c.Add(Toy{ID: "a", Images: []string{"x"}})

	items := c.Items()
	items[0].Quantity = 99
	items[0].Images[0] = "y"

	again := c.Items()
	if again[0].Quantity != 1 || again[0].Images[0] != "x" {
		t.Errorf("Items() exposes internal state: %+v", again[0])
	}
}
