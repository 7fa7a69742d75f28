package vending

import "testing"

func TestEventKindsAndSources(t *testing.T) {
	sale := NewSaleEvent("m-1", 2)
	if sale.Kind() != KindSale || sale.SourceID() != "m-1" || sale.Quantity != 2 {
		t.Fatalf("unexpected sale event: %+v", sale)
	}

	refill := NewRefillEvent("m-2", 3)
	if refill.Kind() != KindRefill || refill.SourceID() != "m-2" || refill.Quantity != 3 {
		t.Fatalf("unexpected refill event: %+v", refill)
	}

	check := NewStockCheckEvent("m-3", LevelLow)
	if check.Kind() != KindCheck || check.SourceID() != "m-3" || check.Level != LevelLow {
		t.Fatalf("unexpected check event: %+v", check)
	}
}
