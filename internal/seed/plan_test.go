package seed

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildPlanIsDeterministic(t *testing.T) {
	now := time.Date(2026, time.February, 19, 15, 4, 5, 0, time.UTC)

	first := BuildPlan(42, now)
	second := BuildPlan(42, now)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("plans built from the same seed differ")
	}

	shifted := BuildPlan(43, now)
	if reflect.DeepEqual(first.Orders, shifted.Orders) {
		t.Fatal("different seeds produced identical order items")
	}
}

func TestBuildPlanVolumes(t *testing.T) {
	plan := BuildPlan(1, time.Now())

	if len(plan.Sellers) != 20 {
		t.Fatalf("sellers = %d, want 20", len(plan.Sellers))
	}
	if len(plan.Customers) != 50 {
		t.Fatalf("customers = %d, want 50", len(plan.Customers))
	}
	if len(plan.Products) != 30 {
		t.Fatalf("products = %d, want 30", len(plan.Products))
	}
	if len(plan.Orders) != 100 {
		t.Fatalf("orders = %d, want 100", len(plan.Orders))
	}
}

func TestBuildPlanRotatesSellersAndCustomers(t *testing.T) {
	plan := BuildPlan(7, time.Now())

	for i, customer := range plan.Customers {
		if customer.SellerIdx != i%len(plan.Sellers) {
			t.Fatalf("customer %d SellerIdx = %d, want %d", i, customer.SellerIdx, i%len(plan.Sellers))
		}
	}
	for i, order := range plan.Orders {
		if order.SellerIdx != i%len(plan.Sellers) {
			t.Fatalf("order %d SellerIdx = %d, want %d", i, order.SellerIdx, i%len(plan.Sellers))
		}
		if order.CustomerIdx != i%len(plan.Customers) {
			t.Fatalf("order %d CustomerIdx = %d, want %d", i, order.CustomerIdx, i%len(plan.Customers))
		}
	}
}

func TestBuildPlanSpreadsOrdersOverNinetyDays(t *testing.T) {
	now := time.Date(2026, time.March, 10, 8, 30, 0, 0, time.UTC)
	today := now.Truncate(24 * time.Hour)
	plan := BuildPlan(1, now)

	if !plan.Orders[0].Date.Equal(today) {
		t.Fatalf("first order date = %v, want %v", plan.Orders[0].Date, today)
	}
	oldest := today.AddDate(0, 0, -89)
	if !plan.Orders[len(plan.Orders)-1].Date.Equal(oldest) {
		t.Fatalf("last order date = %v, want %v", plan.Orders[len(plan.Orders)-1].Date, oldest)
	}
	for i, order := range plan.Orders {
		if order.Date.After(today) || order.Date.Before(oldest) {
			t.Fatalf("order %d date %v outside [%v, %v]", i, order.Date, oldest, today)
		}
	}
}

func TestBuildPlanOrderItemsStayInRange(t *testing.T) {
	plan := BuildPlan(99, time.Now())

	for i, order := range plan.Orders {
		if len(order.Items) < 2 || len(order.Items) > 5 {
			t.Fatalf("order %d has %d items, want 2-5", i, len(order.Items))
		}
		seen := make(map[int]bool, len(order.Items))
		for _, item := range order.Items {
			if item.Quantity < 1 || item.Quantity > 10 {
				t.Fatalf("order %d quantity = %d, want 1-10", i, item.Quantity)
			}
			if item.ProductIdx < 0 || item.ProductIdx >= len(plan.Products) {
				t.Fatalf("order %d product index = %d out of range", i, item.ProductIdx)
			}
			if seen[item.ProductIdx] {
				t.Fatalf("order %d repeats product %d", i, item.ProductIdx)
			}
			seen[item.ProductIdx] = true
		}
	}
}
