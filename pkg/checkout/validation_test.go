package checkout

import (
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func TestValidateStock_NoViolations(t *testing.T) {
	items := []StockValidationInput{
		{
			ProductID:   "p1",
			ProductName: "Unknown Stock Product",
			Available:   -1,
			Quantity:    9,
		},
		{
			ProductID:   "p2",
			ProductName: "Exact Stock Product",
			Size:        "M",
			Available:   2,
			Quantity:    2,
		},
	}
	if err := ValidateStock(items); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStock_Violations(t *testing.T) {
	violationItems := []StockValidationInput{
		{
			ProductID:   "p3",
			ProductName: "Shortfall Product",
			Size:        "L",
			Color:       "Red",
			Available:   3,
			Quantity:    5,
		},
		{
			ProductID:   "p4",
			ProductName: "Sold Out Product",
			Available:   0,
			Quantity:    1,
		},
	}
	err := ValidateStock(violationItems)
	if err == nil {
		t.Fatal("expected error for stock violation")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected pkgerrors.Error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected code %s, got %s", pkgerrors.CodeConflict, typed.Code())
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	rawViolations, ok := details["violations"].([]StockViolationDetail)
	if !ok {
		t.Fatalf("expected violations slice, got %T", details["violations"])
	}
	if len(rawViolations) != len(violationItems) {
		t.Fatalf("expected %d violations, got %d", len(violationItems), len(rawViolations))
	}
	for i, violation := range rawViolations {
		input := violationItems[i]
		if violation.ProductID != input.ProductID {
			t.Fatalf("expected product id %s, got %s", input.ProductID, violation.ProductID)
		}
		if violation.Available != input.Available {
			t.Fatalf("expected available %d, got %d", input.Available, violation.Available)
		}
		if violation.RequestedQty != input.Quantity {
			t.Fatalf("expected requested qty %d, got %d", input.Quantity, violation.RequestedQty)
		}
	}
}
