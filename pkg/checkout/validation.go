package checkout

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// StockValidationInput describes one cart line and the stock its variant reports.
type StockValidationInput struct {
	ProductID   string
	ProductName string
	Size        string
	Color       string
	Available   int
	Quantity    int
}

// StockViolationDetail exposes the data returned to callers when a line cannot be filled.
type StockViolationDetail struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName,omitempty"`
	Size         string `json:"size,omitempty"`
	Color        string `json:"color,omitempty"`
	Available    int    `json:"available"`
	RequestedQty int    `json:"requested"`
}

// ValidateStock ensures every line asks for no more than its variant has in
// stock. Lines with a negative Available are skipped as unknown.
func ValidateStock(items []StockValidationInput) error {
	var violations []StockViolationDetail
	for _, item := range items {
		if item.Available < 0 {
			continue
		}
		if item.Quantity > item.Available {
			violations = append(violations, StockViolationDetail{
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				Size:         item.Size,
				Color:        item.Color,
				Available:    item.Available,
				RequestedQty: item.Quantity,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("not enough stock for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
