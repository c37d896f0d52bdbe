package catalog

import (
	"fmt"

	"storefront/internal/models"
)

type saleUpdateInput struct {
	Price     *float64
	OnSale    *bool
	SalePrice *float64
}

type saleUpdateResult struct {
	Price        float64
	OnSale       bool
	SalePrice    *float64
	SetOnSale    bool
	SetSalePrice bool
}

// IsOnSale reports whether the sale price drives pricing. A stale sale price
// on a product that is not on sale is ignored, as is a zero sale price.
func IsOnSale(p models.Product) bool {
	return p.OnSale && p.SalePrice != nil && *p.SalePrice > 0
}

// UnitPrice is the price a buyer pays for one unit right now.
func UnitPrice(p models.Product) float64 {
	if IsOnSale(p) {
		return *p.SalePrice
	}
	return p.Price
}

func validateSaleFields(price float64, onSale bool, salePrice *float64) error {
	if !onSale {
		return nil
	}
	if salePrice == nil {
		return fmt.Errorf("sale_price is required when on_sale is true")
	}
	if *salePrice <= 0 {
		return fmt.Errorf("sale_price must be greater than 0")
	}
	if *salePrice >= price {
		return fmt.Errorf("sale_price must be less than price")
	}
	return nil
}

// resolveSaleUpdate merges a partial price/sale update onto the stored values.
// Turning the sale off clears the sale price.
func resolveSaleUpdate(existing models.Product, input saleUpdateInput) (saleUpdateResult, error) {
	result := saleUpdateResult{
		Price:     existing.Price,
		OnSale:    existing.OnSale,
		SalePrice: existing.SalePrice,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}

	if input.OnSale != nil {
		result.OnSale = *input.OnSale
		result.SetOnSale = true
		if !*input.OnSale {
			result.SalePrice = nil
			result.SetSalePrice = true
		}
	}

	disabling := input.OnSale != nil && !*input.OnSale
	if input.SalePrice != nil && !disabling {
		value := *input.SalePrice
		result.SalePrice = &value
		result.SetSalePrice = true
	}

	if err := validateSaleFields(result.Price, result.OnSale, result.SalePrice); err != nil {
		return saleUpdateResult{}, err
	}

	return result, nil
}
