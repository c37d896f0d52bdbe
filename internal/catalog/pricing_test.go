package catalog

import (
	"testing"

	"storefront/internal/models"
)

func price(v float64) *float64 { return &v }

func TestUnitPriceUsesSalePriceWhenOnSale(t *testing.T) {
	p := models.Product{Price: 100, OnSale: true, SalePrice: price(80)}
	if got := UnitPrice(p); got != 80 {
		t.Fatalf("expected sale price 80, got %v", got)
	}
}

func TestUnitPriceIgnoresStaleSalePrice(t *testing.T) {
	p := models.Product{Price: 100, OnSale: false, SalePrice: price(80)}
	if got := UnitPrice(p); got != 100 {
		t.Fatalf("expected base price 100 when sale disabled, got %v", got)
	}
}

func TestUnitPriceFallsBackWithoutSalePrice(t *testing.T) {
	p := models.Product{Price: 100, OnSale: true}
	if got := UnitPrice(p); got != 100 {
		t.Fatalf("expected base price when sale price missing, got %v", got)
	}
	p.SalePrice = price(0)
	if got := UnitPrice(p); got != 100 {
		t.Fatalf("expected base price when sale price is zero, got %v", got)
	}
}

func TestValidateSaleFieldsMissingSalePrice(t *testing.T) {
	if err := validateSaleFields(100, true, nil); err == nil {
		t.Fatal("expected validation error when on_sale=true and sale_price is missing")
	}
}

func TestValidateSaleFieldsSalePriceGreaterOrEqualPrice(t *testing.T) {
	for _, salePrice := range []float64{100, 120} {
		if err := validateSaleFields(100, true, price(salePrice)); err == nil {
			t.Fatalf("expected validation error for sale_price=%v", salePrice)
		}
	}
}

func TestResolveSaleUpdateDisablingClearsSalePrice(t *testing.T) {
	existing := models.Product{Price: 100, OnSale: true, SalePrice: price(80)}
	off := false

	result, err := resolveSaleUpdate(existing, saleUpdateInput{OnSale: &off})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OnSale || result.SalePrice != nil || !result.SetSalePrice {
		t.Fatalf("expected sale cleared, got %+v", result)
	}
}

func TestResolveSaleUpdateEnablingRequiresSalePrice(t *testing.T) {
	existing := models.Product{Price: 100}
	on := true

	if _, err := resolveSaleUpdate(existing, saleUpdateInput{OnSale: &on}); err == nil {
		t.Fatal("expected error enabling sale without a sale price")
	}

	result, err := resolveSaleUpdate(existing, saleUpdateInput{OnSale: &on, SalePrice: price(70)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OnSale || result.SalePrice == nil || *result.SalePrice != 70 {
		t.Fatalf("expected sale at 70, got %+v", result)
	}
}

func TestResolveSaleUpdatePriceDropBelowSaleFails(t *testing.T) {
	existing := models.Product{Price: 100, OnSale: true, SalePrice: price(80)}
	if _, err := resolveSaleUpdate(existing, saleUpdateInput{Price: price(60)}); err == nil {
		t.Fatal("expected error when new price is below the active sale price")
	}
}
