// Package reporting builds the read-only admin dashboard figures from the
// order ledger and the entity counts.
package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

const (
	dailyWindow = 7 * 24 * time.Hour
	topSellers  = 5
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type OrderSource interface {
	Counter
	Since(ctx context.Context, from time.Time) ([]models.Order, error)
}

type Overview struct {
	Customers int64 `json:"customers"`
	Products  int64 `json:"products"`
	Orders    int64 `json:"orders"`
}

type DailySales struct {
	Date        string  `json:"date"`
	TotalSales  float64 `json:"total_sales"`
	OrdersCount int     `json:"orders_count"`
}

type BestSeller struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type Summary struct {
	TotalOrders  int64        `json:"total_orders"`
	TotalRevenue float64      `json:"total_revenue"`
	BestSellers  []BestSeller `json:"best_sellers"`
}

type Params struct {
	Customers Counter
	Products  Counter
	Orders    OrderSource
	Now       func() time.Time
}

type Service struct {
	customers Counter
	products  Counter
	orders    OrderSource
	now       func() time.Time
}

func NewService(params Params) (*Service, error) {
	if params.Customers == nil || params.Products == nil || params.Orders == nil {
		return nil, errors.New("reporting: customers, products and orders sources are required")
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		customers: params.Customers,
		products:  params.Products,
		orders:    params.Orders,
		now:       params.Now,
	}, nil
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var (
		out Overview
		err error
	)
	if out.Customers, err = s.customers.Count(ctx); err != nil {
		return Overview{}, err
	}
	if out.Products, err = s.products.Count(ctx); err != nil {
		return Overview{}, err
	}
	if out.Orders, err = s.orders.Count(ctx); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// DailySales groups the last seven days of orders by UTC date, ascending.
// Days without orders are omitted.
func (s *Service) DailySales(ctx context.Context) ([]DailySales, error) {
	orders, err := s.orders.Since(ctx, s.now().Add(-dailyWindow))
	if err != nil {
		return nil, err
	}
	return groupByDay(orders), nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	orders, err := s.orders.Since(ctx, time.Time{})
	if err != nil {
		return Summary{}, err
	}
	return summarize(orders), nil
}

func groupByDay(orders []models.Order) []DailySales {
	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := map[string]*bucket{}
	for _, order := range orders {
		day := order.CreatedAt.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{total: decimal.Zero}
			buckets[day] = b
		}
		b.total = b.total.Add(decimal.NewFromFloat(order.Total))
		b.count++
	}

	out := make([]DailySales, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, DailySales{Date: day, TotalSales: b.total.InexactFloat64(), OrdersCount: b.count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func summarize(orders []models.Order) Summary {
	type tally struct {
		title    string
		quantity int
		revenue  decimal.Decimal
	}
	revenue := decimal.Zero
	byProduct := map[string]*tally{}
	for _, order := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(order.Total))
		for _, item := range order.Items {
			key := item.ProductID.Hex()
			t, ok := byProduct[key]
			if !ok {
				t = &tally{title: item.Title, revenue: decimal.Zero}
				byProduct[key] = t
			}
			t.quantity += item.Quantity
			t.revenue = t.revenue.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	sellers := make([]BestSeller, 0, len(byProduct))
	for id, t := range byProduct {
		sellers = append(sellers, BestSeller{
			ProductID: id,
			Title:     t.title,
			Quantity:  t.quantity,
			Revenue:   t.revenue.InexactFloat64(),
		})
	}
	sort.Slice(sellers, func(i, j int) bool {
		if sellers[i].Quantity != sellers[j].Quantity {
			return sellers[i].Quantity > sellers[j].Quantity
		}
		return sellers[i].ProductID < sellers[j].ProductID
	})
	if len(sellers) > topSellers {
		sellers = sellers[:topSellers]
	}

	return Summary{
		TotalOrders:  int64(len(orders)),
		TotalRevenue: revenue.InexactFloat64(),
		BestSellers:  sellers,
	}
}
