package services

import (
	"context"
	"sort"
	"time"

	"github.com/minhlq/vlxd-pos/internal/models"
)

const topProductCount = 10

// Stats is the revenue report for a date range.
type Stats struct {
	Summary      StatsSummary   `json:"summary"`
	ProductStats []ProductStat  `json:"productStats"`
	DailyRevenue []DailyRevenue `json:"dailyRevenue"`
}

type StatsSummary struct {
	TotalRevenue        float64     `json:"totalRevenue"`
	TotalInvoices       int         `json:"totalInvoices"`
	AverageInvoiceValue float64     `json:"averageInvoiceValue"`
	Period              StatsPeriod `json:"period"`
}

// StatsPeriod echoes the requested range back to the caller.
type StatsPeriod struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

type ProductStat struct {
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// Stats folds all invoices in [start, end) into the report: revenue
// summary, the ten best-selling products by revenue, and per-day revenue.
// The fold happens in memory over fetched rows; shop-scale volumes make
// anything fancier unnecessary.
func (s *InvoiceService) Stats(ctx context.Context, start, end *time.Time) (*Stats, error) {
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date < ?", *end)
	}

	var invoices []models.Invoice
	if err := q.Preload("Items").Find(&invoices).Error; err != nil {
		return nil, err
	}

	stats := &Stats{
		ProductStats: make([]ProductStat, 0),
		DailyRevenue: make([]DailyRevenue, 0),
	}

	// Product fold keyed by name; slice keeps first-seen order so revenue
	// ties stay stable.
	productIdx := map[string]int{}
	dailyIdx := map[string]int{}
	for _, inv := range invoices {
		stats.Summary.TotalRevenue += inv.TotalAmount
		stats.Summary.TotalInvoices++

		for _, item := range inv.Items {
			i, ok := productIdx[item.ProductName]
			if !ok {
				i = len(stats.ProductStats)
				productIdx[item.ProductName] = i
				stats.ProductStats = append(stats.ProductStats, ProductStat{ProductName: item.ProductName})
			}
			stats.ProductStats[i].Quantity += item.Quantity
			stats.ProductStats[i].Revenue += item.Total
		}

		day := inv.Date.UTC().Format("2006-01-02")
		i, ok := dailyIdx[day]
		if !ok {
			i = len(stats.DailyRevenue)
			dailyIdx[day] = i
			stats.DailyRevenue = append(stats.DailyRevenue, DailyRevenue{Date: day})
		}
		stats.DailyRevenue[i].Revenue += inv.TotalAmount
		stats.DailyRevenue[i].Count++
	}

	if stats.Summary.TotalInvoices > 0 {
		stats.Summary.AverageInvoiceValue = stats.Summary.TotalRevenue / float64(stats.Summary.TotalInvoices)
	}

	sort.SliceStable(stats.ProductStats, func(a, b int) bool {
		return stats.ProductStats[a].Revenue > stats.ProductStats[b].Revenue
	})
	if len(stats.ProductStats) > topProductCount {
		stats.ProductStats = stats.ProductStats[:topProductCount]
	}

	sort.Slice(stats.DailyRevenue, func(a, b int) bool {
		return stats.DailyRevenue[a].Date < stats.DailyRevenue[b].Date
	})

	return stats, nil
}
