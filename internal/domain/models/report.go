package models

import "time"

// LowStockProduct is a dashboard row for products about to run out.
type LowStockProduct struct {
	ProductID     int64  `json:"productId" bson:"product_id"`
	Name          string `json:"name" bson:"name"`
	StockQuantity int    `json:"stockQuantity" bson:"stock_quantity"`
}

// TopProduct ranks products by quantity sold.
type TopProduct struct {
	ProductID int64   `json:"productId" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Revenue   float64 `json:"revenue" bson:"revenue"`
}

// DashboardSummary represents the dashboard widgets, also stored daily in MongoDB.
type DashboardSummary struct {
	Date           string            `json:"date" bson:"date"`
	SalesToday     int               `json:"salesToday" bson:"sales_today"`
	RevenueToday   float64           `json:"revenueToday" bson:"revenue_today"`
	RevenueMonth   float64           `json:"revenueMonth" bson:"revenue_month"`
	AverageTicket  float64           `json:"averageTicket" bson:"average_ticket"`
	PendingBalance float64           `json:"pendingBalance" bson:"pending_balance"`
	LowStock       []LowStockProduct `json:"lowStock" bson:"low_stock"`
	TopProducts    []TopProduct      `json:"topProducts" bson:"top_products"`
	GeneratedAt    time.Time         `json:"generatedAt" bson:"generated_at"`
}
