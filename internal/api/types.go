package api

import (
	"github.com/churnscope/churnscope/internal/engine"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State            string  `json:"state"` // "ok" | "empty"
	SourceCount      int     `json:"source_count"`
	TotalCustomers   int     `json:"total_customers"`
	ChurnedCustomers int     `json:"churned_customers"`
	OverallChurnRate float64 `json:"overall_churn_rate"`
	RiskTier         string  `json:"risk_tier"`
	AlertCount       int     `json:"alert_count"`
	OldestReport     string  `json:"oldest_report,omitempty"` // RFC3339
}

// ReportResponse is one report entry in GET /api/v1/reports or
// GET /api/v1/reports/{source}. It embeds the full report plus freshness.
type ReportResponse struct {
	SourceID         string                             `json:"source_id"`
	GeneratedAt      string                             `json:"generated_at"` // RFC3339
	TotalCustomers   int                                `json:"total_customers"`
	ChurnedCustomers int                                `json:"churned_customers"`
	OverallChurnRate float64                            `json:"overall_churn_rate"`
	RiskTier         string                             `json:"risk_tier"`
	Segments         map[string][]engine.CategoryMetric `json:"segments"`
	Cross            []engine.PairMetric                `json:"cross"`
	Ranking          []engine.RankedMetric              `json:"ranking"`
	ChurnedRevenue   engine.Revenue                     `json:"churned_revenue"`
	CLV              []engine.CLVGroup                  `json:"clv"`
	Profiles         []engine.ProfileMetric             `json:"profiles"`
	LastRefreshed    string                             `json:"last_refreshed"` // RFC3339
}

// SegmentsResponse is the payload for GET /api/v1/segments/{attribute}.
type SegmentsResponse struct {
	SourceID  string                  `json:"source_id"`
	Attribute string                  `json:"attribute"`
	Segments  []engine.CategoryMetric `json:"segments"`
}

// CrossResponse is the payload for GET /api/v1/cross.
type CrossResponse struct {
	SourceID string              `json:"source_id"`
	Pairs    []engine.PairMetric `json:"pairs"`
}

// RankingResponse is the payload for GET /api/v1/rankings.
type RankingResponse struct {
	SourceID string                `json:"source_id"`
	Ranking  []engine.RankedMetric `json:"ranking"`
}

// RevenueResponse is the payload for GET /api/v1/revenue.
type RevenueResponse struct {
	SourceID string         `json:"source_id"`
	Churned  bool           `json:"churned"`
	Revenue  engine.Revenue `json:"revenue"`
}

// CLVResponse is the payload for GET /api/v1/clv.
type CLVResponse struct {
	SourceID string            `json:"source_id"`
	Groups   []engine.CLVGroup `json:"groups"`
}

// CustomerResponse is one row of GET /api/v1/customers/top, a pass-through
// of the record fields relevant to the ranking plus its recommendations.
type CustomerResponse struct {
	CustomerID      string   `json:"customer_id"`
	Contract        string   `json:"contract"`
	InternetService string   `json:"internet_service"`
	PaymentMethod   string   `json:"payment_method"`
	Tenure          int      `json:"tenure"`
	MonthlyCharges  float64  `json:"monthly_charges"`
	TotalCharges    float64  `json:"total_charges"`
	CLV             float64  `json:"clv"`
	Churned         bool     `json:"churned"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// CustomersResponse is the payload for GET /api/v1/customers/top.
type CustomersResponse struct {
	SourceID  string             `json:"source_id"`
	SortKey   string             `json:"sort_key"`
	Customers []CustomerResponse `json:"customers"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
