// Package report assembles the full analysis output for one dataset
// snapshot: overall totals, the standard segment set, the cross-segment
// matrix, the driver ranking, revenue impact, CLV statistics and the
// profile-flag summary. A Report is what the store holds, the API and the
// WebSocket hub serve, and the alert engine evaluates.
package report

import (
	"fmt"
	"time"

	"github.com/churnscope/churnscope/internal/dataset"
	"github.com/churnscope/churnscope/internal/engine"
)

// Report is the complete derived view of one snapshot. It is built fresh on
// every analysis run and never mutated afterwards.
type Report struct {
	SourceID    string    `json:"source_id"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalCustomers   int     `json:"total_customers"`
	ChurnedCustomers int     `json:"churned_customers"`
	OverallChurnRate float64 `json:"overall_churn_rate"`
	RiskTier         string  `json:"risk_tier"`

	// Segments holds the per-attribute churn breakdowns, keyed by attribute
	// name.
	Segments map[string][]engine.CategoryMetric `json:"segments"`

	// Cross is the two-dimension breakdown for the configured pair.
	Cross []engine.PairMetric `json:"cross"`

	// Ranking is the cross-category driver ranking. RankingCategories
	// records the dimensions it was built from, so consumers re-running the
	// ranking with a different cutoff keep the configured layout.
	Ranking           []engine.RankedMetric `json:"ranking"`
	RankingCategories []engine.CategoryDef  `json:"-"`

	// ChurnedRevenue is the revenue at risk from already-churned customers.
	ChurnedRevenue engine.Revenue `json:"churned_revenue"`

	CLV      []engine.CLVGroup      `json:"clv"`
	Profiles []engine.ProfileMetric `json:"profiles"`
}

// Builder holds the analysis layout: which attributes get segmented, which
// pair is crossed, and which categories enter the driver ranking.
type Builder struct {
	Attributes []string
	CrossPair  [2]string
	Ranking    []engine.CategoryDef
	TopN       int

	now func() time.Time
}

// DefaultAttributes is the segment set the original analysis profiles.
var DefaultAttributes = []string{
	"contract", "internet_service", "payment_method", "tenure_bucket",
	"service_count", "tech_support", "paperless_billing", "senior_citizen",
}

// NewBuilder returns a Builder with the default layout.
func NewBuilder() *Builder {
	return &Builder{
		Attributes: DefaultAttributes,
		CrossPair:  [2]string{"contract", "internet_service"},
		Ranking:    engine.DefaultRankingCategories(),
		TopN:       10,
		now:        time.Now,
	}
}

// Build runs every configured analysis over the snapshot. A configuration
// error (unknown attribute anywhere in the layout) fails the whole build;
// no partial report is returned.
func (b *Builder) Build(s *dataset.Snapshot) (*Report, error) {
	rep := &Report{
		SourceID:       s.SourceID(),
		GeneratedAt:    b.clock()(),
		TotalCustomers: s.Len(),
		Segments:       make(map[string][]engine.CategoryMetric, len(b.Attributes)),
	}

	for i := range s.Records() {
		if s.Records()[i].Churn {
			rep.ChurnedCustomers++
		}
	}
	if rep.TotalCustomers > 0 {
		rep.OverallChurnRate = engine.Round2(
			float64(rep.ChurnedCustomers) / float64(rep.TotalCustomers) * 100)
	}
	rep.RiskTier = engine.RiskTier(rep.OverallChurnRate)

	for _, attr := range b.Attributes {
		metrics, err := engine.Segment(s, attr)
		if err != nil {
			return nil, fmt.Errorf("report: segment %q: %w", attr, err)
		}
		rep.Segments[attr] = metrics
	}

	cross, err := engine.CrossSegment(s, b.CrossPair[0], b.CrossPair[1])
	if err != nil {
		return nil, fmt.Errorf("report: cross segment: %w", err)
	}
	rep.Cross = cross

	ranking, err := engine.RankDrivers(s, b.Ranking, b.TopN)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	rep.Ranking = ranking
	rep.RankingCategories = b.Ranking

	rep.ChurnedRevenue = engine.RevenueImpact(s, engine.Churned)
	rep.CLV = engine.CLVStats(s)
	rep.Profiles = engine.ProfileSummary(s)

	return rep, nil
}

func (b *Builder) clock() func() time.Time {
	if b.now != nil {
		return b.now
	}
	return time.Now
}
