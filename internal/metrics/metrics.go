// Package metrics exposes the current analysis results in Prometheus text
// exposition format, so the churn numbers a dashboard shows can also be
// scraped and alerted on by an existing monitoring stack.
//
// Everything exported here is a gauge: the values are point-in-time facts
// about the latest report, not monotonic counters.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/churnscope/churnscope/internal/store"
)

// Handler returns the /metrics endpoint reading from st.
func Handler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, mf := range families(st, time.Now()) {
			if err := enc.Encode(mf); err != nil {
				slog.Warn("metrics: encode failed", "family", mf.GetName(), "err", err)
				return
			}
		}
	})
}

// families builds the full gauge set from all live reports.
func families(st *store.Store, now time.Time) []*dto.MetricFamily {
	customers := newGauge("churnscope_customers",
		"Customers in the latest snapshot, per source.")
	churned := newGauge("churnscope_churned_customers",
		"Churned customers in the latest snapshot, per source.")
	rate := newGauge("churnscope_churn_rate_percent",
		"Overall churn rate of the latest snapshot, per source.")
	revMonthly := newGauge("churnscope_revenue_at_risk_monthly",
		"Monthly charges of already-churned customers, per source.")
	revAnnual := newGauge("churnscope_revenue_at_risk_annual",
		"Annualized charges of already-churned customers, per source.")
	age := newGauge("churnscope_report_age_seconds",
		"Seconds since the report for this source was last refreshed.")
	segRate := newGauge("churnscope_segment_churn_rate_percent",
		"Churn rate per segment of the latest snapshot.")

	for _, e := range st.List() {
		rep := e.Report
		src := label("source", rep.SourceID)

		addGauge(customers, float64(rep.TotalCustomers), src)
		addGauge(churned, float64(rep.ChurnedCustomers), src)
		addGauge(rate, rep.OverallChurnRate, src)
		addGauge(revMonthly, rep.ChurnedRevenue.MonthlyTotal, src)
		addGauge(revAnnual, rep.ChurnedRevenue.AnnualTotal, src)
		addGauge(age, now.Sub(e.UpdatedAt).Seconds(), src)

		for attr, ms := range rep.Segments {
			for _, m := range ms {
				addGauge(segRate, m.ChurnRate,
					src, label("attribute", attr), label("value", m.Value))
			}
		}
	}

	return []*dto.MetricFamily{
		customers, churned, rate, revMonthly, revAnnual, age, segRate,
	}
}

// --- dto construction helpers ----------------------------------------------

func newGauge(name, help string) *dto.MetricFamily {
	t := dto.MetricType_GAUGE
	return &dto.MetricFamily{
		Name: &name,
		Help: &help,
		Type: &t,
	}
}

func addGauge(mf *dto.MetricFamily, value float64, labels ...*dto.LabelPair) {
	mf.Metric = append(mf.Metric, &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: &value},
	})
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: &name, Value: &value}
}
