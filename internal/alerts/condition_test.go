package alerts

import (
	"testing"

	"github.com/churnscope/churnscope/internal/engine"
	"github.com/churnscope/churnscope/internal/report"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in        string
		wantField string
		wantOp    string
		wantVal   float64
		wantOK    bool
	}{
		{"churn_rate > 40", "churn_rate", ">", 40, true},
		{"overall_churn_rate >= 26.5", "overall_churn_rate", ">=", 26.5, true},
		{"total_customers < 100", "total_customers", "<", 100, true},
		{"churn_rate >", "", "", 0, false},
		{"churn_rate > abc", "", "", 0, false},
		{"", "", "", 0, false},
		{"just one two three four", "", "", 0, false},
	}
	for _, tc := range tests {
		field, op, val, ok := parseCondition(tc.in)
		if ok != tc.wantOK {
			t.Errorf("parseCondition(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if field != tc.wantField || op != tc.wantOp || val != tc.wantVal {
			t.Errorf("parseCondition(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.in, field, op, val, tc.wantField, tc.wantOp, tc.wantVal)
		}
	}
}

func TestCompareFloat(t *testing.T) {
	tests := []struct {
		v    float64
		op   string
		th   float64
		want bool
	}{
		{50, ">", 40, true},
		{40, ">", 40, false},
		{40, ">=", 40, true},
		{30, "<", 40, true},
		{40, "<=", 40, true},
		{40, "==", 40, true},
		{40, "!=", 40, false}, // unsupported operator never fires
	}
	for _, tc := range tests {
		if got := compareFloat(tc.v, tc.op, tc.th); got != tc.want {
			t.Errorf("compareFloat(%v %s %v) = %v, want %v", tc.v, tc.op, tc.th, got, tc.want)
		}
	}
}

func TestEvalGlobal(t *testing.T) {
	rep := &report.Report{
		TotalCustomers:   1000,
		ChurnedCustomers: 300,
		OverallChurnRate: 30,
		ChurnedRevenue:   engine.Revenue{MonthlyTotal: 20000, AnnualTotal: 240000},
	}
	tests := []struct {
		cond      string
		wantFires bool
		wantValue float64
	}{
		{"overall_churn_rate > 25", true, 30},
		{"overall_churn_rate > 30", false, 30},
		{"churned_customers >= 300", true, 300},
		{"total_customers < 500", false, 1000},
		{"revenue_at_risk_monthly > 10000", true, 20000},
		{"revenue_at_risk_annual > 500000", false, 240000},
		{"no_such_field > 1", false, 0},
		{"garbage", false, 0},
	}
	for _, tc := range tests {
		fires, value := evalGlobal(tc.cond, rep)
		if fires != tc.wantFires || value != tc.wantValue {
			t.Errorf("evalGlobal(%q) = (%v, %v), want (%v, %v)",
				tc.cond, fires, value, tc.wantFires, tc.wantValue)
		}
	}
}

func TestEvalSegment(t *testing.T) {
	m := engine.CategoryMetric{
		Attribute: "contract", Value: "Month-to-month",
		Total: 700, Churned: 300, ChurnRate: 42.86,
	}
	tests := []struct {
		cond      string
		wantFires bool
		wantValue float64
	}{
		{"churn_rate > 40", true, 42.86},
		{"churn_rate > 50", false, 42.86},
		{"churned_customers > 200", true, 300},
		{"total_customers <= 700", true, 700},
		{"overall_churn_rate > 1", false, 0}, // global field, not valid per segment
	}
	for _, tc := range tests {
		fires, value := evalSegment(tc.cond, m)
		if fires != tc.wantFires || value != tc.wantValue {
			t.Errorf("evalSegment(%q) = (%v, %v), want (%v, %v)",
				tc.cond, fires, value, tc.wantFires, tc.wantValue)
		}
	}
}
