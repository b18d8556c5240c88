package alerts

import (
	"strconv"
	"strings"

	"github.com/churnscope/churnscope/internal/engine"
	"github.com/churnscope/churnscope/internal/report"
)

// evalGlobal evaluates a rule condition string against a report's global
// fields.
//
// Supported expressions (field operator value):
//
//	overall_churn_rate > 30
//	churned_customers > 1500
//	total_customers < 5000
//	revenue_at_risk_monthly > 100000
//	revenue_at_risk_annual > 1500000
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalGlobal(cond string, rep *report.Report) (bool, float64) {
	field, op, threshold, ok := parseCondition(cond)
	if !ok {
		return false, 0
	}

	var v float64
	switch field {
	case "overall_churn_rate":
		v = rep.OverallChurnRate
	case "churned_customers":
		v = float64(rep.ChurnedCustomers)
	case "total_customers":
		v = float64(rep.TotalCustomers)
	case "revenue_at_risk_monthly":
		v = rep.ChurnedRevenue.MonthlyTotal
	case "revenue_at_risk_annual":
		v = rep.ChurnedRevenue.AnnualTotal
	default:
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// evalSegment evaluates a rule condition against one segment metric.
//
// Supported fields: churn_rate, churned_customers, total_customers.
func evalSegment(cond string, m engine.CategoryMetric) (bool, float64) {
	field, op, threshold, ok := parseCondition(cond)
	if !ok {
		return false, 0
	}

	var v float64
	switch field {
	case "churn_rate":
		v = m.ChurnRate
	case "churned_customers":
		v = float64(m.Churned)
	case "total_customers":
		v = float64(m.Total)
	default:
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// parseCondition splits "field op value" into its parts.
func parseCondition(cond string) (field, op string, threshold float64, ok bool) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return "", "", 0, false
	}
	threshold, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", "", 0, false
	}
	return parts[0], parts[1], threshold, true
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
