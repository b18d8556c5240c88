package engine

import (
	"testing"

	"github.com/churnscope/churnscope/internal/dataset"
)

func TestRevenueImpact(t *testing.T) {
	a := customer("a", true)
	a.MonthlyCharges = 80.10
	b := customer("b", true)
	b.MonthlyCharges = 19.95
	c := customer("c", false)
	c.MonthlyCharges = 1000 // retained, must not count

	rev := RevenueImpact(snap(a, b, c), Churned)
	if rev.Customers != 2 {
		t.Errorf("Customers = %d, want 2", rev.Customers)
	}
	if !almostEqual(rev.MonthlyTotal, 100.05, 0.001) {
		t.Errorf("MonthlyTotal = %.4f, want 100.05", rev.MonthlyTotal)
	}
	// Annual total is 12× the unrounded monthly sum.
	if !almostEqual(rev.AnnualTotal, 1200.60, 0.001) {
		t.Errorf("AnnualTotal = %.4f, want 1200.60", rev.AnnualTotal)
	}
	if !almostEqual(rev.MonthlyAvg, 50.03, 0.01) {
		t.Errorf("MonthlyAvg = %.4f, want 50.03", rev.MonthlyAvg)
	}
}

func TestRevenueImpact_EmptyMatch(t *testing.T) {
	// No churned customers is a valid answer, not an error: all zeros.
	rev := RevenueImpact(snap(customer("a", false)), Churned)
	if rev != (Revenue{}) {
		t.Errorf("empty match = %+v, want zero value", rev)
	}
}

func TestRevenueImpact_EmptySnapshot(t *testing.T) {
	rev := RevenueImpact(snap(), All)
	if rev != (Revenue{}) {
		t.Errorf("empty snapshot = %+v, want zero value", rev)
	}
}

func TestPredicates(t *testing.T) {
	churned := customer("a", true)
	retained := customer("b", false)

	if !Churned(&churned) || Churned(&retained) {
		t.Error("Churned predicate wrong")
	}
	if Retained(&churned) || !Retained(&retained) {
		t.Error("Retained predicate wrong")
	}
	if !All(&churned) || !All(&retained) {
		t.Error("All predicate wrong")
	}

	senior := And(Churned, func(r *dataset.CustomerRecord) bool { return r.SeniorCitizen })
	if senior(&churned) {
		t.Error("And matched a non-senior")
	}
	churned.SeniorCitizen = true
	if !senior(&churned) {
		t.Error("And did not match a churned senior")
	}
}

// --- CLVStats ---

func TestCLVStats(t *testing.T) {
	a := customer("a", true)
	a.Tenure, a.MonthlyCharges = 10, 50 // CLV 500
	b := customer("b", true)
	b.Tenure, b.MonthlyCharges = 2, 100 // CLV 200
	c := customer("c", false)
	c.Tenure, c.MonthlyCharges = 60, 80 // CLV 4800

	groups := CLVStats(snap(a, b, c))
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	// Retained group first, churned second.
	retained, churned := groups[0], groups[1]
	if retained.Churned || !churned.Churned {
		t.Fatalf("group order wrong: %+v", groups)
	}
	if churned.Customers != 2 || !almostEqual(churned.Avg, 350, 0.001) {
		t.Errorf("churned = %+v, want 2 customers avg 350", churned)
	}
	if !almostEqual(churned.Min, 200, 0.001) || !almostEqual(churned.Max, 500, 0.001) {
		t.Errorf("churned min/max = %.2f/%.2f, want 200/500", churned.Min, churned.Max)
	}
	if retained.Customers != 1 || !almostEqual(retained.Avg, 4800, 0.001) {
		t.Errorf("retained = %+v, want 1 customer avg 4800", retained)
	}
}

func TestCLVStats_OmitsEmptyGroup(t *testing.T) {
	groups := CLVStats(snap(customer("a", true)))
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if !groups[0].Churned {
		t.Error("surviving group should be the churned one")
	}
}

func TestCLVStats_ZeroTenure(t *testing.T) {
	// tenure 0 → CLV 0, still a valid group member.
	a := customer("a", true)
	a.Tenure = 0
	groups := CLVStats(snap(a))
	if len(groups) != 1 || groups[0].Avg != 0 || groups[0].Min != 0 || groups[0].Max != 0 {
		t.Errorf("zero-tenure stats = %+v, want all-zero CLV", groups)
	}
}
