package engine

import (
	"sort"

	"github.com/churnscope/churnscope/internal/dataset"
)

// Thresholds behind the derived profile flags.
const (
	highSpendMonthly   = 70.0 // monthly charges above this mark a high spender
	newCustomerMaxMo   = 12
	establishedMaxMo   = 24
	loyalCustomerMinMo = 48 // exclusive: loyal means tenure > 48
	minimalServicesMax = 2
)

// Risk tier labels, with the churn-rate thresholds that map to them.
const (
	TierCritical = "critical"
	TierMedium   = "medium"
	TierLow      = "low"

	thresholdCritical = 70.0
	thresholdMedium   = 40.0
)

// Profile holds the derived per-customer features the feature-engineering
// stage consumes. All flags are pure functions of one record.
type Profile struct {
	TotalServices        int     `json:"total_services"` // of the 8 subscribable services
	ServiceDensity       float64 `json:"service_density"`
	ChargePerTenureMonth float64 `json:"charge_per_tenure_month"`

	IsNewCustomer   bool `json:"is_new_customer"`   // tenure <= 12
	IsEstablished   bool `json:"is_established"`    // 12 < tenure <= 24
	IsLoyalCustomer bool `json:"is_loyal_customer"` // tenure > 48
	IsHighSpender   bool `json:"is_high_spender"`

	HasMinimalServices       bool `json:"has_minimal_services"`
	HighRiskProfile          bool `json:"high_risk_profile"` // month-to-month + fiber + e-check
	SeniorNoSupport          bool `json:"senior_no_support"`
	SingleNoFamily           bool `json:"single_no_family"`
	NewHighSpender           bool `json:"new_high_spender"`
	PaperlessElectronicCheck bool `json:"paperless_electronic_check"`
	HasAutoPay               bool `json:"has_auto_pay"`
	FiberNoAddons            bool `json:"fiber_no_addons"`
}

// BuildProfile derives the profile flags for one customer.
func BuildProfile(r *dataset.CustomerRecord) Profile {
	services := totalServices(r)
	fiber := r.InternetService == dataset.InternetFiber
	echeck := r.PaymentMethod == dataset.PaymentElectronicCheck
	autopay := r.PaymentMethod == dataset.PaymentBankTransfer ||
		r.PaymentMethod == dataset.PaymentCreditCard

	// The +1 denominators mirror the source feature engineering, which
	// guards against tenure 0 that way rather than special-casing it.
	return Profile{
		TotalServices:        services,
		ServiceDensity:       Round2(float64(services) / float64(r.Tenure+1)),
		ChargePerTenureMonth: Round2(r.TotalCharges / float64(r.Tenure+1)),

		IsNewCustomer:   r.Tenure <= newCustomerMaxMo,
		IsEstablished:   r.Tenure > newCustomerMaxMo && r.Tenure <= establishedMaxMo,
		IsLoyalCustomer: r.Tenure > loyalCustomerMinMo,
		IsHighSpender:   r.MonthlyCharges > highSpendMonthly,

		HasMinimalServices:       services <= minimalServicesMax,
		HighRiskProfile:          r.Contract == dataset.ContractMonthToMonth && fiber && echeck,
		SeniorNoSupport:          r.SeniorCitizen && !r.TechSupport,
		SingleNoFamily:           !r.Partner && !r.Dependents,
		NewHighSpender:           r.Tenure <= newCustomerMaxMo && r.MonthlyCharges > highSpendMonthly,
		PaperlessElectronicCheck: r.PaperlessBilling && echeck,
		HasAutoPay:               autopay,
		FiberNoAddons:            fiber && !r.OnlineSecurity && !r.TechSupport,
	}
}

// totalServices counts all eight subscribable services. Distinct from
// CountServices, which covers only the four core ones.
func totalServices(r *dataset.CustomerRecord) int {
	n := 0
	for _, on := range []bool{
		r.PhoneService, r.HasInternet(), r.OnlineSecurity, r.OnlineBackup,
		r.DeviceProtection, r.TechSupport, r.StreamingTV, r.StreamingMovies,
	} {
		if on {
			n++
		}
	}
	return n
}

// RiskTier maps a churn rate percentage to a tier label:
// critical >= 70, medium >= 40, low below.
func RiskTier(churnRatePct float64) string {
	switch {
	case churnRatePct >= thresholdCritical:
		return TierCritical
	case churnRatePct >= thresholdMedium:
		return TierMedium
	default:
		return TierLow
	}
}

// Recommendations returns the retention actions suggested for one at-risk
// customer, in priority order.
func Recommendations(r *dataset.CustomerRecord) []string {
	var recs []string
	if r.Contract == dataset.ContractMonthToMonth {
		recs = append(recs, "Offer 1-year contract with 20% discount")
	}
	if r.PaymentMethod == dataset.PaymentElectronicCheck {
		recs = append(recs, "Incentivize automatic payment switch")
	}
	if r.InternetService == dataset.InternetFiber && !r.TechSupport {
		recs = append(recs, "Provide 3 months free tech support")
	}
	if !r.OnlineSecurity {
		recs = append(recs, "Offer online security at 50% off")
	}
	if r.MonthlyCharges > highSpendMonthly {
		recs = append(recs, "Review pricing / loyalty discount")
	}
	if r.Tenure < newCustomerMaxMo {
		recs = append(recs, "Assign dedicated account manager")
	}
	return recs
}

// ProfileMetric is the churn breakdown of one profile flag across a snapshot.
type ProfileMetric struct {
	Flag      string  `json:"flag"`
	Customers int     `json:"customers"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churn_rate"`
}

// profileFlags enumerates the boolean flags summarized by ProfileSummary.
var profileFlags = []struct {
	name string
	get  func(Profile) bool
}{
	{"high_risk_profile", func(p Profile) bool { return p.HighRiskProfile }},
	{"fiber_no_addons", func(p Profile) bool { return p.FiberNoAddons }},
	{"new_high_spender", func(p Profile) bool { return p.NewHighSpender }},
	{"paperless_electronic_check", func(p Profile) bool { return p.PaperlessElectronicCheck }},
	{"senior_no_support", func(p Profile) bool { return p.SeniorNoSupport }},
	{"single_no_family", func(p Profile) bool { return p.SingleNoFamily }},
	{"has_minimal_services", func(p Profile) bool { return p.HasMinimalServices }},
	{"has_auto_pay", func(p Profile) bool { return p.HasAutoPay }},
	{"is_new_customer", func(p Profile) bool { return p.IsNewCustomer }},
	{"is_high_spender", func(p Profile) bool { return p.IsHighSpender }},
}

// ProfileSummary computes, for every profile flag, how many customers carry
// it and how many of those churned. Ordered by descending churn rate so the
// strongest risk profiles surface first.
func ProfileSummary(s *dataset.Snapshot) []ProfileMetric {
	counts := make([]ProfileMetric, len(profileFlags))
	for i, f := range profileFlags {
		counts[i].Flag = f.name
	}

	for i := range s.Records() {
		r := &s.Records()[i]
		p := BuildProfile(r)
		for j, f := range profileFlags {
			if f.get(p) {
				counts[j].Customers++
				if r.Churn {
					counts[j].Churned++
				}
			}
		}
	}

	for i := range counts {
		if counts[i].Customers > 0 {
			counts[i].ChurnRate = churnRate(counts[i].Churned, counts[i].Customers)
		}
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].ChurnRate != counts[j].ChurnRate {
			return counts[i].ChurnRate > counts[j].ChurnRate
		}
		return counts[i].Flag < counts[j].Flag
	})
	return counts
}
