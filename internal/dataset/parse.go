package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// columns is the canonical column set every loader must provide.
// Names match the headers of the published Telco churn CSV.
var columns = []string{
	"customerID", "gender", "SeniorCitizen", "Partner", "Dependents",
	"tenure", "PhoneService", "MultipleLines", "InternetService",
	"OnlineSecurity", "OnlineBackup", "DeviceProtection", "TechSupport",
	"StreamingTV", "StreamingMovies", "Contract", "PaperlessBilling",
	"PaymentMethod", "MonthlyCharges", "TotalCharges", "Churn",
}

// rowGetter returns the raw string value of a named column for one row.
type rowGetter func(column string) string

// parseRecord builds a CustomerRecord from one raw row. Parse failures are
// appended to *vs as Violations rather than aborting, so a single load pass
// reports every bad row at once.
func parseRecord(row int, get rowGetter, vs *[]Violation) CustomerRecord {
	fail := func(field, reason string) {
		*vs = append(*vs, Violation{Row: row, Field: field, Reason: reason})
	}

	rec := CustomerRecord{
		ID:              strings.TrimSpace(get("customerID")),
		Gender:          strings.TrimSpace(get("gender")),
		Contract:        strings.TrimSpace(get("Contract")),
		InternetService: strings.TrimSpace(get("InternetService")),
		PaymentMethod:   strings.TrimSpace(get("PaymentMethod")),
	}

	rec.SeniorCitizen = parseSenior(get("SeniorCitizen"))
	rec.Partner = yesNo(get("Partner"))
	rec.Dependents = yesNo(get("Dependents"))
	rec.PhoneService = yesNo(get("PhoneService"))
	rec.MultipleLines = yesNo(get("MultipleLines"))
	rec.OnlineSecurity = yesNo(get("OnlineSecurity"))
	rec.OnlineBackup = yesNo(get("OnlineBackup"))
	rec.DeviceProtection = yesNo(get("DeviceProtection"))
	rec.TechSupport = yesNo(get("TechSupport"))
	rec.StreamingTV = yesNo(get("StreamingTV"))
	rec.StreamingMovies = yesNo(get("StreamingMovies"))
	rec.PaperlessBilling = yesNo(get("PaperlessBilling"))

	switch strings.TrimSpace(get("Churn")) {
	case "Yes":
		rec.Churn = true
	case "No":
		rec.Churn = false
	default:
		fail("Churn", fmt.Sprintf("must be Yes or No, got %q", get("Churn")))
	}

	var err error
	if rec.Tenure, err = strconv.Atoi(strings.TrimSpace(get("tenure"))); err != nil {
		fail("tenure", fmt.Sprintf("not an integer: %q", get("tenure")))
	}
	if rec.MonthlyCharges, err = strconv.ParseFloat(strings.TrimSpace(get("MonthlyCharges")), 64); err != nil {
		fail("MonthlyCharges", fmt.Sprintf("not a number: %q", get("MonthlyCharges")))
	}
	if rec.TotalCharges, err = strconv.ParseFloat(strings.TrimSpace(get("TotalCharges")), 64); err != nil {
		// The raw Telco export leaves TotalCharges blank for tenure-0 rows.
		// Those rows are outside the data contract — the published analysis
		// set is pre-filtered to the 7,032 rows with a real value.
		fail("TotalCharges", fmt.Sprintf("not a number: %q", get("TotalCharges")))
	}

	return rec
}

// yesNo maps a Yes/No column to a bool. The "No phone service" and
// "No internet service" placeholders mean the flag is off.
func yesNo(v string) bool {
	return strings.TrimSpace(v) == "Yes"
}

// parseSenior handles SeniorCitizen, which the source encodes as 0/1 rather
// than Yes/No.
func parseSenior(v string) bool {
	switch strings.TrimSpace(v) {
	case "1", "Yes":
		return true
	default:
		return false
	}
}
