package dataset

import (
	"fmt"
	"math"
	"strings"
)

// maxReportedViolations caps how many violations are listed in an error
// message; the full list stays available on the error value.
const maxReportedViolations = 5

// Violation describes one data-quality failure found during load.
// Row is 1-based and counts data rows (the CSV header is row 0).
type Violation struct {
	Row    int
	Field  string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("row %d, field %q: %s", v.Row, v.Field, v.Reason)
}

// DataQualityError is returned when a load finds records that violate the
// data contract. No partial snapshot is produced.
type DataQualityError struct {
	Source     string
	Violations []Violation
}

func (e *DataQualityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dataset %q: %d data-quality violation(s)", e.Source, len(e.Violations))
	for i, v := range e.Violations {
		if i == maxReportedViolations {
			fmt.Fprintf(&b, "; … and %d more", len(e.Violations)-i)
			break
		}
		b.WriteString("; ")
		b.WriteString(v.String())
	}
	return b.String()
}

var validContracts = map[string]bool{
	ContractMonthToMonth: true,
	ContractOneYear:      true,
	ContractTwoYear:      true,
}

var validInternet = map[string]bool{
	InternetDSL:   true,
	InternetFiber: true,
	InternetNone:  true,
}

var validPayment = map[string]bool{
	PaymentElectronicCheck: true,
	PaymentMailedCheck:     true,
	PaymentBankTransfer:    true,
	PaymentCreditCard:      true,
}

// Validate checks the full record set against the data contract and returns
// a *DataQualityError listing every violation, or nil when the set is clean.
func Validate(source string, records []CustomerRecord) error {
	var vs []Violation
	seen := make(map[string]int, len(records))

	for i, r := range records {
		row := i + 1

		if r.ID == "" {
			vs = append(vs, Violation{row, "customerID", "must not be empty"})
		} else if prev, dup := seen[r.ID]; dup {
			vs = append(vs, Violation{row, "customerID",
				fmt.Sprintf("duplicate of row %d (%s)", prev, r.ID)})
		} else {
			seen[r.ID] = row
		}

		if r.Tenure < 0 {
			vs = append(vs, Violation{row, "tenure", fmt.Sprintf("negative value %d", r.Tenure)})
		}
		if r.MonthlyCharges < 0 || math.IsNaN(r.MonthlyCharges) || math.IsInf(r.MonthlyCharges, 0) {
			vs = append(vs, Violation{row, "MonthlyCharges", "must be a non-negative finite number"})
		}
		if r.TotalCharges < 0 || math.IsNaN(r.TotalCharges) || math.IsInf(r.TotalCharges, 0) {
			vs = append(vs, Violation{row, "TotalCharges", "must be a non-negative finite number"})
		}
		if !validContracts[r.Contract] {
			vs = append(vs, Violation{row, "Contract", fmt.Sprintf("unknown value %q", r.Contract)})
		}
		if !validInternet[r.InternetService] {
			vs = append(vs, Violation{row, "InternetService", fmt.Sprintf("unknown value %q", r.InternetService)})
		}
		if !validPayment[r.PaymentMethod] {
			vs = append(vs, Violation{row, "PaymentMethod", fmt.Sprintf("unknown value %q", r.PaymentMethod)})
		}
	}

	if len(vs) > 0 {
		return &DataQualityError{Source: source, Violations: vs}
	}
	return nil
}
