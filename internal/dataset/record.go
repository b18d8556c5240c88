package dataset

import "time"

// Canonical contract values as they appear in the source table.
const (
	ContractMonthToMonth = "Month-to-month"
	ContractOneYear      = "One year"
	ContractTwoYear      = "Two year"
)

// Canonical internet service values.
const (
	InternetDSL   = "DSL"
	InternetFiber = "Fiber optic"
	InternetNone  = "No"
)

// Canonical payment method values.
const (
	PaymentElectronicCheck = "Electronic check"
	PaymentMailedCheck     = "Mailed check"
	PaymentBankTransfer    = "Bank transfer (automatic)"
	PaymentCreditCard      = "Credit card (automatic)"
)

// CustomerRecord is one row of the customer table after normalization.
// Yes/No columns become bools; "No phone service" and "No internet service"
// placeholders normalize to false.
type CustomerRecord struct {
	ID            string
	Gender        string
	SeniorCitizen bool
	Partner       bool
	Dependents    bool

	Tenure int // months, >= 0

	PhoneService     bool
	MultipleLines    bool
	InternetService  string // "DSL" | "Fiber optic" | "No"
	OnlineSecurity   bool
	OnlineBackup     bool
	DeviceProtection bool
	TechSupport      bool
	StreamingTV      bool
	StreamingMovies  bool

	Contract         string // "Month-to-month" | "One year" | "Two year"
	PaperlessBilling bool
	PaymentMethod    string

	MonthlyCharges float64
	TotalCharges   float64

	Churn bool
}

// HasInternet reports whether the customer subscribes to any internet service.
func (r *CustomerRecord) HasInternet() bool {
	return r.InternetService != InternetNone && r.InternetService != ""
}

// Snapshot is a validated, immutable view of one loaded customer table.
// Callers must not modify the slice returned by Records.
type Snapshot struct {
	sourceID string
	loadedAt time.Time
	records  []CustomerRecord
}

// NewSnapshot wraps validated records. It is exported for tests and loaders;
// records must already have passed Validate.
func NewSnapshot(sourceID string, loadedAt time.Time, records []CustomerRecord) *Snapshot {
	return &Snapshot{sourceID: sourceID, loadedAt: loadedAt, records: records}
}

// SourceID returns the identifier of the source this snapshot was loaded from.
func (s *Snapshot) SourceID() string { return s.sourceID }

// LoadedAt returns the time the snapshot was loaded.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int { return len(s.records) }

// Records returns the underlying record slice. Callers must treat it as
// read-only — every engine operation is a pure function of this data.
func (s *Snapshot) Records() []CustomerRecord { return s.records }
