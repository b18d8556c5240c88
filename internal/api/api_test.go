package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/churnscope/churnscope/internal/alerts"
	"github.com/churnscope/churnscope/internal/config"
	"github.com/churnscope/churnscope/internal/dataset"
	"github.com/churnscope/churnscope/internal/engine"
	"github.com/churnscope/churnscope/internal/report"
	"github.com/churnscope/churnscope/internal/store"
)

func testSnapshot(sourceID string) *dataset.Snapshot {
	base := func(id string, churned bool, contract string, monthly float64) dataset.CustomerRecord {
		return dataset.CustomerRecord{
			ID:              id,
			Gender:          "Female",
			Tenure:          20,
			PhoneService:    true,
			InternetService: dataset.InternetFiber,
			Contract:        contract,
			PaymentMethod:   dataset.PaymentElectronicCheck,
			MonthlyCharges:  monthly,
			TotalCharges:    monthly * 20,
			Churn:           churned,
		}
	}
	return dataset.NewSnapshot(sourceID, time.Now(), []dataset.CustomerRecord{
		base("a", true, dataset.ContractMonthToMonth, 90),
		base("b", false, dataset.ContractMonthToMonth, 60),
		base("c", false, dataset.ContractTwoYear, 30),
		base("d", true, dataset.ContractMonthToMonth, 110),
	})
}

// newTestHandler builds a handler over a one-source store.
func newTestHandler(t *testing.T, sources ...string) http.Handler {
	t.Helper()
	st := store.New(30 * time.Minute)
	for _, src := range sources {
		snap := testSnapshot(src)
		rep, err := report.NewBuilder().Build(snap)
		if err != nil {
			t.Fatalf("build report: %v", err)
		}
		st.Put(snap, rep)
	}
	return New(st, alerts.New(config.AlertsConfig{}))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	decode(t, rec, &resp)
	if resp.State != "ok" || resp.SourceCount != 1 {
		t.Errorf("health = %+v", resp)
	}
	if resp.TotalCustomers != 4 || resp.ChurnedCustomers != 2 || resp.OverallChurnRate != 50 {
		t.Errorf("totals = %+v, want 2/4 at 50%%", resp)
	}
}

func TestHealth_Empty(t *testing.T) {
	rec := get(t, newTestHandler(t), "/api/v1/health")
	var resp HealthResponse
	decode(t, rec, &resp)
	if resp.State != "empty" || resp.SourceCount != 0 {
		t.Errorf("health on empty store = %+v", resp)
	}
}

func TestGetReport(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/reports/telco")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp ReportResponse
	decode(t, rec, &resp)
	if resp.SourceID != "telco" || resp.TotalCustomers != 4 {
		t.Errorf("report = %+v", resp)
	}
	if len(resp.Segments) == 0 || len(resp.Ranking) == 0 {
		t.Error("report missing derived sections")
	}
}

func TestGetReport_NotFound(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/reports/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListReports_SortedBySource(t *testing.T) {
	rec := get(t, newTestHandler(t, "zeta", "alpha"), "/api/v1/reports")
	var resp []ReportResponse
	decode(t, rec, &resp)
	if len(resp) != 2 || resp[0].SourceID != "alpha" || resp[1].SourceID != "zeta" {
		t.Errorf("reports order wrong: %+v", resp)
	}
}

func TestSegments(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/segments/contract")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp SegmentsResponse
	decode(t, rec, &resp)
	if resp.Attribute != "contract" || len(resp.Segments) != 2 {
		t.Errorf("segments = %+v", resp)
	}
}

func TestSegments_UnknownAttribute(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/segments/shoe_size")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSegments_AmbiguousSource(t *testing.T) {
	h := newTestHandler(t, "a", "b")
	rec := get(t, h, "/api/v1/segments/contract")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when source is ambiguous", rec.Code)
	}
	rec = get(t, h, "/api/v1/segments/contract?source=a")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with explicit source", rec.Code)
	}
}

func TestCross(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/cross?a=contract&b=internet_service")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp CrossResponse
	decode(t, rec, &resp)
	if len(resp.Pairs) == 0 {
		t.Error("cross returned no pairs")
	}
}

func TestCross_MissingParams(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/cross?a=contract")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRankings_TopKeepsConfiguredCategories(t *testing.T) {
	st := store.New(30 * time.Minute)
	snap := testSnapshot("telco")
	b := report.NewBuilder()
	b.Ranking = []engine.CategoryDef{{Type: "Payment Method", Attribute: "payment_method"}}
	rep, err := b.Build(snap)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	st.Put(snap, rep)
	h := New(st, alerts.New(config.AlertsConfig{}))

	rec := get(t, h, "/api/v1/rankings?top=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp RankingResponse
	decode(t, rec, &resp)
	if len(resp.Ranking) == 0 {
		t.Fatal("no ranked rows")
	}
	for _, m := range resp.Ranking {
		if m.CategoryType != "Payment Method" {
			t.Errorf("recomputed ranking includes category %q, want only Payment Method", m.CategoryType)
		}
	}
}

func TestRankings(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/rankings?top=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp RankingResponse
	decode(t, rec, &resp)
	if len(resp.Ranking) != 2 {
		t.Errorf("got %d ranked rows, want 2", len(resp.Ranking))
	}
	if resp.Ranking[0].RiskRank != 1 {
		t.Errorf("first rank = %d, want 1", resp.Ranking[0].RiskRank)
	}
}

func TestRevenue(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/revenue")
	var resp RevenueResponse
	decode(t, rec, &resp)
	// Churned: a (90) + d (110) = 200/mo.
	if !resp.Churned || resp.Revenue.Customers != 2 || resp.Revenue.MonthlyTotal != 200 {
		t.Errorf("revenue = %+v, want churned 2 customers at 200/mo", resp)
	}

	rec = get(t, newTestHandler(t, "telco"), "/api/v1/revenue?churned=false")
	decode(t, rec, &resp)
	if resp.Churned || resp.Revenue.Customers != 2 || resp.Revenue.MonthlyTotal != 90 {
		t.Errorf("retained revenue = %+v, want 2 customers at 90/mo", resp)
	}
}

func TestCLV(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/clv")
	var resp CLVResponse
	decode(t, rec, &resp)
	if len(resp.Groups) != 2 {
		t.Errorf("clv groups = %+v, want churned and retained", resp.Groups)
	}
}

func TestTopCustomers(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/customers/top?by=monthly_charges&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp CustomersResponse
	decode(t, rec, &resp)
	if len(resp.Customers) != 1 || resp.Customers[0].CustomerID != "d" {
		t.Errorf("top customers = %+v, want just d", resp.Customers)
	}
	if len(resp.Customers[0].Recommendations) == 0 {
		t.Error("churned customer should carry recommendations")
	}
}

func TestTopCustomers_BadSortKey(t *testing.T) {
	rec := get(t, newTestHandler(t, "telco"), "/api/v1/customers/top?by=shoe_size")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, "telco")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

// --- APIKeyMiddleware ---

func TestAPIKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("mode none passes through", func(t *testing.T) {
		h := APIKeyMiddleware("none", "x-api-key", "", next)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("valid key accepted", func(t *testing.T) {
		h := APIKeyMiddleware("apikey", "x-api-key", "secret", next)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set("x-api-key", "secret")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		h := APIKeyMiddleware("apikey", "x-api-key", "secret", next)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set("x-api-key", "wrong")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing key rejected", func(t *testing.T) {
		h := APIKeyMiddleware("apikey", "x-api-key", "secret", next)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
