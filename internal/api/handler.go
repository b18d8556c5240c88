package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/churnscope/churnscope/internal/alerts"
	"github.com/churnscope/churnscope/internal/dataset"
	"github.com/churnscope/churnscope/internal/engine"
	"github.com/churnscope/churnscope/internal/store"
)

const defaultTopLimit = 20

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads analysis state from the report store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given store and alert engine and
// registers all routes.
func New(st *store.Store, ae *alerts.Engine) http.Handler {
	h := &Handler{store: st, alerts: ae, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/reports", h.listReports)
	h.mux.HandleFunc("/api/v1/reports/", h.getReport) // subtree — extracts {source}
	h.mux.HandleFunc("/api/v1/segments/", h.segments) // subtree — extracts {attribute}
	h.mux.HandleFunc("/api/v1/cross", h.cross)
	h.mux.HandleFunc("/api/v1/rankings", h.rankings)
	h.mux.HandleFunc("/api/v1/revenue", h.revenue)
	h.mux.HandleFunc("/api/v1/clv", h.clv)
	h.mux.HandleFunc("/api/v1/customers/top", h.topCustomers)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — totals across all live sources.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{SourceCount: len(entries)}
	if h.alerts != nil {
		resp.AlertCount = len(h.alerts.Active())
	}

	if len(entries) == 0 {
		resp.State = "empty"
		jsonResp(w, http.StatusOK, resp)
		return
	}

	var oldest time.Time
	for _, e := range entries {
		resp.TotalCustomers += e.Report.TotalCustomers
		resp.ChurnedCustomers += e.Report.ChurnedCustomers
		if oldest.IsZero() || e.UpdatedAt.Before(oldest) {
			oldest = e.UpdatedAt
		}
	}
	if resp.TotalCustomers > 0 {
		resp.OverallChurnRate = engine.Round2(
			float64(resp.ChurnedCustomers) / float64(resp.TotalCustomers) * 100)
	}
	resp.RiskTier = engine.RiskTier(resp.OverallChurnRate)
	resp.State = "ok"
	resp.OldestReport = oldest.UTC().Format(time.RFC3339)
	jsonResp(w, http.StatusOK, resp)
}

// listReports returns GET /api/v1/reports — all live reports.
func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jsonResp(w, http.StatusOK, BuildReports(h.store))
}

// getReport returns GET /api/v1/reports/{source} — a single live report.
func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	source := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if source == "" {
		h.listReports(w, r)
		return
	}

	e, ok := h.liveEntry(source)
	if !ok {
		jsonErr(w, http.StatusNotFound, "report not found")
		return
	}
	jsonResp(w, http.StatusOK, toReportResponse(e))
}

// segments returns GET /api/v1/segments/{attribute}?source= — the churn
// breakdown for one attribute, computed on demand so any registry attribute
// works, not just the configured report set.
func (h *Handler) segments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	attr := strings.TrimPrefix(r.URL.Path, "/api/v1/segments/")
	if attr == "" {
		jsonErr(w, http.StatusBadRequest, "attribute is required")
		return
	}

	e, ok := h.sourceEntry(w, r)
	if !ok {
		return
	}

	metrics, err := engine.Segment(e.Snapshot, attr)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownAttribute) {
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, SegmentsResponse{
		SourceID:  e.Snapshot.SourceID(),
		Attribute: attr,
		Segments:  metrics,
	})
}

// cross returns GET /api/v1/cross?a=&b=&source= — a two-attribute breakdown.
func (h *Handler) cross(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if a == "" || b == "" {
		jsonErr(w, http.StatusBadRequest, "query params a and b are required")
		return
	}

	e, ok := h.sourceEntry(w, r)
	if !ok {
		return
	}

	pairs, err := engine.CrossSegment(e.Snapshot, a, b)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownAttribute) {
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, CrossResponse{SourceID: e.Snapshot.SourceID(), Pairs: pairs})
}

// rankings returns GET /api/v1/rankings?top=&source= — the driver ranking.
func (h *Handler) rankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	e, ok := h.sourceEntry(w, r)
	if !ok {
		return
	}

	ranking := e.Report.Ranking
	if top := r.URL.Query().Get("top"); top != "" {
		n, err := strconv.Atoi(top)
		if err != nil || n < 1 {
			jsonErr(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		defs := e.Report.RankingCategories
		if len(defs) == 0 {
			defs = engine.DefaultRankingCategories()
		}
		var rerr error
		ranking, rerr = engine.RankDrivers(e.Snapshot, defs, n)
		if rerr != nil {
			jsonErr(w, http.StatusInternalServerError, rerr.Error())
			return
		}
	}
	jsonResp(w, http.StatusOK, RankingResponse{SourceID: e.Report.SourceID, Ranking: ranking})
}

// revenue returns GET /api/v1/revenue?churned=&source= — revenue impact of
// the churned (default) or retained customer set.
func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	e, ok := h.sourceEntry(w, r)
	if !ok {
		return
	}

	churned := true
	if v := r.URL.Query().Get("churned"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, "churned must be true or false")
			return
		}
		churned = parsed
	}

	pred := engine.Churned
	if !churned {
		pred = engine.Retained
	}
	jsonResp(w, http.StatusOK, RevenueResponse{
		SourceID: e.Snapshot.SourceID(),
		Churned:  churned,
		Revenue:  engine.RevenueImpact(e.Snapshot, pred),
	})
}

// clv returns GET /api/v1/clv?source= — lifetime-value stats per churn group.
func (h *Handler) clv(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	e, ok := h.sourceEntry(w, r)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, CLVResponse{
		SourceID: e.Report.SourceID,
		Groups:   e.Report.CLV,
	})
}

// topCustomers returns GET /api/v1/customers/top?by=&limit=&churned=&source=
// — the highest-value customers of the filtered set, with retention
// recommendations for churned ones.
func (h *Handler) topCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	e, ok := h.sourceEntry(w, r)
	if !ok {
		return
	}

	sortKey := r.URL.Query().Get("by")
	if sortKey == "" {
		sortKey = "total_charges"
	}
	limit := defaultTopLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonErr(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	pred := engine.Churned
	if v := r.URL.Query().Get("churned"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, "churned must be true or false")
			return
		}
		if !parsed {
			pred = engine.Retained
		}
	}

	records, err := engine.TopByValue(e.Snapshot, pred, sortKey, limit)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownSortKey) {
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]CustomerResponse, 0, len(records))
	for i := range records {
		out = append(out, toCustomerResponse(&records[i]))
	}
	jsonResp(w, http.StatusOK, CustomersResponse{
		SourceID:  e.Snapshot.SourceID(),
		SortKey:   sortKey,
		Customers: out,
	})
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// --- helpers ----------------------------------------------------------------

// sourceEntry resolves the ?source= param (defaulting to the only live
// source) and writes the error response itself when resolution fails.
func (h *Handler) sourceEntry(w http.ResponseWriter, r *http.Request) (*store.Entry, bool) {
	source := r.URL.Query().Get("source")
	if source == "" {
		entries := h.store.List()
		switch len(entries) {
		case 0:
			jsonErr(w, http.StatusNotFound, "no live reports")
			return nil, false
		case 1:
			return entries[0], true
		default:
			jsonErr(w, http.StatusBadRequest, "multiple sources loaded — pass ?source=")
			return nil, false
		}
	}

	e, ok := h.liveEntry(source)
	if !ok {
		jsonErr(w, http.StatusNotFound, "report not found")
		return nil, false
	}
	return e, true
}

// liveEntry fetches an entry and filters out stale ones.
func (h *Handler) liveEntry(source string) (*store.Entry, bool) {
	e, ok := h.store.Get(source)
	if !ok {
		return nil, false
	}
	if time.Since(e.UpdatedAt) > h.store.TTL() {
		return nil, false
	}
	return e, true
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// toReportResponse maps a store.Entry to its JSON representation.
func toReportResponse(e *store.Entry) ReportResponse {
	rep := e.Report
	return ReportResponse{
		SourceID:         rep.SourceID,
		GeneratedAt:      rep.GeneratedAt.UTC().Format(time.RFC3339),
		TotalCustomers:   rep.TotalCustomers,
		ChurnedCustomers: rep.ChurnedCustomers,
		OverallChurnRate: rep.OverallChurnRate,
		RiskTier:         rep.RiskTier,
		Segments:         rep.Segments,
		Cross:            rep.Cross,
		Ranking:          rep.Ranking,
		ChurnedRevenue:   rep.ChurnedRevenue,
		CLV:              rep.CLV,
		Profiles:         rep.Profiles,
		LastRefreshed:    e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toCustomerResponse(r *dataset.CustomerRecord) CustomerResponse {
	resp := CustomerResponse{
		CustomerID:      r.ID,
		Contract:        r.Contract,
		InternetService: r.InternetService,
		PaymentMethod:   r.PaymentMethod,
		Tenure:          r.Tenure,
		MonthlyCharges:  r.MonthlyCharges,
		TotalCharges:    r.TotalCharges,
		CLV:             engine.Round2(float64(r.Tenure) * r.MonthlyCharges),
		Churned:         r.Churn,
	}
	if r.Churn {
		resp.Recommendations = engine.Recommendations(r)
	}
	return resp
}
