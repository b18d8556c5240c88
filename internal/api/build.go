package api

import (
	"sort"

	"github.com/churnscope/churnscope/internal/store"
)

// BuildReports maps every live store entry to its JSON representation,
// sorted by source ID. Shared by the reports endpoint and the WebSocket
// broadcast.
func BuildReports(st *store.Store) []ReportResponse {
	entries := st.List()
	out := make([]ReportResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toReportResponse(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}
