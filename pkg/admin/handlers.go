package admin

import (
	"encoding/json"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

// handleStats serves GET /stats: buffer manager occupancy, B+-tree
// root/shape parameters, and base relation size, per SPEC_FULL.md §5.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	bmStats := s.bm.Stats()
	idxStats := s.idx.Stats()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"buffer": map[string]int{
			"capacity": bmStats.Capacity,
			"resident": bmStats.Resident,
			"pinned":   bmStats.Pinned,
			"dirty":    bmStats.Dirty,
		},
		"index": map[string]interface{}{
			"root_page_no": idxStats.RootPageNo,
			"root_is_leaf": idxStats.RootIsLeaf,
			"leaf_cap":     idxStats.LeafCap,
			"int_cap":      idxStats.IntCap,
		},
		"relation": map[string]interface{}{
			"record_count": s.rel.RecordCount(),
			"last_page_no": s.rel.LastPageNo(),
		},
	})
}
