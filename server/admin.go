package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HandleAdminRooms lists every live room's code, capacity, and metrics,
// generalizing the teacher's single-room /metrics endpoint to this spec's
// many-rooms world.
// GET /admin/rooms
func HandleAdminRooms(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.allRoomSnapshots())
	}
}

// HandleAdminRoomMetrics serves one room's RoomMetrics.
// GET /admin/rooms/{code}/metrics
func HandleAdminRoomMetrics(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		code := roomCodeFromMetricsPath(r.URL.Path)
		if code == "" {
			http.Error(w, "missing room code", http.StatusBadRequest)
			return
		}
		metrics, ok := m.roomMetrics(code)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"room": code, "metrics": metrics})
	}
}

// roomCodeFromMetricsPath extracts {code} from "/admin/rooms/{code}/metrics".
// Go 1.21's net/http predates pattern-matching ServeMux routes, so this is
// a small hand-rolled parse rather than a router dependency — nothing in
// the retrieved pack pulls in a routing library either.
func roomCodeFromMetricsPath(path string) string {
	const prefix = "/admin/rooms/"
	const suffix = "/metrics"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	return path[len(prefix) : len(path)-len(suffix)]
}
