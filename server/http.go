package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"platformserver/config"
)

var bootTime = time.Now()

// HandleRoot answers the bare liveness probe from spec.md §6. ServeMux
// routes every unmatched path here (the "/" pattern is a catch-all), so
// anything other than the exact root is a 404.
// GET /
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Game Server Running"})
}

// HandleHealth answers the operational health probe from spec.md §6.
// GET /health
func HandleHealth(cfg config.Config, m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"env":            cfg.Env,
			"uptime":         time.Since(bootTime).Seconds(),
			"timestamp":      time.Now().UnixMilli(),
			"rooms":          m.RoomCount(),
			"players":        m.PlayerCount(),
			"tickRate":       cfg.TickRate,
			"allowedOrigins": cfg.AllowedOrigins,
		})
	}
}

// originAllowed implements the CORS policy from spec.md §6: no Origin
// header (same-origin or a non-browser client) is always allowed; in
// development every origin is allowed; otherwise only an exact match in
// cfg.AllowedOrigins or any *.vercel.app host is allowed.
func originAllowed(cfg config.Config, origin string) bool {
	if origin == "" {
		return true
	}
	if !cfg.IsProduction() {
		return true
	}
	for _, allowed := range cfg.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	if u, err := url.Parse(origin); err == nil {
		if strings.HasSuffix(u.Hostname(), ".vercel.app") {
			return true
		}
	}
	return false
}

// withCORS wraps next with the origin policy above: no library in the
// retrieved pack provides CORS middleware, so this stays on stdlib
// net/http (see DESIGN.md).
func withCORS(cfg config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(cfg, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewMux wires the full HTTP surface: the websocket endpoint, the public
// liveness/health probes, and the admin metrics endpoints, all behind the
// CORS policy above.
func NewMux(cfg config.Config, m *Manager) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HandleRoot)
	mux.HandleFunc("/health", HandleHealth(cfg, m))
	mux.HandleFunc("/ws", HandleWS(m))
	mux.HandleFunc("/admin/rooms", HandleAdminRooms(m))
	mux.HandleFunc("/admin/rooms/", HandleAdminRoomMetrics(m))
	return withCORS(cfg, mux)
}
