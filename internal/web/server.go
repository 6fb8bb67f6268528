// Package web serves the aggregated statistics over HTTP: a tier list and a
// per-champion detail view, both filterable by role and rank bucket.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"meta-scanner/internal/db"
	"meta-scanner/internal/meta"
)

const defaultRank = "EMERALD_PLUS"

type Server struct {
	db         *db.DB
	httpServer *http.Server
}

func NewServer(database *db.DB, port string) *Server {
	s := &Server{db: database}

	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/tierlist", s.handleTierList).Methods("GET")
	api.HandleFunc("/champions/{name}", s.handleChampionDetail).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleTierList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	rank := rankParam(query.Get("rank"))
	role := strings.ToUpper(query.Get("role"))
	tiers := meta.TargetTiers(rank)

	total, err := s.db.CountScanned(ctx, tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rows, err := s.db.GetTierListRows(ctx, tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	matchups, err := s.db.GetTierListMatchups(ctx, tiers, meta.MinCounterMatches)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entries := meta.BuildTierList(rows, matchups, total, role)
	writeJSON(w, map[string]interface{}{
		"rank":         rank,
		"role":         role,
		"totalMatches": total,
		"champions":    entries,
	})
}

func (s *Server) handleChampionDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]
	query := r.URL.Query()

	rank := rankParam(query.Get("rank"))
	tiers := meta.TargetTiers(rank)

	rows, err := s.db.GetChampionRows(ctx, name, meta.Roles, tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	role, filtered := selectRole(strings.ToUpper(query.Get("role")), rows)
	if len(filtered) == 0 {
		http.Error(w, "champion not found", http.StatusNotFound)
		return
	}

	roles := []string{role}
	if role == meta.RoleAll {
		roles = meta.Roles
	}
	matchups, err := s.db.GetMatchups(ctx, name, roles, tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	duos, err := s.db.GetDuos(ctx, name, roles, tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	bans, err := s.db.GetBanCount(ctx, name, tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := s.db.CountScanned(ctx, tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	detail := meta.RollupChampion(name, role, rank, filtered, matchups, duos, bans, total)
	if detail == nil {
		http.Error(w, "champion not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func rankParam(rank string) string {
	rank = strings.ToUpper(rank)
	if rank == "" {
		return defaultRank
	}
	return rank
}

// selectRole picks the rows the detail rollup should see. An explicit ALL
// keeps every lane role so the rollup merges across them; an empty role
// defaults to the champion's most played lane; anything else filters to that
// lane.
func selectRole(role string, rows []meta.ChampionStatRow) (string, []meta.ChampionStatRow) {
	if role == meta.RoleAll {
		return meta.RoleAll, rows
	}
	if role == "" {
		role = dominantRole(rows)
	}
	var filtered []meta.ChampionStatRow
	for _, row := range rows {
		if row.Role == role {
			filtered = append(filtered, row)
		}
	}
	return role, filtered
}

func dominantRole(rows []meta.ChampionStatRow) string {
	matches := make(map[string]int)
	for _, row := range rows {
		matches[row.Role] += row.Matches
	}
	best := ""
	for role, n := range matches {
		if best == "" || n > matches[best] || (n == matches[best] && role < best) {
			best = role
		}
	}
	return best
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}
