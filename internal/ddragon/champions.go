package ddragon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// championData is the raw Data Dragon champion entry. Key is the numeric ID
// as a string; ID is the internal name (e.g. "MonkeyKing").
type championData struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ChampionRegistry holds the numeric champion ID -> name mapping, used to
// resolve ban champion IDs from the match feed.
type ChampionRegistry struct {
	champions map[int]string
	mu        sync.RWMutex
	loaded    bool
}

// NewChampionRegistry creates a new champion registry
func NewChampionRegistry() *ChampionRegistry {
	return &ChampionRegistry{
		champions: make(map[int]string),
	}
}

// Load fetches champion data from Data Dragon
func (r *ChampionRegistry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	client := &http.Client{Timeout: 10 * time.Second}

	version, err := latestVersion(client)
	if err != nil {
		return err
	}

	champURL := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", baseURL, version)
	resp, err := client.Get(champURL)
	if err != nil {
		return fmt.Errorf("failed to fetch champions: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Data map[string]championData `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to parse champions: %w", err)
	}

	for _, champ := range payload.Data {
		key, err := strconv.Atoi(champ.Key)
		if err != nil {
			continue
		}
		r.champions[key] = champ.ID
	}

	r.loaded = true
	return nil
}

// Name resolves a numeric champion ID to its internal name. Returns "" for
// unknown IDs (including the -1 the ban feed uses for skipped bans).
func (r *ChampionRegistry) Name(id int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.champions[id]
}

// Count returns the number of loaded champions.
func (r *ChampionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.champions)
}
