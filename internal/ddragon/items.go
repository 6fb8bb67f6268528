// Package ddragon loads static game data (items, champions) from the Data
// Dragon CDN and serves it as in-memory registries.
package ddragon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"meta-scanner/internal/meta"
)

const baseURL = "https://ddragon.leagueoflegends.com"

// itemData is the raw Data Dragon item entry. Into lists upgrade targets as
// stringified ids.
type itemData struct {
	Name string   `json:"name"`
	Into []string `json:"into"`
	Tags []string `json:"tags"`
	Gold struct {
		Total int `json:"total"`
	} `json:"gold"`
}

// ItemRegistry holds the item ID -> build-relationship mapping. It implements
// meta.ItemCatalog.
type ItemRegistry struct {
	items   map[int]meta.ItemInfo
	mu      sync.RWMutex
	loaded  bool
	version string
}

// NewItemRegistry creates a new item registry
func NewItemRegistry() *ItemRegistry {
	return &ItemRegistry{
		items: make(map[int]meta.ItemInfo),
	}
}

// Load fetches item data from Data Dragon
func (r *ItemRegistry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	client := &http.Client{Timeout: 10 * time.Second}

	version, err := latestVersion(client)
	if err != nil {
		return err
	}
	r.version = version

	itemURL := fmt.Sprintf("%s/cdn/%s/data/en_US/item.json", baseURL, version)
	resp, err := client.Get(itemURL)
	if err != nil {
		return fmt.Errorf("failed to fetch items: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Data map[string]itemData `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to parse items: %w", err)
	}

	for idStr, item := range payload.Data {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		info := meta.ItemInfo{
			Name: item.Name,
			Tags: item.Tags,
		}
		for _, intoStr := range item.Into {
			if into, err := strconv.Atoi(intoStr); err == nil {
				info.Into = append(info.Into, into)
			}
		}
		r.items[id] = info
	}

	r.loaded = true
	return nil
}

// Item returns the build relationships for a given item ID.
func (r *ItemRegistry) Item(id int) (meta.ItemInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.items[id]
	return info, ok
}

// Count returns the number of loaded items.
func (r *ItemRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Version returns the Data Dragon version the registry was loaded from.
func (r *ItemRegistry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

func latestVersion(client *http.Client) (string, error) {
	resp, err := client.Get(baseURL + "/api/versions.json")
	if err != nil {
		return "", fmt.Errorf("failed to fetch versions: %w", err)
	}
	defer resp.Body.Close()

	var versions []string
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return "", fmt.Errorf("failed to parse versions: %w", err)
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions available")
	}
	return versions[0], nil
}
