package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// API key failures are classified so callers can stop crawling instead of
// burning the rate limit on a dead key.
var (
	ErrAPIKeyExpired   = errors.New("api key expired (401)")
	ErrAPIKeyForbidden = errors.New("api key forbidden (403)")
)

// IsAPIKeyError reports whether err means the API key itself is unusable.
func IsAPIKeyError(err error) bool {
	return errors.Is(err, ErrAPIKeyExpired) || errors.Is(err, ErrAPIKeyForbidden)
}

const (
	// Rate limits for dev key (using conservative values to be safe)
	requestsPerSecond = 15 // Actual: 20, using 15 for safety
	requestsPer2Min   = 90 // Actual: 100, using 90 for safety

	rankedSoloQueue = "RANKED_SOLO_5x5"
	rankedQueueID   = 420
)

// Client is a rate-limited Riot API client bound to one platform region
// (e.g. euw1) and its regional routing host (e.g. europe).
type Client struct {
	apiKey     string
	platform   string
	routing    string
	httpClient *http.Client

	// Rate limiting
	mu          sync.Mutex
	shortWindow []time.Time // Requests in last second
	longWindow  []time.Time // Requests in last 2 minutes
}

// RoutingFor maps a platform region to its regional routing value used by
// match-v5 endpoints.
func RoutingFor(platform string) string {
	switch {
	case strings.HasPrefix(platform, "na"), strings.HasPrefix(platform, "br"), strings.HasPrefix(platform, "la"), strings.HasPrefix(platform, "oc"):
		return "americas"
	case strings.HasPrefix(platform, "kr"), strings.HasPrefix(platform, "jp"):
		return "asia"
	default:
		return "europe"
	}
}

// NewClient creates a new Riot API client for the given platform region.
// The API key is read from RIOT_API_KEY.
func NewClient(platform string) (*Client, error) {
	apiKey := os.Getenv("RIOT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY environment variable not set")
	}

	if platform == "" {
		platform = "euw1"
	}

	return &Client{
		apiKey:   apiKey,
		platform: platform,
		routing:  RoutingFor(platform),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		shortWindow: make([]time.Time, 0),
		longWindow:  make([]time.Time, 0),
	}, nil
}

func (c *Client) platformURL() string {
	return fmt.Sprintf("https://%s.api.riotgames.com", c.platform)
}

func (c *Client) routingURL() string {
	return fmt.Sprintf("https://%s.api.riotgames.com", c.routing)
}

// waitForRateLimit blocks until we can make another request
func (c *Client) waitForRateLimit() {
	for {
		c.mu.Lock()

		now := time.Now()

		// Clean up old entries
		oneSecondAgo := now.Add(-1 * time.Second)
		twoMinutesAgo := now.Add(-2 * time.Minute)

		newShort := make([]time.Time, 0, len(c.shortWindow))
		for _, t := range c.shortWindow {
			if t.After(oneSecondAgo) {
				newShort = append(newShort, t)
			}
		}
		c.shortWindow = newShort

		newLong := make([]time.Time, 0, len(c.longWindow))
		for _, t := range c.longWindow {
			if t.After(twoMinutesAgo) {
				newLong = append(newLong, t)
			}
		}
		c.longWindow = newLong

		if len(c.shortWindow) >= requestsPerSecond {
			waitTime := c.shortWindow[0].Add(time.Second).Sub(now) + 100*time.Millisecond
			c.mu.Unlock()
			time.Sleep(waitTime)
			continue
		}

		if len(c.longWindow) >= requestsPer2Min {
			waitTime := c.longWindow[0].Add(2*time.Minute).Sub(now) + 100*time.Millisecond
			c.mu.Unlock()
			fmt.Printf("      [Rate limit] %d req/2min, waiting %.1fs...\n", len(c.longWindow), waitTime.Seconds())
			time.Sleep(waitTime)
			continue
		}

		c.shortWindow = append(c.shortWindow, time.Now())
		c.longWindow = append(c.longWindow, time.Now())
		c.mu.Unlock()
		return
	}
}

// doRequest makes a rate-limited request. HTTP 429 responses are retried after
// the Retry-After duration indicated by the server.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	c.waitForRateLimit()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		waitTime := 10 // Default 10 seconds
		if retryAfter != "" {
			fmt.Sscanf(retryAfter, "%d", &waitTime)
		}
		fmt.Printf("      [429 Rate Limited] Waiting %d seconds...\n", waitTime)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(waitTime) * time.Second):
		}
		return c.doRequest(ctx, url, result)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("API returned 401: %w", ErrAPIKeyExpired)
	}

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("API returned 403: %w", ErrAPIKeyForbidden)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("API returned 404 Not Found - player/match may not exist")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// GetMatchHistory fetches recent ranked solo queue match IDs for a player
func (c *Client) GetMatchHistory(ctx context.Context, puuid string, count int) ([]string, error) {
	url := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?queue=%d&count=%d",
		c.routingURL(), puuid, rankedQueueID, count)

	var matchIDs []string
	err := c.doRequest(ctx, url, &matchIDs)
	return matchIDs, err
}

// GetMatch fetches match details
func (c *Client) GetMatch(ctx context.Context, matchID string) (*MatchResponse, error) {
	url := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.routingURL(), matchID)

	var match MatchResponse
	err := c.doRequest(ctx, url, &match)
	return &match, err
}

// GetTimeline fetches the match timeline
func (c *Client) GetTimeline(ctx context.Context, matchID string) (*TimelineResponse, error) {
	url := fmt.Sprintf("%s/lol/match/v5/matches/%s/timeline", c.routingURL(), matchID)

	var timeline TimelineResponse
	err := c.doRequest(ctx, url, &timeline)
	return &timeline, err
}

// GetLeaguePUUIDs returns the PUUIDs of the players currently in the given
// ranked tier. Apex tiers come from their dedicated league pages; the rest
// from the first page of division I entries.
func (c *Client) GetLeaguePUUIDs(ctx context.Context, tier string) ([]string, error) {
	tier = strings.ToUpper(tier)

	if endpoint, ok := ApexTiers[tier]; ok {
		reqURL := fmt.Sprintf("%s/lol/league/v4/%s/by-queue/%s", c.platformURL(), endpoint, rankedSoloQueue)

		var league LeagueListResponse
		if err := c.doRequest(ctx, reqURL, &league); err != nil {
			return nil, fmt.Errorf("failed to fetch %s league: %w", tier, err)
		}

		puuids := make([]string, 0, len(league.Entries))
		for _, e := range league.Entries {
			if e.PUUID != "" {
				puuids = append(puuids, e.PUUID)
			}
		}
		return puuids, nil
	}

	if _, ok := TierOrder[tier]; !ok {
		return nil, fmt.Errorf("unknown tier %q", tier)
	}

	reqURL := fmt.Sprintf("%s/lol/league/v4/entries/%s/%s/I?page=1",
		c.platformURL(), rankedSoloQueue, url.PathEscape(tier))

	var entries []LeagueEntry
	if err := c.doRequest(ctx, reqURL, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch %s entries: %w", tier, err)
	}

	puuids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.PUUID != "" {
			puuids = append(puuids, e.PUUID)
		}
	}
	return puuids, nil
}
