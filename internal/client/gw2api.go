package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/models"
)

// HTTPError is returned for non-2xx responses from the GW2 API.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gw2 api returned status %d for %s", e.Status, e.URL)
}

// legacyWorldCodes maps retired world codes still reported by the matches
// endpoint to their canonical replacement. Kept as a table so further
// remaps can be added if more show up in the data.
var legacyWorldCodes = map[int]int{
	2101: 2015, // Bava Nisos
}

// Client is the GW2 API client. All requests are serialized through a
// single-slot gate and spaced at least minDelay apart; the API rejects
// bursts well below its documented limit in practice.
type Client struct {
	baseURL    string
	region     string
	httpClient *http.Client
	gate       chan struct{}
	limiter    *rate.Limiter
}

// NewClient creates a GW2 API client. minDelay is the floor between
// consecutive outbound requests.
func NewClient(baseURL, region string, timeout, minDelay time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		region:  region,
		gate:    make(chan struct{}, 1),
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a rate-limited GET. The gate guarantees no two requests are
// in flight at once regardless of caller; the limiter enforces the spacing
// floor between request starts. The client does not retry, retry policy
// belongs to the sync jobs.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	select {
	case c.gate <- struct{}{}:
		defer func() { <-c.gate }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("url", url).Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(path, "network_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(path, "read_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordAPICall(path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
		return nil, &HTTPError{Status: resp.StatusCode, URL: url}
	}

	metrics.RecordAPICall(path, "ok", time.Since(start).Seconds())
	log.Debug().
		Str("url", url).
		Int("size", len(body)).
		Dur("duration", time.Since(start)).
		Msg("API request successful")

	return body, nil
}

// FetchTeamMembership fetches the current guild to team assignment map for
// the configured region.
func (c *Client) FetchTeamMembership(ctx context.Context) (map[string]string, error) {
	body, err := c.get(ctx, fmt.Sprintf("v2/wvw/guilds/%s", c.region))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team membership: %w", err)
	}

	var membership map[string]string
	if err := json.Unmarshal(body, &membership); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team membership: %w", err)
	}

	return membership, nil
}

// FetchGuild fetches name and tag for a single guild.
func (c *Client) FetchGuild(ctx context.Context, guildID string) (*models.GuildInput, error) {
	body, err := c.get(ctx, fmt.Sprintf("v2/guild/%s", guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}

	var guild models.GuildInput
	if err := json.Unmarshal(body, &guild); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guild %s: %w", guildID, err)
	}
	guild.ID = guildID

	return &guild, nil
}

// matchResponse is the subset of the matches endpoint the sync needs.
type matchResponse struct {
	Worlds struct {
		Red   int `json:"red"`
		Blue  int `json:"blue"`
		Green int `json:"green"`
	} `json:"worlds"`
	VictoryPoints struct {
		Red   int `json:"red"`
		Blue  int `json:"blue"`
		Green int `json:"green"`
	} `json:"victory_points"`
}

// FetchMatchup fetches one tier's standings, remapping legacy world codes
// onto canonical team IDs before they reach the store.
func (c *Client) FetchMatchup(ctx context.Context, tier int) (models.TierMatchup, error) {
	if err := models.ValidateTier(tier); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, fmt.Sprintf("v2/wvw/matches/%s-%d", c.regionCode(), tier))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tier %d matchup: %w", tier, err)
	}

	var match matchResponse
	if err := json.Unmarshal(body, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tier %d matchup: %w", tier, err)
	}

	return models.TierMatchup{
		models.ColorRed:   {TeamID: normalizeTeamID(match.Worlds.Red), Score: match.VictoryPoints.Red},
		models.ColorBlue:  {TeamID: normalizeTeamID(match.Worlds.Blue), Score: match.VictoryPoints.Blue},
		models.ColorGreen: {TeamID: normalizeTeamID(match.Worlds.Green), Score: match.VictoryPoints.Green},
	}, nil
}

// regionCode returns the match ID prefix for the configured region.
func (c *Client) regionCode() string {
	if c.region == "na" {
		return "1"
	}
	return "2"
}

// normalizeTeamID converts a world code from the matches endpoint into the
// team ID format used everywhere else ("1" prefix), translating legacy
// codes first.
func normalizeTeamID(worldCode int) string {
	if canonical, ok := legacyWorldCodes[worldCode]; ok {
		worldCode = canonical
	}
	return fmt.Sprintf("1%d", worldCode)
}
