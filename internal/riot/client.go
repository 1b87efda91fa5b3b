package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder-harvester/internal/ratelimit"
	"golang.org/x/time/rate"
)

const (
	defaultRetryAfter         = 60 * time.Second
	defaultMaxThrottleRetries = 5
	defaultPerSecond          = 20
	matchIDPageSize           = 100
)

// Options configures an APIClient.
type Options struct {
	APIKey             string
	Regions            []Region
	MaxThrottleRetries int
	PerSecond          float64
	// BaseURL replaces https://<host>.api.riotgames.com for every request. Used in tests.
	BaseURL string
	// OnThrottle is called every time a 429 is received.
	OnThrottle func()
}

// APIClient talks to the Riot Games REST API.
type APIClient struct {
	httpClient         *http.Client
	apiKey             string
	regions            []Region
	maxThrottleRetries int
	limiter            *rate.Limiter
	baseURL            string
	onThrottle         func()
	sleep              func(ctx context.Context, d time.Duration) error
}

// Ensure APIClient implements the Client interface.
var _ Client = (*APIClient)(nil)

// NewClient creates a new Riot API client.
func NewClient(opts Options) *APIClient {
	retries := opts.MaxThrottleRetries
	if retries < 0 {
		retries = defaultMaxThrottleRetries
	}
	perSecond := opts.PerSecond
	if perSecond <= 0 {
		perSecond = defaultPerSecond
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	regions := opts.Regions
	if len(regions) == 0 {
		regions = []Region{RegionEUW, RegionEUNE, RegionKR, RegionNA}
	}
	return &APIClient{
		httpClient:         &http.Client{Timeout: 10 * time.Second},
		apiKey:             opts.APIKey,
		regions:            regions,
		maxThrottleRetries: retries,
		limiter:            rate.NewLimiter(rate.Limit(perSecond), burst),
		baseURL:            opts.BaseURL,
		onThrottle:         opts.OnThrottle,
		sleep:              ratelimit.Sleep,
	}
}

// ListTopPlayers fetches the challenger and grandmaster solo queue ladders of every region.
// A league that fails is logged and skipped, unless the failure is fatal.
func (c *APIClient) ListTopPlayers(ctx context.Context) ([]PlayerRecord, error) {
	var players []PlayerRecord
	for _, region := range c.regions {
		for _, league := range leagues {
			path := fmt.Sprintf("/lol/league/v4/%s/by-queue/%s", league.path, rankedQueue)
			var resp leagueListResponse
			if err := c.get(ctx, string(region), path, nil, &resp); err != nil {
				if IsFatal(err) || ctx.Err() != nil {
					return nil, err
				}
				log.Error("Failed to fetch league", "region", region, "tier", league.tier, "error", err)
				continue
			}
			for _, entry := range resp.Entries {
				if entry.SummonerID == "" {
					continue
				}
				players = append(players, PlayerRecord{
					SourcePlayerID: entry.SummonerID,
					RankTier:       league.tier,
					Region:         region,
				})
			}
			log.Info("Fetched league", "region", region, "tier", league.tier, "entries", len(resp.Entries))
		}
	}
	return players, nil
}

// FetchPlayerIdentifier resolves a platform summoner id to its PUUID.
func (c *APIClient) FetchPlayerIdentifier(ctx context.Context, sourcePlayerID string, region Region) (string, error) {
	var resp summonerResponse
	path := "/lol/summoner/v4/summoners/" + url.PathEscape(sourcePlayerID)
	if err := c.get(ctx, string(region), path, nil, &resp); err != nil {
		return "", err
	}
	if resp.PUUID == "" {
		return "", fmt.Errorf("%w: summoner %s has no puuid", ErrMalformed, sourcePlayerID)
	}
	return resp.PUUID, nil
}

// ListMatchIDs lists up to one page of match ids played since the given instant.
func (c *APIClient) ListMatchIDs(ctx context.Context, globalID string, region Region, since time.Time) ([]string, error) {
	route := region.RegionalRoute()
	if route == "" {
		return nil, fmt.Errorf("unsupported region %q", region)
	}
	query := url.Values{}
	query.Set("startTime", strconv.FormatInt(since.Unix(), 10))
	query.Set("start", "0")
	query.Set("count", strconv.Itoa(matchIDPageSize))

	var ids []string
	path := "/lol/match/v5/matches/by-puuid/" + url.PathEscape(globalID) + "/ids"
	if err := c.get(ctx, route, path, query, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// FetchMatchDetail fetches a single match.
func (c *APIClient) FetchMatchDetail(ctx context.Context, matchID string, region Region) (MatchDetailRecord, error) {
	route := region.RegionalRoute()
	if route == "" {
		return MatchDetailRecord{}, fmt.Errorf("unsupported region %q", region)
	}
	var resp matchResponse
	if err := c.get(ctx, route, "/lol/match/v5/matches/"+url.PathEscape(matchID), nil, &resp); err != nil {
		return MatchDetailRecord{}, err
	}
	if resp.Info == nil {
		return MatchDetailRecord{}, fmt.Errorf("%w: match %s has no info", ErrMalformed, matchID)
	}

	surrendered := make(map[int]bool)
	for _, p := range resp.Info.Participants {
		if p.TeamEarlySurrendered {
			surrendered[p.TeamID] = true
		}
	}
	record := MatchDetailRecord{
		MatchID:         matchID,
		DurationSeconds: resp.Info.GameDuration,
		GameVersion:     resp.Info.GameVersion,
		QueueID:         resp.Info.QueueID,
		StartTimestamp:  resp.Info.GameStartTimestamp,
	}
	for _, team := range resp.Info.Teams {
		record.Teams = append(record.Teams, TeamRecord{
			TeamID:         team.TeamID,
			Win:            team.Win,
			EarlySurrender: surrendered[team.TeamID],
		})
	}
	if _, err := record.WinningTeamID(); err != nil {
		return MatchDetailRecord{}, err
	}
	return record, nil
}

// get performs a GET and decodes the JSON body into out. A 429 is retried after the
// server-indicated interval, at most maxThrottleRetries times.
func (c *APIClient) get(ctx context.Context, host, path string, query url.Values, out any) error {
	endpoint := c.endpoint(host, path, query)
	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)
		req.Header.Set("Accept", "application/json")

		log.Debug("Requesting Riot API", "url", endpoint, "attempt", attempt)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header)
			drain(resp)
			if attempt > c.maxThrottleRetries {
				return &ThrottledError{Attempts: attempt, RetryAfter: wait}
			}
			if c.onThrottle != nil {
				c.onThrottle()
			}
			log.Warn("Rate limit exceeded, retrying", "url", endpoint, "retry_after", wait, "attempt", attempt)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		err = decode(resp, out)
		drain(resp)
		return err
	}
}

func (c *APIClient) endpoint(host, path string, query url.Values) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + host + ".api.riotgames.com"
	}
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func decode(resp *http.Response, out any) error {
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("Received non-OK HTTP status from Riot API", "status", resp.StatusCode, "body", string(body))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrMalformed, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
