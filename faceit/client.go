// Package faceit is a thin client for the FACEIT Data API v4.
// It only covers player lookup by nickname, which is all the mix
// organizer needs to resolve ratings.
package faceit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"mix-lab/domain"
	"mix-lab/errors"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://open.faceit.com/data/v4"

// Client shares one token bucket across every caller, so a burst of
// rating lookups cannot hammer the provider past its quota.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	log        *slog.Logger
}

func NewClient(baseURL, apiKey string, ratePerSecond float64, burst int, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		log:        log,
	}
}

type playerPayload struct {
	PlayerID string                 `json:"player_id"`
	Nickname string                 `json:"nickname"`
	Country  string                 `json:"country"`
	Avatar   string                 `json:"avatar"`
	Games    map[string]gamePayload `json:"games"`
}

type gamePayload struct {
	FaceitElo  int `json:"faceit_elo"`
	SkillLevel int `json:"skill_level"`
}

// Profile resolves a nickname into a player profile.
// CS2 stats win over the legacy CSGO ones when the player has both.
func (c *Client) Profile(ctx context.Context, nickname string) (domain.PlayerProfile, error) {
	payload, err := c.fetchPlayer(ctx, nickname)
	if err != nil {
		return domain.PlayerProfile{}, err
	}

	game, ok := payload.Games["cs2"]
	if !ok {
		game, ok = payload.Games["csgo"]
	}
	// The ladder starts at 100, an absent elo decodes as zero.
	if !ok || game.FaceitElo == 0 {
		return domain.PlayerProfile{}, errors.ErrNoGameStats
	}

	return domain.PlayerProfile{
		PlayerID: payload.PlayerID,
		Nickname: payload.Nickname,
		Country:  payload.Country,
		Avatar:   payload.Avatar,
		Elo:      game.FaceitElo,
		Level:    game.SkillLevel,
	}, nil
}

// Rating is the fast path used by balancing runs.
func (c *Client) Rating(ctx context.Context, nickname string) (int, error) {
	profile, err := c.Profile(ctx, nickname)
	if err != nil {
		return 0, err
	}
	return profile.Elo, nil
}

func (c *Client) fetchPlayer(ctx context.Context, nickname string) (playerPayload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return playerPayload{}, err
	}

	endpoint := fmt.Sprintf("%s/players?nickname=%s", c.baseURL, url.QueryEscape(nickname))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return playerPayload{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return playerPayload{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Keep going
	case http.StatusNotFound:
		return playerPayload{}, errors.ErrPlayerNotFound
	default:
		c.log.Warn("Unexpected FACEIT answer", "status", resp.StatusCode, "nickname", nickname)
		return playerPayload{}, fmt.Errorf("faceit answered with status %d", resp.StatusCode)
	}

	var payload playerPayload
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return playerPayload{}, fmt.Errorf("decoding faceit payload: %w", err)
	}
	return payload, nil
}
