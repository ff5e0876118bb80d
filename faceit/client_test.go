package faceit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"mix-lab/errors"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", 1000, 10, slog.Default())
}

func TestClient_Profile_PrefersCS2(t *testing.T) {
	req := require.New(t)
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/players", r.URL.Path)
		req.Equal("ana_cs", r.URL.Query().Get("nickname"))
		req.Equal("Bearer test-key", r.Header.Get("Authorization"))

		fmt.Fprint(w, `{
			"player_id": "p-123",
			"nickname": "ana_cs",
			"country": "fr",
			"avatar": "https://cdn.example/ana.png",
			"games": {
				"cs2":  {"faceit_elo": 2100, "skill_level": 10},
				"csgo": {"faceit_elo": 1800, "skill_level": 9}
			}
		}`)
	})

	profile, err := client.Profile(context.Background(), "ana_cs")

	req.NoError(err)
	req.Equal("p-123", profile.PlayerID)
	req.Equal(2100, profile.Elo)
	req.Equal(10, profile.Level)
	req.Equal("fr", profile.Country)
}

func TestClient_Profile_FallsBackToCSGO(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"player_id": "p-456",
			"nickname": "bob_cs",
			"games": {"csgo": {"faceit_elo": 1450, "skill_level": 7}}
		}`)
	})

	profile, err := client.Profile(context.Background(), "bob_cs")

	require.NoError(t, err)
	require.Equal(t, 1450, profile.Elo)
	require.Equal(t, 7, profile.Level)
}

func TestClient_Profile_UnknownNickname(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Profile(context.Background(), "ghost")

	require.ErrorIs(t, err, errors.ErrPlayerNotFound)
}

func TestClient_Profile_NoCounterStrikeStats(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"player_id": "p-789", "nickname": "chess_only", "games": {"chess": {"faceit_elo": 1200}}}`)
	})

	_, err := client.Profile(context.Background(), "chess_only")

	require.ErrorIs(t, err, errors.ErrNoGameStats)
}

func TestClient_Rating(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"player_id": "p-123", "nickname": "ana_cs", "games": {"cs2": {"faceit_elo": 2100, "skill_level": 10}}}`)
	})

	rating, err := client.Rating(context.Background(), "ana_cs")

	require.NoError(t, err)
	require.Equal(t, 2100, rating)
}

func TestClient_Rating_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Rating(context.Background(), "ana_cs")

	require.Error(t, err)
	require.NotErrorIs(t, err, errors.ErrPlayerNotFound)
}
