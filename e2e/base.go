package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.Require().Zero(s.Config.Players%2, "E2E_PLAYERS must be even")
}

// Banner prints a colorized header for one scenario step in logs
func (s *BaseSuite) Banner(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// FakePlayerAPI boots an HTTP double of the player lookup endpoint.
// Elo values come from the given map, unknown nicknames answer 404 and
// requests without a bearer token answer 401, like the real provider.
func (s *BaseSuite) FakePlayerAPI(elos map[string]int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		nickname := r.URL.Query().Get("nickname")
		elo, ok := elos[nickname]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		payload := map[string]any{
			"player_id": "id-" + nickname,
			"nickname":  nickname,
			"country":   "fr",
			"games": map[string]any{
				"cs2": map[string]any{"faceit_elo": elo, "skill_level": elo / 300},
			},
		}
		if s.Config.DebugJSON {
			body, _ := json.MarshalIndent(payload, "", "  ")
			s.T().Logf("PLAYERS %s -> %s", nickname, body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}
