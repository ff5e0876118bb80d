package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"mix-lab/domain"
	"mix-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newSessionTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func balancedSession(at time.Time) domain.Session {
	session := domain.NewSession(domain.Location{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}, 4, at)
	session.State = domain.BALANCED
	session.Roster = domain.Roster{
		{ID: "u1", Name: "Ana", Nickname: "ana_cs", Rating: 100},
		{ID: "u2", Name: "Bob", Nickname: "bob_cs", Rating: 90},
		{ID: "u3", Name: "Carl", Nickname: "carl_cs", Rating: 80},
		{ID: "u4", Name: "Dana", Nickname: "dana_cs", Rating: 70},
	}
	session.TeamA = domain.Team{session.Roster[0], session.Roster[3]}
	session.TeamB = domain.Team{session.Roster[1], session.Roster[2]}
	return session
}

func TestSessionRepository_SaveAndList_RoundTrip(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(newSessionTestDB(t), slog.Default())
	at := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

	original := balancedSession(at)
	original.Failed = []string{"u9"}
	req.NoError(repo.Save(original))

	stored, err := repo.List()
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal(original, stored[0])
}

func TestSessionRepository_SaveReplacesWholeSnapshot(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(newSessionTestDB(t), slog.Default())
	at := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

	session := domain.NewSession(domain.Location{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}, 4, at)
	req.NoError(repo.Save(session))

	session.Roster = domain.Roster{{ID: "u1", Name: "Ana", Nickname: "ana_cs"}}
	session.State = domain.BALANCING
	req.NoError(repo.Save(session))

	stored, err := repo.List()
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal(domain.BALANCING, stored[0].State)
	req.Len(stored[0].Roster, 1)
}

func TestSessionRepository_LatestInChannel(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(newSessionTestDB(t), slog.Default())
	at := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

	older := domain.NewSession(domain.Location{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}, 4, at)
	newer := domain.NewSession(domain.Location{GuildID: "g1", ChannelID: "c1", MessageID: "m2"}, 4, at.Add(time.Second))
	elsewhere := domain.NewSession(domain.Location{GuildID: "g1", ChannelID: "c2", MessageID: "m3"}, 4, at.Add(time.Minute))

	req.NoError(repo.Save(older))
	req.NoError(repo.Save(newer))
	req.NoError(repo.Save(elsewhere))

	latest, err := repo.LatestInChannel("g1", "c1")
	req.NoError(err)
	req.Equal(newer.ID, latest.ID)
	req.Equal("m2", latest.Location.MessageID)

	_, err = repo.LatestInChannel("g1", "empty-channel")
	req.ErrorIs(err, errors.ErrSessionNotFound)
}

func TestSessionRepository_Delete_Idempotent(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(newSessionTestDB(t), slog.Default())
	session := balancedSession(time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC))

	req.NoError(repo.Save(session))
	req.NoError(repo.Delete(session))
	// Second delete must stay silent.
	req.NoError(repo.Delete(session))

	stored, err := repo.List()
	req.NoError(err)
	req.Empty(stored)
}

func TestSessionRepository_List_SkipsCorruptedRows(t *testing.T) {
	req := require.New(t)
	db := newSessionTestDB(t)
	repo := NewSessionRepository(db, slog.Default())
	at := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

	req.NoError(repo.Save(balancedSession(at)))

	// Not JSON at all.
	err := db.Update(func(txn *badger.Txn) error {
		key := fmt.Sprintf("sess:g1:c9:%019d:broken", at.UnixNano())
		return txn.Set([]byte(key), []byte("{definitely not json"))
	})
	req.NoError(err)

	req.NoError(repo.Save(balancedSession(at.Add(time.Second))))

	// Valid JSON, impossible state.
	err = db.Update(func(txn *badger.Txn) error {
		key := fmt.Sprintf("sess:g1:c8:%019d:ghost", at.UnixNano())
		bytes := []byte(`{"session_id":"ghost","state":"HAUNTED","guild_id":"g1","channel_id":"c8","capacity":4,"created_at":1}`)
		return txn.Set([]byte(key), bytes)
	})
	req.NoError(err)

	stored, err := repo.List()
	req.NoError(err)
	req.Len(stored, 2)
}
