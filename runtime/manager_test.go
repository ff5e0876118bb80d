package runtime_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mix-lab/domain"
	"mix-lab/domain/event"
	"mix-lab/errors"
	"mix-lab/mocks"
	"mix-lab/repositories"
	"mix-lab/runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	manager  *runtime.Manager
	store    repositories.SessionRepository
	links    repositories.LinkRepository
	ratings  *mocks.MockRatingSource
	renderer *mocks.MockRenderer
	events   chan event.Event
}

func newFixture(t *testing.T, settings runtime.Settings) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fx := &fixture{
		store:    repositories.NewSessionRepository(db, log),
		links:    repositories.NewLinkRepository(db),
		ratings:  mocks.NewMockRatingSource(ctrl),
		renderer: mocks.NewMockRenderer(ctrl),
		events:   make(chan event.Event, 64),
	}
	fx.manager = runtime.NewManager(fx.store, fx.links, fx.ratings, fx.renderer, fx.events, log, settings)
	return fx
}

func (fx *fixture) link(t *testing.T, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		err := fx.links.Set(domain.Link{UserID: id, Nickname: "nick_" + id, LinkedAt: time.Now()})
		require.NoError(t, err)
	}
}

func (fx *fixture) drainEventTypes() []event.Type {
	var types []event.Type
	for {
		select {
		case e := <-fx.events:
			types = append(types, e.Type)
		default:
			return types
		}
	}
}

func defaultSettings() runtime.Settings {
	return runtime.Settings{
		Capacity:      4,
		SessionTTL:    30 * time.Minute,
		LookupTimeout: 2 * time.Second,
		RenderTimeout: 2 * time.Second,
	}
}

func teamIDs(team domain.TeamView) []string {
	ids := make([]string, 0, len(team.Players))
	for _, p := range team.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

func Test_Manager_runs_a_full_session_lifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fx := newFixture(t, defaultSettings())
	fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	fx.link(t, "u1", "u2", "u3", "u4")

	byNickname := map[string]int{"nick_u1": 2000, "nick_u2": 1800, "nick_u3": 1600, "nick_u4": 1400}
	fx.ratings.EXPECT().Rating(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, nickname string) (int, error) {
			return byNickname[nickname], nil
		}).Times(4)

	location := domain.Location{GuildID: "g", ChannelID: "c", MessageID: "m"}
	view, err := fx.manager.Create(ctx, location)
	req.NoError(err)
	req.Equal(domain.OPEN, view.State)
	req.Empty(view.Roster)
	req.True(view.ExpiresAt.Equal(view.CreatedAt.Add(30 * time.Minute)))

	sessionID := view.SessionID
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		view, err = fx.manager.Join(ctx, sessionID, id, "name_"+id)
		req.NoError(err)
	}
	req.Len(view.Roster, 4)
	req.Equal("nick_u1", view.Roster[0].Nickname)

	view, err = fx.manager.Start(ctx, sessionID)
	req.NoError(err)
	req.Equal(domain.BALANCED, view.State)
	req.Equal([]string{"u1", "u4"}, teamIDs(view.TeamA))
	req.Equal([]string{"u2", "u3"}, teamIDs(view.TeamB))
	req.Equal(3400, view.TeamA.Stats.Total)
	req.Equal(3400, view.TeamB.Stats.Total)
	req.Equal(0, view.RatingGap)

	view, err = fx.manager.Swap(ctx, sessionID, "u4", "u2")
	req.NoError(err)
	req.Equal([]string{"u1", "u2"}, teamIDs(view.TeamA))
	req.Equal([]string{"u4", "u3"}, teamIDs(view.TeamB))
	req.Equal(800, view.RatingGap)

	view, err = fx.manager.Rebalance(ctx, sessionID)
	req.NoError(err)
	req.Equal(0, view.RatingGap)
	req.Equal([]string{"u1", "u4"}, teamIDs(view.TeamA))

	view, err = fx.manager.Finalize(ctx, sessionID)
	req.NoError(err)
	req.Equal(domain.FINALIZED, view.State)

	stored, err := fx.store.List()
	req.NoError(err)
	req.Empty(stored, "a finalized session should leave no snapshot behind")

	_, err = fx.manager.Join(ctx, sessionID, "u5", "name_u5")
	req.ErrorIs(err, errors.ErrSessionTerminal)

	req.Equal([]event.Type{
		event.SessionOpenedType,
		event.ParticipantJoinedType,
		event.ParticipantJoinedType,
		event.ParticipantJoinedType,
		event.ParticipantJoinedType,
		event.TeamsFormedType,
		event.PlayersSwappedType,
		event.TeamsRebalancedType,
		event.SessionFinalizedType,
	}, fx.drainEventTypes())
}

func Test_Manager_join_guards(t *testing.T) {
	ctx := context.Background()
	location := domain.Location{GuildID: "g", ChannelID: "c", MessageID: "m"}

	t.Run("Joining twice is rejected", func(t *testing.T) {
		req := require.New(t)
		fx := newFixture(t, defaultSettings())
		fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		fx.link(t, "u1")

		view, err := fx.manager.Create(ctx, location)
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "u1", "alice")
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "u1", "alice")
		req.ErrorIs(err, errors.ErrAlreadyJoined)
	})

	t.Run("A full roster rejects the next player", func(t *testing.T) {
		req := require.New(t)
		settings := defaultSettings()
		settings.Capacity = 2
		fx := newFixture(t, settings)
		fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		fx.link(t, "u1", "u2", "u3")

		view, err := fx.manager.Create(ctx, location)
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "u1", "alice")
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "u2", "bob")
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "u3", "carol")
		req.ErrorIs(err, errors.ErrSessionFull)
	})

	t.Run("Unlinked players cannot join", func(t *testing.T) {
		req := require.New(t)
		fx := newFixture(t, defaultSettings())
		fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		view, err := fx.manager.Create(ctx, location)
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "ghost", "ghost")
		req.ErrorIs(err, errors.ErrNotLinked)
	})

	t.Run("Unknown session ids are reported", func(t *testing.T) {
		req := require.New(t)
		fx := newFixture(t, defaultSettings())

		_, err := fx.manager.Join(ctx, "no-such-session", "u1", "alice")
		req.ErrorIs(err, errors.ErrSessionNotFound)
		_, err = fx.manager.View("no-such-session")
		req.ErrorIs(err, errors.ErrSessionNotFound)
	})

	t.Run("Leaving is locked once balancing ran", func(t *testing.T) {
		req := require.New(t)
		settings := defaultSettings()
		settings.Capacity = 2
		fx := newFixture(t, settings)
		fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		fx.ratings.EXPECT().Rating(gomock.Any(), gomock.Any()).Return(1500, nil).Times(2)
		fx.link(t, "u1", "u2")

		view, err := fx.manager.Create(ctx, location)
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "u1", "alice")
		req.NoError(err)
		_, err = fx.manager.Join(ctx, view.SessionID, "u2", "bob")
		req.NoError(err)
		_, err = fx.manager.Start(ctx, view.SessionID)
		req.NoError(err)

		_, err = fx.manager.Leave(ctx, view.SessionID, "u1")
		req.ErrorIs(err, errors.ErrAlreadyBalanced)
		_, err = fx.manager.Swap(ctx, view.SessionID, "u1", "nobody")
		req.ErrorIs(err, errors.ErrPlayerNotFound)
	})
}

func Test_Manager_start_requires_a_full_roster(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fx := newFixture(t, defaultSettings())
	fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	fx.link(t, "u1", "u2", "u3")

	view, err := fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c", MessageID: "m"})
	req.NoError(err)
	for _, id := range []string{"u1", "u2", "u3"} {
		_, err = fx.manager.Join(ctx, view.SessionID, id, id)
		req.NoError(err)
	}

	_, err = fx.manager.Start(ctx, view.SessionID)
	req.ErrorIs(err, errors.ErrRosterSize)

	view, err = fx.manager.View(view.SessionID)
	req.NoError(err)
	req.Equal(domain.OPEN, view.State, "a refused start must leave the roster open")
}

func Test_Manager_failed_lookup_parks_the_session(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	settings := defaultSettings()
	settings.Capacity = 2
	fx := newFixture(t, settings)
	fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	fx.link(t, "u1", "u2", "u3")

	fx.ratings.EXPECT().Rating(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, nickname string) (int, error) {
			if nickname == "nick_u2" {
				return 0, errors.ErrPlayerNotFound
			}
			return 1500, nil
		}).Times(2)

	view, err := fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c", MessageID: "m"})
	req.NoError(err)
	sessionID := view.SessionID
	_, err = fx.manager.Join(ctx, sessionID, "u1", "alice")
	req.NoError(err)
	_, err = fx.manager.Join(ctx, sessionID, "u2", "bob")
	req.NoError(err)

	view, err = fx.manager.Start(ctx, sessionID)
	req.ErrorIs(err, errors.ErrRatingResolution)
	req.Equal(domain.BALANCING, view.State)
	req.Equal([]string{"u2"}, view.Failed)

	// The park is durable, not just in memory.
	stored, err := fx.store.List()
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal(domain.BALANCING, stored[0].State)
	req.Equal([]string{"u2"}, stored[0].Failed)

	// No retry path : the session only accepts Cancel now.
	_, err = fx.manager.Start(ctx, sessionID)
	req.ErrorIs(err, errors.ErrAlreadyBalanced)
	_, err = fx.manager.Join(ctx, sessionID, "u3", "carol")
	req.ErrorIs(err, errors.ErrSessionFull)
	_, err = fx.manager.Leave(ctx, sessionID, "u1")
	req.ErrorIs(err, errors.ErrAlreadyBalanced)

	req.NoError(fx.manager.Cancel(ctx, sessionID))
	view, err = fx.manager.View(sessionID)
	req.NoError(err)
	req.Equal(domain.CANCELLED, view.State)

	stored, err = fx.store.List()
	req.NoError(err)
	req.Empty(stored)
}

func Test_Manager_concurrent_joins_never_overbook(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fx := newFixture(t, defaultSettings())
	fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	userIDs := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	fx.link(t, userIDs...)

	view, err := fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c", MessageID: "m"})
	req.NoError(err)

	var wg sync.WaitGroup
	outcomes := make(chan error, len(userIDs))
	for _, id := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := fx.manager.Join(ctx, view.SessionID, userID, userID)
			outcomes <- err
		}(id)
	}
	wg.Wait()
	close(outcomes)

	accepted, rejected := 0, 0
	for err := range outcomes {
		if err == nil {
			accepted++
			continue
		}
		req.ErrorIs(err, errors.ErrSessionFull)
		rejected++
	}
	req.Equal(4, accepted)
	req.Equal(4, rejected)

	view, err = fx.manager.View(view.SessionID)
	req.NoError(err)
	req.Len(view.Roster, 4)
}

func Test_Manager_expires_sessions_past_their_deadline(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	settings := defaultSettings()
	settings.SessionTTL = 20 * time.Millisecond
	fx := newFixture(t, settings)
	fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	view, err := fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c", MessageID: "m"})
	req.NoError(err)

	time.Sleep(50 * time.Millisecond)
	req.Equal(1, fx.manager.ExpireStale(ctx))

	got, err := fx.manager.View(view.SessionID)
	req.NoError(err)
	req.Equal(domain.EXPIRED, got.State)
	_, err = fx.manager.Join(ctx, view.SessionID, "u1", "alice")
	req.ErrorIs(err, errors.ErrSessionTerminal)

	stored, err := fx.store.List()
	req.NoError(err)
	req.Empty(stored)

	// Two full lifetimes later the terminal session is forgotten.
	req.Equal(0, fx.manager.ExpireStale(ctx))
	_, err = fx.manager.View(view.SessionID)
	req.ErrorIs(err, errors.ErrSessionNotFound)
}

func Test_Manager_discards_a_session_when_its_surface_is_gone(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fx := newFixture(t, defaultSettings())
	fx.link(t, "u1", "u2")

	gomock.InOrder(
		fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrStaleLocation),
	)

	view, err := fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c", MessageID: "m"})
	req.NoError(err)

	// The join itself is accepted, the deleted surface then discards
	// the whole session.
	_, err = fx.manager.Join(ctx, view.SessionID, "u1", "alice")
	req.NoError(err)

	got, err := fx.manager.View(view.SessionID)
	req.NoError(err)
	req.Equal(domain.EXPIRED, got.State)

	_, err = fx.manager.Join(ctx, view.SessionID, "u2", "bob")
	req.ErrorIs(err, errors.ErrSessionTerminal)

	stored, err := fx.store.List()
	req.NoError(err)
	req.Empty(stored)
}

func Test_Manager_latest_picks_the_newest_live_session(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fx := newFixture(t, defaultSettings())
	fx.renderer.EXPECT().RenderSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	first, err := fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c1", MessageID: "m1"})
	req.NoError(err)
	time.Sleep(2 * time.Millisecond)
	second, err := fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c1", MessageID: "m2"})
	req.NoError(err)
	_, err = fx.manager.Create(ctx, domain.Location{GuildID: "g", ChannelID: "c2", MessageID: "m3"})
	req.NoError(err)

	got, err := fx.manager.Latest("g", "c1")
	req.NoError(err)
	req.Equal(second.SessionID, got.SessionID)

	req.NoError(fx.manager.Cancel(ctx, second.SessionID))
	got, err = fx.manager.Latest("g", "c1")
	req.NoError(err)
	req.Equal(first.SessionID, got.SessionID)

	_, err = fx.manager.Latest("g", "c3")
	req.ErrorIs(err, errors.ErrSessionNotFound)
}
