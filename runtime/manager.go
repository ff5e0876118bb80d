package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"mix-lab/contract"
	"mix-lab/domain"
	"mix-lab/domain/event"
	"mix-lab/errors"
	"mix-lab/repositories"
)

// Settings gathers the few knobs the session machine needs.
type Settings struct {
	Capacity      int           // players required to start a balancing run
	SessionTTL    time.Duration // fixed lifetime, counted from creation
	LookupTimeout time.Duration // budget for one whole rating fan-out
	RenderTimeout time.Duration // budget for one surface redraw
}

// Manager owns every live session and serializes all access to them.
//
// Each session carries its own mutex : operations on one session are
// strictly ordered, while different sessions stay independent. Every
// accepted transition is applied in memory and persisted as a whole
// snapshot before the surface is redrawn ; a snapshot write that fails
// voids recovery for the session, never the transition itself.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession

	store    repositories.ISessionRepository
	links    repositories.ILinkRepository
	ratings  contract.RatingSource
	renderer contract.Renderer
	events   chan event.Event
	log      *slog.Logger
	settings Settings
}

type liveSession struct {
	mu      sync.Mutex
	session domain.Session
}

func NewManager(
	store repositories.ISessionRepository,
	links repositories.ILinkRepository,
	ratings contract.RatingSource,
	renderer contract.Renderer,
	events chan event.Event,
	log *slog.Logger,
	settings Settings,
) *Manager {
	return &Manager{
		sessions: make(map[string]*liveSession),
		store:    store,
		links:    links,
		ratings:  ratings,
		renderer: renderer,
		events:   events,
		log:      log,
		settings: settings,
	}
}

// Create opens a session attached to the given surface and renders the
// empty roster. The location must already point at a posted message.
func (m *Manager) Create(ctx context.Context, location domain.Location) (domain.SessionView, error) {
	session := domain.NewSession(location, m.settings.Capacity, time.Now())
	m.persist(session)

	live := m.register(session)
	live.mu.Lock()
	defer live.mu.Unlock()

	m.emit(event.SessionOpenedType, session.ID, nil)
	m.render(ctx, live)
	m.log.Info("Session opened", "session_id", session.ID, "channel", location.ChannelKey())
	return domain.NewSessionView(live.session, m.settings.SessionTTL), nil
}

// Join adds a linked player to an open roster.
// The nickname is captured at join time : relinking later does not
// touch rosters the player already sits in.
func (m *Manager) Join(ctx context.Context, sessionID, userID, displayName string) (domain.SessionView, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	session := live.session
	switch {
	case session.Terminal():
		return domain.SessionView{}, errors.ErrSessionTerminal
	case session.State != domain.OPEN:
		return domain.SessionView{}, errors.ErrSessionFull
	case session.Roster.Contains(userID):
		return domain.SessionView{}, errors.ErrAlreadyJoined
	case len(session.Roster) >= session.Capacity:
		return domain.SessionView{}, errors.ErrSessionFull
	}

	link, err := m.links.Get(userID)
	if err != nil {
		return domain.SessionView{}, err
	}

	next := session
	next.Roster = append(next.Roster, domain.Participant{ID: userID, Name: displayName, Nickname: link.Nickname})
	m.persist(next)
	live.session = next

	m.emit(event.ParticipantJoinedType, next.ID, event.RosterChanged{UserID: userID, Count: len(next.Roster), Capacity: next.Capacity})
	m.render(ctx, live)
	return domain.NewSessionView(next, m.settings.SessionTTL), nil
}

// Leave removes a player from an open roster. Once balancing has been
// triggered the roster is frozen and leaving is no longer possible.
func (m *Manager) Leave(ctx context.Context, sessionID, userID string) (domain.SessionView, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	session := live.session
	switch {
	case session.Terminal():
		return domain.SessionView{}, errors.ErrSessionTerminal
	case session.State != domain.OPEN:
		return domain.SessionView{}, errors.ErrAlreadyBalanced
	case !session.Roster.Contains(userID):
		return domain.SessionView{}, errors.ErrNotMember
	}

	next := session
	next.Roster = session.Roster.Without(userID)
	m.persist(next)
	live.session = next

	m.emit(event.ParticipantLeftType, next.ID, event.RosterChanged{UserID: userID, Count: len(next.Roster), Capacity: next.Capacity})
	m.render(ctx, live)
	return domain.NewSessionView(next, m.settings.SessionTTL), nil
}

// Start freezes the roster and runs the balancing pipeline : resolve
// every rating in parallel, then split the roster in two teams.
//
// A failed run parks the session in BALANCING for good : nothing is
// rolled back, nothing is retried, and only Cancel can act on it.
// The returned view carries the failed participant ids next to
// errors.ErrRatingResolution, so callers can report who blocked.
func (m *Manager) Start(ctx context.Context, sessionID string) (domain.SessionView, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	session := live.session
	switch {
	case session.Terminal():
		return domain.SessionView{}, errors.ErrSessionTerminal
	case session.State != domain.OPEN:
		return domain.SessionView{}, errors.ErrAlreadyBalanced
	case len(session.Roster) != session.Capacity:
		return domain.SessionView{}, errors.ErrRosterSize
	}

	next := session
	next.State = domain.BALANCING
	m.persist(next)
	live.session = next

	resolved, failed := m.resolveRatings(ctx, next.Roster)
	if len(failed) > 0 {
		next.Failed = failed
		m.persist(next)
		live.session = next
		m.emit(event.BalanceFailedType, next.ID, event.BalanceFailed{Failed: failed})
		m.render(ctx, live)
		return domain.NewSessionView(next, m.settings.SessionTTL), errors.ErrRatingResolution
	}

	next.Roster = resolved
	teamA, teamB, err := domain.Balance(resolved, next.Capacity)
	if err != nil {
		return domain.SessionView{}, err
	}
	next.TeamA = teamA
	next.TeamB = teamB
	next.State = domain.BALANCED
	next.Failed = nil
	m.persist(next)
	live.session = next

	m.emit(event.TeamsFormedType, next.ID, event.TeamsFormed{
		TotalA: teamA.Stats().Total,
		TotalB: teamB.Stats().Total,
		Gap:    domain.RatingGap(teamA, teamB),
	})
	m.render(ctx, live)
	m.log.Info("Teams formed", "session_id", next.ID, "gap", domain.RatingGap(teamA, teamB))
	return domain.NewSessionView(next, m.settings.SessionTTL), nil
}

// Swap exchanges one player of team A against one player of team B.
// Lookups are side scoped : firstID must play in A, secondID in B.
// A failed lookup changes nothing and does not redraw the surface.
func (m *Manager) Swap(ctx context.Context, sessionID, firstID, secondID string) (domain.SessionView, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	session := live.session
	switch {
	case session.Terminal():
		return domain.SessionView{}, errors.ErrSessionTerminal
	case session.State != domain.BALANCED:
		return domain.SessionView{}, errors.ErrNotBalanced
	}

	teamA, teamB, err := domain.SwapPlayers(session.TeamA, session.TeamB, firstID, secondID)
	if err != nil {
		return domain.SessionView{}, err
	}

	next := session
	next.TeamA = teamA
	next.TeamB = teamB
	m.persist(next)
	live.session = next

	m.emit(event.PlayersSwappedType, next.ID, event.PlayersSwapped{FromTeamA: firstID, FromTeamB: secondID})
	m.render(ctx, live)
	return domain.NewSessionView(next, m.settings.SessionTTL), nil
}

// Rebalance throws the current split away and runs the balancer again
// over the same ten players, typically after swaps skewed the teams.
func (m *Manager) Rebalance(ctx context.Context, sessionID string) (domain.SessionView, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	session := live.session
	switch {
	case session.Terminal():
		return domain.SessionView{}, errors.ErrSessionTerminal
	case session.State != domain.BALANCED:
		return domain.SessionView{}, errors.ErrNotBalanced
	}

	teamA, teamB, err := domain.Rebalance(session.TeamA, session.TeamB, session.Capacity)
	if err != nil {
		return domain.SessionView{}, err
	}

	next := session
	next.TeamA = teamA
	next.TeamB = teamB
	m.persist(next)
	live.session = next

	m.emit(event.TeamsRebalancedType, next.ID, event.TeamsFormed{
		TotalA: teamA.Stats().Total,
		TotalB: teamB.Stats().Total,
		Gap:    domain.RatingGap(teamA, teamB),
	})
	m.render(ctx, live)
	return domain.NewSessionView(next, m.settings.SessionTTL), nil
}

// Finalize closes a balanced session for good and drops its snapshot :
// the store only tracks in-flight sessions.
func (m *Manager) Finalize(ctx context.Context, sessionID string) (domain.SessionView, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	session := live.session
	switch {
	case session.Terminal():
		return domain.SessionView{}, errors.ErrSessionTerminal
	case session.State != domain.BALANCED:
		return domain.SessionView{}, errors.ErrNotBalanced
	}

	next := session
	next.State = domain.FINALIZED
	if err = m.store.Delete(next); err != nil {
		// The session still finalizes : an orphan snapshot is
		// discarded by the next recovery pass.
		m.log.Error("Could not delete the finalized snapshot", "session_id", next.ID, "error", err)
	}
	live.session = next

	m.emit(event.SessionFinalizedType, next.ID, event.SessionClosed{Reason: "mix complete"})
	m.render(ctx, live)
	m.log.Info("Session finalized", "session_id", next.ID)
	return domain.NewSessionView(next, m.settings.SessionTTL), nil
}

// Cancel aborts a session in any non-terminal state, including one
// parked by a failed balancing run.
func (m *Manager) Cancel(ctx context.Context, sessionID string) error {
	live, err := m.lookup(sessionID)
	if err != nil {
		return err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	if live.session.Terminal() {
		return errors.ErrSessionTerminal
	}

	next := live.session
	next.State = domain.CANCELLED
	if err = m.store.Delete(next); err != nil {
		m.log.Error("Could not delete the cancelled snapshot", "session_id", next.ID, "error", err)
	}
	live.session = next

	m.emit(event.SessionCancelledType, next.ID, event.SessionClosed{Reason: "cancelled by organizer"})
	m.render(ctx, live)
	m.log.Info("Session cancelled", "session_id", next.ID)
	return nil
}

// ExpireStale closes every live session past its deadline and reports
// how many it closed. Terminal sessions that outlived two full
// lifetimes are forgotten, so the in-memory map cannot grow forever.
func (m *Manager) ExpireStale(ctx context.Context) int {
	now := time.Now()
	candidates := m.snapshotLives()

	expired := 0
	var forget []string
	for _, live := range candidates {
		live.mu.Lock()
		session := live.session
		switch {
		case session.Terminal():
			if session.Expired(now, 2*m.settings.SessionTTL) {
				forget = append(forget, session.ID)
			}
		case session.Expired(now, m.settings.SessionTTL):
			next := session
			next.State = domain.EXPIRED
			if err := m.store.Delete(next); err != nil {
				m.log.Error("Could not delete the expired snapshot", "session_id", next.ID, "error", err)
			}
			live.session = next
			expired++
			m.emit(event.SessionExpiredType, next.ID, event.SessionClosed{Reason: "session timed out"})
			m.render(ctx, live)
			m.log.Info("Session expired", "session_id", next.ID)
		}
		live.mu.Unlock()
	}

	if len(forget) > 0 {
		m.mu.Lock()
		for _, id := range forget {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
	}
	return expired
}

// View returns the current projection without mutating anything.
func (m *Manager) View(sessionID string) (domain.SessionView, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	return domain.NewSessionView(live.session, m.settings.SessionTTL), nil
}

// Latest finds the live session attached to a channel, newest first.
func (m *Manager) Latest(guildID, channelID string) (domain.SessionView, error) {
	key := domain.Location{GuildID: guildID, ChannelID: channelID}.ChannelKey()

	var found bool
	var newest domain.Session
	for _, live := range m.snapshotLives() {
		live.mu.Lock()
		session := live.session
		live.mu.Unlock()
		if session.Terminal() || session.Location.ChannelKey() != key {
			continue
		}
		if !found || session.CreatedAt.After(newest.CreatedAt) {
			newest = session
			found = true
		}
	}
	if !found {
		return domain.SessionView{}, errors.ErrSessionNotFound
	}
	return domain.NewSessionView(newest, m.settings.SessionTTL), nil
}

type ratingResult struct {
	index  int
	rating int
	err    error
}

// resolveRatings looks every nickname up in parallel and waits for the
// whole batch. One bounded deadline covers the batch ; a lookup that
// overruns it counts as failed, there is no cancellation of the rest.
func (m *Manager) resolveRatings(ctx context.Context, roster domain.Roster) (domain.Roster, []string) {
	lookupCtx, cancel := context.WithTimeout(ctx, m.settings.LookupTimeout)
	defer cancel()

	results := make(chan ratingResult, len(roster))
	for i, participant := range roster {
		go func(index int, nickname string) {
			rating, err := m.ratings.Rating(lookupCtx, nickname)
			results <- ratingResult{index: index, rating: rating, err: err}
		}(i, participant.Nickname)
	}

	resolved := make(domain.Roster, len(roster))
	copy(resolved, roster)
	var failed []string
	for range roster {
		result := <-results
		if result.err != nil {
			failed = append(failed, roster[result.index].ID)
			m.log.Warn("Rating lookup failed",
				"nickname", roster[result.index].Nickname, "error", result.err)
			continue
		}
		resolved[result.index].Rating = result.rating
	}
	// Completion order is random, reports should not be.
	sort.Strings(failed)
	return resolved, failed
}

func (m *Manager) lookup(sessionID string) (*liveSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	live, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return live, nil
}

func (m *Manager) register(session domain.Session) *liveSession {
	live := &liveSession{session: session}
	m.mu.Lock()
	m.sessions[session.ID] = live
	m.mu.Unlock()
	return live
}

func (m *Manager) snapshotLives() []*liveSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lives := make([]*liveSession, 0, len(m.sessions))
	for _, live := range m.sessions {
		lives = append(lives, live)
	}
	return lives
}

// persist writes the whole session as one snapshot. A write that fails
// is absorbed : the in-memory session keeps operating, it just cannot
// be recovered until a later write goes through.
func (m *Manager) persist(session domain.Session) {
	if err := m.store.Save(session); err != nil {
		m.log.Error("Could not persist the session snapshot", "session_id", session.ID, "error", err)
	}
}

// render redraws the surface after an accepted transition. A rendering
// failure never rolls the transition back : state settles before the
// surface is touched. A surface that is gone for good discards the
// session.
func (m *Manager) render(ctx context.Context, live *liveSession) {
	view := domain.NewSessionView(live.session, m.settings.SessionTTL)
	renderCtx, cancel := context.WithTimeout(ctx, m.settings.RenderTimeout)
	defer cancel()

	err := m.renderer.RenderSession(renderCtx, live.session.Location, view)
	if err == nil {
		return
	}
	if err == errors.ErrStaleLocation && !live.session.Terminal() {
		next := live.session
		next.State = domain.EXPIRED
		if deleteErr := m.store.Delete(next); deleteErr != nil {
			m.log.Error("Could not delete the stale snapshot", "session_id", next.ID, "error", deleteErr)
		}
		live.session = next
		m.emit(event.SessionExpiredType, next.ID, event.SessionClosed{Reason: "rendering surface is gone"})
		m.log.Warn("Session discarded, its surface is gone", "session_id", next.ID)
		return
	}
	m.log.Warn(fmt.Sprintf("Rendering failed for session %s", live.session.ID), "error", err)
}

// emit never blocks : observability must not slow the session machine
// down, a full channel simply drops the event.
func (m *Manager) emit(eventType event.Type, sessionID string, payload any) {
	select {
	case m.events <- event.New(eventType, sessionID, payload):
	default:
		m.log.Debug("Observability event lost", "type", string(eventType))
	}
}
