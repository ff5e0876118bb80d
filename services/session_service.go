package services

import (
	"context"

	"mix-lab/domain"
	"mix-lab/runtime"
)

type ISessionService interface {
	Create(ctx context.Context, location domain.Location) (domain.SessionView, error)
	Join(ctx context.Context, sessionID, userID, displayName string) (domain.SessionView, error)
	Leave(ctx context.Context, sessionID, userID string) (domain.SessionView, error)
	Start(ctx context.Context, sessionID string) (domain.SessionView, error)
	Swap(ctx context.Context, sessionID, firstID, secondID string) (domain.SessionView, error)
	Rebalance(ctx context.Context, sessionID string) (domain.SessionView, error)
	Finalize(ctx context.Context, sessionID string) (domain.SessionView, error)
	Cancel(ctx context.Context, sessionID string) error
	View(sessionID string) (domain.SessionView, error)
	Latest(guildID, channelID string) (domain.SessionView, error)
	Recover(ctx context.Context) (runtime.RecoveryReport, error)
}

// SessionService fronts the runtime manager. Transport adapters talk
// to this interface, never to the manager directly.
type SessionService struct {
	manager *runtime.Manager
}

func NewSessionService(manager *runtime.Manager) *SessionService {
	return &SessionService{manager: manager}
}

func (s *SessionService) Create(ctx context.Context, location domain.Location) (domain.SessionView, error) {
	return s.manager.Create(ctx, location)
}

func (s *SessionService) Join(ctx context.Context, sessionID, userID, displayName string) (domain.SessionView, error) {
	return s.manager.Join(ctx, sessionID, userID, displayName)
}

func (s *SessionService) Leave(ctx context.Context, sessionID, userID string) (domain.SessionView, error) {
	return s.manager.Leave(ctx, sessionID, userID)
}

func (s *SessionService) Start(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.manager.Start(ctx, sessionID)
}

func (s *SessionService) Swap(ctx context.Context, sessionID, firstID, secondID string) (domain.SessionView, error) {
	return s.manager.Swap(ctx, sessionID, firstID, secondID)
}

func (s *SessionService) Rebalance(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.manager.Rebalance(ctx, sessionID)
}

func (s *SessionService) Finalize(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.manager.Finalize(ctx, sessionID)
}

func (s *SessionService) Cancel(ctx context.Context, sessionID string) error {
	return s.manager.Cancel(ctx, sessionID)
}

func (s *SessionService) View(sessionID string) (domain.SessionView, error) {
	return s.manager.View(sessionID)
}

func (s *SessionService) Latest(guildID, channelID string) (domain.SessionView, error) {
	return s.manager.Latest(guildID, channelID)
}

func (s *SessionService) Recover(ctx context.Context) (runtime.RecoveryReport, error) {
	return s.manager.Recover(ctx)
}
