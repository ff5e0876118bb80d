package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"mix-lab/contract"
	"mix-lab/domain"
	"mix-lab/errors"
	"mix-lab/repositories"

	"github.com/go-playground/validator/v10"
)

// faceitProfileURL recognizes public profile links, so players can
// paste their browser URL instead of typing the exact nickname.
var faceitProfileURL = regexp.MustCompile(`https?://(?:www\.)?faceit\.com/(?:en/)?players?/([^/?]+)`)

type IProfileService interface {
	Link(ctx context.Context, userID, input string) (domain.PlayerProfile, error)
	Unlink(userID string) (bool, error)
	Stats(ctx context.Context, userID string) (domain.PlayerProfile, error)
}

type linkRequest struct {
	UserID string `validate:"required"`
	Input  string `validate:"required"`
}

// ProfileService owns the identity link between a chat account and a
// FACEIT account. A link is the entry ticket for sessions : joining
// requires one, because ratings are fetched through it.
type ProfileService struct {
	links    repositories.ILinkRepository
	ratings  contract.RatingSource
	validate *validator.Validate
}

func NewProfileService(links repositories.ILinkRepository, ratings contract.RatingSource) *ProfileService {
	return &ProfileService{
		links:    links,
		ratings:  ratings,
		validate: validator.New(),
	}
}

// Link resolves the given nickname or profile URL against FACEIT,
// verifies the account exists and carries Counter-Strike stats, then
// stores the mapping. The profile comes back for the confirmation
// message. The stored nickname is the canonical one returned by the
// API, not the raw input.
func (s *ProfileService) Link(ctx context.Context, userID, input string) (domain.PlayerProfile, error) {
	if err := s.validate.Struct(linkRequest{UserID: userID, Input: input}); err != nil {
		return domain.PlayerProfile{}, fmt.Errorf("%w: %v", errors.ErrNicknameMissing, err)
	}

	nickname := ExtractNickname(input)
	if nickname == "" {
		return domain.PlayerProfile{}, errors.ErrNicknameMissing
	}

	profile, err := s.ratings.Profile(ctx, nickname)
	if err != nil {
		return domain.PlayerProfile{}, err
	}

	link := domain.Link{
		UserID:   userID,
		Nickname: profile.Nickname,
		LinkedAt: time.Now().UTC(),
	}
	if err = s.links.Set(link); err != nil {
		return domain.PlayerProfile{}, err
	}
	return profile, nil
}

// Unlink removes the mapping. The boolean reports whether there was
// one to remove, the caller phrases its answer with it.
func (s *ProfileService) Unlink(userID string) (bool, error) {
	return s.links.Remove(userID)
}

// Stats fetches the live profile behind the caller's link.
// Returns ErrNotLinked when no account was linked yet.
func (s *ProfileService) Stats(ctx context.Context, userID string) (domain.PlayerProfile, error) {
	link, err := s.links.Get(userID)
	if err != nil {
		return domain.PlayerProfile{}, err
	}
	return s.ratings.Profile(ctx, link.Nickname)
}

// ExtractNickname accepts either a raw nickname or a profile URL and
// returns the nickname part. A single leading @ is tolerated because
// players keep typing one.
func ExtractNickname(input string) string {
	if match := faceitProfileURL.FindStringSubmatch(input); match != nil {
		return match[1]
	}
	nickname := strings.TrimSpace(input)
	nickname = strings.TrimPrefix(nickname, "@")
	return nickname
}
