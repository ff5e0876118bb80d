package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrSessionNotFound  = fmt.Errorf("session not found")
	ErrSessionTerminal  = fmt.Errorf("session already terminal")
	ErrSessionFull      = fmt.Errorf("session roster is full")
	ErrAlreadyJoined    = fmt.Errorf("participant already joined")
	ErrNotMember        = fmt.Errorf("participant is not in the roster")
	ErrNotLinked        = fmt.Errorf("no linked player profile")
	ErrRosterSize       = fmt.Errorf("roster size does not match the required player count")
	ErrAlreadyBalanced  = fmt.Errorf("balancing already triggered for this session")
	ErrNotBalanced      = fmt.Errorf("teams have not been formed yet")
	ErrPlayerNotFound   = fmt.Errorf("player not found")
	ErrNoGameStats      = fmt.Errorf("no counter-strike stats for this player")
	ErrRatingResolution = fmt.Errorf("rating resolution failed for part of the roster")
	ErrStaleLocation    = fmt.Errorf("rendering location can no longer be resolved")
	ErrNicknameMissing  = fmt.Errorf("no nickname found in the given input")
	ErrInvalidPayload   = fmt.Errorf("unexpected event payload type")
)
