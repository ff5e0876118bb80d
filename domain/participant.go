// Package domain contains core concepts of the mix organizer.
// This file defines Participant entities and roster invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "github.com/samber/lo"

// Participant is one player captured in a session roster.
// Rating stays at zero until a balancing run resolves it, and is
// frozen for the rest of the session once resolved.
type Participant struct {
	ID       string // chat platform user id
	Name     string // display name at join time
	Nickname string // linked FACEIT nickname
	Rating   int
}

// Roster preserves join order. Ordering matters: the balancer sorts a
// copy, never the roster itself.
type Roster []Participant

func (r Roster) Contains(userID string) bool {
	return lo.ContainsBy(r, func(p Participant) bool { return p.ID == userID })
}

// Without returns a new roster with the given user removed.
// Join order of the remaining participants is untouched.
func (r Roster) Without(userID string) Roster {
	return lo.Reject(r, func(p Participant, _ int) bool { return p.ID == userID })
}

func (r Roster) IDs() []string {
	return lo.Map(r, func(p Participant, _ int) string { return p.ID })
}
