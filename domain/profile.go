package domain

import "time"

// PlayerProfile is what the rating provider knows about a player.
// Elo and Level come from the most recent counter-strike title the
// player has stats for.
type PlayerProfile struct {
	PlayerID string
	Nickname string
	Country  string
	Avatar   string
	Elo      int
	Level    int
}

// Link ties a chat user to the player profile they claimed.
type Link struct {
	UserID   string
	Nickname string
	LinkedAt time.Time
}
