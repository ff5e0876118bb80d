//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"mix-lab/domain"
	"mix-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type ISessionRepository interface {
	Save(session domain.Session) error
	Delete(session domain.Session) error
	List() ([]domain.Session, error)
	LatestInChannel(guildID, channelID string) (domain.Session, error)
}

type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

// SessionRecord is the flat JSON layout written to BadgerDB.
// It is exported so that inspection tooling can decode stored rows
// without importing the runtime.
type SessionRecord struct {
	SessionID string              `json:"session_id"`
	State     string              `json:"state"`
	GuildID   string              `json:"guild_id"`
	ChannelID string              `json:"channel_id"`
	MessageID string              `json:"message_id"`
	Capacity  int                 `json:"capacity"`
	Roster    []ParticipantRecord `json:"roster"`
	TeamA     []ParticipantRecord `json:"team_a"`
	TeamB     []ParticipantRecord `json:"team_b"`
	Failed    []string            `json:"failed,omitempty"`
	CreatedAt int64               `json:"created_at"` // unix nanoseconds
}

type ParticipantRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
}

// Save writes the whole session snapshot, replacing any previous value.
// The key is formatted as "sess:{guild}:{channel}:{timestamp_padded}:{session_id}" to:
//  1. Ensure chronological sorting per channel using 19-digit zero padding
//     (lexicographical order).
//  2. Keep the session id in the key so two sessions opened in the same
//     nanosecond cannot overwrite each other.
func (r SessionRepository) Save(session domain.Session) error {
	bytes, err := json.Marshal(FromSession(session))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sessionKey(session)), bytes)
	})
}

// Delete removes the snapshot of the given session.
// Deleting a key that is already gone is not an error : the snapshot
// store only tracks in-flight sessions and deletes must be idempotent.
func (r SessionRepository) Delete(session domain.Session) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKey(session)))
	})
}

// List returns every stored snapshot, oldest first.
// Corrupted rows are skipped with a warning instead of failing the
// whole scan, so that one bad record never blocks a restart.
func (r SessionRepository) List() ([]domain.Session, error) {
	var rows [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(sessionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				rows = append(rows, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		session, err := decodeSession(row)
		if err != nil {
			r.log.Warn("Skipping corrupted session snapshot", "error", err)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// LatestInChannel finds the most recent snapshot for one channel by
// walking the channel prefix backwards. Thanks to the padded timestamp
// in the key, the first hit is the newest session.
func (r SessionRepository) LatestInChannel(guildID, channelID string) (domain.Session, error) {
	var row []byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("%s%s:%s:", sessionPrefix, guildID, channelID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key, then step back into the prefix.
		seekKey := append(append([]byte(nil), prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			return it.Item().Value(func(value []byte) error {
				row = append([]byte(nil), value...)
				return nil
			})
		}
		return errors.ErrSessionNotFound
	})
	if err != nil {
		return domain.Session{}, err
	}
	return decodeSession(row)
}

const sessionPrefix = "sess:"

func sessionKey(session domain.Session) string {
	return fmt.Sprintf("%s%s:%s:%019d:%s",
		sessionPrefix,
		session.Location.GuildID,
		session.Location.ChannelID,
		session.CreatedAt.UnixNano(),
		session.ID,
	)
}

func FromSession(session domain.Session) SessionRecord {
	return SessionRecord{
		SessionID: session.ID,
		State:     string(session.State),
		GuildID:   session.Location.GuildID,
		ChannelID: session.Location.ChannelID,
		MessageID: session.Location.MessageID,
		Capacity:  session.Capacity,
		Roster:    fromParticipants(session.Roster),
		TeamA:     fromParticipants(domain.Roster(session.TeamA)),
		TeamB:     fromParticipants(domain.Roster(session.TeamB)),
		Failed:    session.Failed,
		CreatedAt: session.CreatedAt.UnixNano(),
	}
}

// ToSession rebuilds the domain aggregate from a stored record.
func (record SessionRecord) ToSession() (domain.Session, error) {
	state := domain.SessionState(record.State)
	if !state.Valid() {
		return domain.Session{}, fmt.Errorf("unknown session state %q", record.State)
	}
	return domain.Session{
		ID:    record.SessionID,
		State: state,
		Location: domain.Location{
			GuildID:   record.GuildID,
			ChannelID: record.ChannelID,
			MessageID: record.MessageID,
		},
		Capacity:  record.Capacity,
		Roster:    toParticipants(record.Roster),
		TeamA:     domain.Team(toParticipants(record.TeamA)),
		TeamB:     domain.Team(toParticipants(record.TeamB)),
		Failed:    record.Failed,
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}

func decodeSession(row []byte) (domain.Session, error) {
	var record SessionRecord
	if err := json.Unmarshal(row, &record); err != nil {
		return domain.Session{}, err
	}
	return record.ToSession()
}

func fromParticipants(roster domain.Roster) []ParticipantRecord {
	return lo.Map(roster, func(p domain.Participant, _ int) ParticipantRecord {
		return ParticipantRecord{ID: p.ID, Name: p.Name, Nickname: p.Nickname, Rating: p.Rating}
	})
}

func toParticipants(records []ParticipantRecord) domain.Roster {
	if len(records) == 0 {
		return nil
	}
	return lo.Map(records, func(record ParticipantRecord, _ int) domain.Participant {
		return domain.Participant{ID: record.ID, Name: record.Name, Nickname: record.Nickname, Rating: record.Rating}
	})
}
