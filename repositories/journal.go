//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"mix-lab/domain/event"

	"github.com/dgraph-io/badger/v4"
)

const journalPrefix = "evt:"

type IEventJournal interface {
	Append(events []event.Event) error
	History(sessionID string) ([]JournalEntry, error)
}

// EventJournal keeps an append-only trace of session events, one row
// per event. The journal is diagnostic data : nothing replays it, and
// losing it costs nothing but hindsight.
type EventJournal struct {
	db  *badger.DB
	log *slog.Logger
}

func NewEventJournal(db *badger.DB, log *slog.Logger) EventJournal {
	return EventJournal{db: db, log: log}
}

// JournalEntry is the stored form of one session event.
type JournalEntry struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	CreatedAt int64           `json:"created_at"` // unix nanoseconds
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Append persists a batch of events inside a single transaction.
// The key is formatted as "evt:{session_id}:{timestamp_padded}:{event_id}"
// so rows sort chronologically per session, same convention as the
// snapshot and message keys elsewhere in the store.
func (j EventJournal) Append(events []event.Event) error {
	return j.db.Update(func(txn *badger.Txn) error {
		for _, evt := range events {
			entry, err := toJournalEntry(evt)
			if err != nil {
				return err
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			key := fmt.Sprintf("%s%s:%019d:%s",
				journalPrefix,
				evt.SessionID,
				evt.CreatedAt.UnixNano(),
				evt.ID,
			)
			if err = txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// History returns every recorded event for one session, oldest first.
// Corrupted rows are skipped with a warning, same policy as the
// snapshot scan.
func (j EventJournal) History(sessionID string) ([]JournalEntry, error) {
	var rows [][]byte
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(journalPrefix + sessionID + ":")
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

	entries := make([]JournalEntry, 0, len(rows))
	for _, row := range rows {
		var entry JournalEntry
		if err = json.Unmarshal(row, &entry); err != nil {
			j.log.Warn("Skipping corrupted journal row", "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func toJournalEntry(evt event.Event) (JournalEntry, error) {
	entry := JournalEntry{
		EventID:   evt.ID.String(),
		Type:      string(evt.Type),
		SessionID: evt.SessionID,
		CreatedAt: evt.CreatedAt.UnixNano(),
	}
	if evt.Payload != nil {
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			return JournalEntry{}, err
		}
		entry.Payload = payload
	}
	return entry, nil
}
