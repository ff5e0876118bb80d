//go:generate go run go.uber.org/mock/mockgen -source=link.go -destination=../mocks/mock_link_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"time"

	"mix-lab/domain"
	"mix-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

type ILinkRepository interface {
	Get(userID string) (domain.Link, error)
	Set(link domain.Link) error
	Remove(userID string) (bool, error)
	List() ([]domain.Link, error)
}

// LinkRepository stores one row per chat user under "link:{user_id}".
// Relinking simply overwrites the previous nickname.
type LinkRepository struct {
	db *badger.DB
}

func NewLinkRepository(db *badger.DB) LinkRepository {
	return LinkRepository{db: db}
}

type linkRecord struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	LinkedAt int64  `json:"linked_at"` // unix seconds
}

func (r LinkRepository) Get(userID string) (domain.Link, error) {
	var record linkRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(linkKey(userID)))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Link{}, errors.ErrNotLinked
	}
	if err != nil {
		return domain.Link{}, err
	}
	return toLink(record), nil
}

func (r LinkRepository) Set(link domain.Link) error {
	bytes, err := json.Marshal(linkRecord{
		UserID:   link.UserID,
		Nickname: link.Nickname,
		LinkedAt: link.LinkedAt.Unix(),
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(linkKey(link.UserID)), bytes)
	})
}

// Remove reports whether a link actually existed, so callers can tell
// "unlinked" apart from "there was nothing to unlink".
func (r LinkRepository) Remove(userID string) (bool, error) {
	existed := false
	err := r.db.Update(func(txn *badger.Txn) error {
		key := []byte(linkKey(userID))
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		existed = true
		return txn.Delete(key)
	})
	return existed, err
}

func (r LinkRepository) List() ([]domain.Link, error) {
	var links []domain.Link
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte("link:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record linkRecord
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			})
			if err != nil {
				return err
			}
			links = append(links, toLink(record))
		}
		return nil
	})
	return links, err
}

func linkKey(userID string) string {
	return "link:" + userID
}

func toLink(record linkRecord) domain.Link {
	return domain.Link{
		UserID:   record.UserID,
		Nickname: record.Nickname,
		LinkedAt: time.Unix(record.LinkedAt, 0).UTC(),
	}
}
