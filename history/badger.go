package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

const (
	turnPrefix = "turn:"
	seqPrefix  = "seq:"
)

// BadgerStore is a badger-backed TranscriptStore. Turns are stored as JSON
// under zero-padded sequence keys, so lexicographic key order is append
// order.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerStore opens (or creates) a transcript store at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db:     db,
		logger: slog.Default().With("component", "history"),
	}, nil
}

// NewMemoryStore creates an in-memory transcript store for tests.
func NewMemoryStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db:     db,
		logger: slog.Default().With("component", "history"),
	}, nil
}

func (s *BadgerStore) Get(ctx context.Context, documentID string) ([]Turn, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}

	turns := []Turn{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = turnKeyPrefix(documentID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var turn Turn
				if err := json.Unmarshal(val, &turn); err != nil {
					return err
				}
				turns = append(turns, turn)
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
	return turns, nil
}

func (s *BadgerStore) Append(ctx context.Context, documentID string, turn Turn) error {
	if documentID == "" {
		return ErrDocumentIDRequired
	}
	if turn.Role != RoleUser && turn.Role != RoleAssistant {
		return ErrInvalidRole
	}

	val, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn, documentID)
		if err != nil {
			return err
		}
		return txn.Set(turnKey(documentID, seq), val)
	})
}

func (s *BadgerStore) Clear(ctx context.Context, documentID string) error {
	if documentID == "" {
		return ErrDocumentIDRequired
	}

	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = turnKeyPrefix(documentID)
		opts.PrefetchValues = false

		var keys [][]byte
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return txn.Delete(seqKey(documentID))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// nextSeq reads, increments and writes back the document's turn counter
// inside the caller's transaction.
func nextSeq(txn *badger.Txn, documentID string) (uint64, error) {
	var seq uint64
	item, err := txn.Get(seqKey(documentID))
	switch err {
	case nil:
		err = item.Value(func(val []byte) error {
			if len(val) == 8 {
				seq = binary.BigEndian.Uint64(val)
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	case badger.ErrKeyNotFound:
		// first turn for this document
	default:
		return 0, err
	}

	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := txn.Set(seqKey(documentID), buf); err != nil {
		return 0, err
	}
	return seq, nil
}

func turnKey(documentID string, seq uint64) []byte {
	return fmt.Appendf(nil, "%s%s:%016d", turnPrefix, documentID, seq)
}

func turnKeyPrefix(documentID string) []byte {
	return fmt.Appendf(nil, "%s%s:", turnPrefix, documentID)
}

func seqKey(documentID string) []byte {
	return fmt.Appendf(nil, "%s%s", seqPrefix, documentID)
}
