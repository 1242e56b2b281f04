package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"ragctx/internal/domain"
)

// CurrentSchemaVersion is bumped on breaking changes to the stored run format.
const CurrentSchemaVersion = 1

var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")

	keySchemaVersion = []byte("schema_version")
)

var (
	ErrClosed        = errors.New("history store is closed")
	ErrSchemaVersion = errors.New("history database was written by a newer version")
)

// HistoryStore keeps a log of retrieval runs in a bbolt file.
type HistoryStore struct {
	mu sync.Mutex
	db *bbolt.DB
}

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRuns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return checkSchema(tx.Bucket(bucketMeta))
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &HistoryStore{db: db}, nil
}

func checkSchema(meta *bbolt.Bucket) error {
	data := meta.Get(keySchemaVersion)
	if data == nil {
		v, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		return meta.Put(keySchemaVersion, v)
	}

	var version int
	if err := json.Unmarshal(data, &version); err != nil {
		return fmt.Errorf("corrupt schema version: %w", err)
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("%w: %d > %d", ErrSchemaVersion, version, CurrentSchemaVersion)
	}
	return nil
}

func (s *HistoryStore) handle() (*bbolt.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// Record appends run and sets its ID. A zero Time is set to now.
func (s *HistoryStore) Record(run *domain.Run) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		run.ID = id
		if run.Time.IsZero() {
			run.Time = time.Now().UTC()
		}

		data, err := json.Marshal(run)
		if err != nil {
			return err
		}
		return b.Put(itob(id), data)
	})
}

// List returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *HistoryStore) List(limit int) ([]domain.Run, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	runs := make([]domain.Run, 0)
	err = db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var run domain.Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("corrupt run %d: %w", binary.BigEndian.Uint64(k), err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}

// Count returns the number of stored runs.
func (s *HistoryStore) Count() (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketRuns).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes every run. Sequence numbers restart from one.
func (s *HistoryStore) Clear() error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketRuns); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketRuns)
		return err
	})
}

// Close releases the database file. Further calls return ErrClosed.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
