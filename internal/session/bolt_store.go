package session

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"

	"glog/workout-server/internal/domain"
)

var bucketActive = []byte("active_workouts")

var errDatabaseLocked = errors.New(
	"session database is locked: is another server instance running?",
)

// OpenBolt creates or opens the session database and its bucket.
func OpenBolt(path string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) || errors.Is(err, bolt.ErrDatabaseOpen) {
			return nil, errDatabaseLocked
		}
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketActive)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// BoltStore is a Store backed by one key of a bbolt bucket. Several stores
// may share a database as long as their slots differ.
type BoltStore struct {
	db     *bolt.DB
	slot   []byte
	logger *log.Logger
}

// NewBoltStore returns the store for slot in db. db must come from OpenBolt.
func NewBoltStore(db *bolt.DB, slot string, logger *log.Logger) *BoltStore {
	if logger == nil {
		logger = log.Default()
	}
	return &BoltStore{db: db, slot: []byte(slot), logger: logger}
}

// Load implements Store.
func (b *BoltStore) Load(_ context.Context) (*domain.ActiveSession, error) {
	var data []byte

	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketActive).Get(b.slot)
		if v != nil {
			// v is only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	s, err := decodeSession(data)
	if err != nil {
		b.logger.Warn("discarding corrupt active workout", "slot", string(b.slot), "err", err)
		if clearErr := b.Clear(context.Background()); clearErr != nil {
			b.logger.Error("failed to clear corrupt active workout", "slot", string(b.slot), "err", clearErr)
		}
		return nil, nil
	}
	return s, nil
}

// Save implements Store.
func (b *BoltStore) Save(_ context.Context, s *domain.ActiveSession) error {
	value, err := encodeSession(s)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketActive).Put(b.slot, value)
	})
}

// Clear implements Store.
func (b *BoltStore) Clear(_ context.Context) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketActive).Delete(b.slot)
	})
}
