// Package store persists the alarm schedule and runtime alarm state across
// power cycles.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/dotmatrix/clockd/alarm"
)

const bucketState = "state"

const (
	keySchedule = "schedule"
	keyAlarm    = "alarm"
)

// ErrNotFound is returned when a value has never been saved.
var ErrNotFound = errors.New("store: not found")

// AlarmState is the runtime alarm state persisted beside the schedule.
type AlarmState struct {
	Pending alarm.Pending `json:"pending"`
	Armed   bool          `json:"armed"`
}

// Store is a small bolt-backed key store.
type Store struct {
	bdb *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists([]byte(bucketState))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create state bucket: %w", err)
	}

	return &Store{bdb: db}, nil
}

func (s *Store) Close() error {
	if err := s.bdb.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

func (s *Store) get(key string, v any) error {
	err := s.bdb.View(func(txn *bolt.Tx) error {
		data := txn.Bucket([]byte(bucketState)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", key, err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to view bolt database: %w", err)
	}
	return err
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	err = s.bdb.Update(func(txn *bolt.Tx) error {
		return txn.Bucket([]byte(bucketState)).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to update bolt database: %w", err)
	}
	return nil
}

// Schedule returns the persisted schedule, or ErrNotFound on first boot.
func (s *Store) Schedule() (alarm.Schedule, error) {
	var entries []alarm.Entry
	if err := s.get(keySchedule, &entries); err != nil {
		return alarm.Schedule{}, err
	}
	return alarm.FromSlice(entries)
}

// SaveSchedule persists the schedule.
func (s *Store) SaveSchedule(sched *alarm.Schedule) error {
	return s.put(keySchedule, sched[:])
}

// AlarmState returns the persisted alarm state, or ErrNotFound on first boot.
func (s *Store) AlarmState() (AlarmState, error) {
	var st AlarmState
	if err := s.get(keyAlarm, &st); err != nil {
		return AlarmState{}, err
	}
	return st, nil
}

// SaveAlarmState persists the alarm state.
func (s *Store) SaveAlarmState(st AlarmState) error {
	return s.put(keyAlarm, st)
}
