package trace

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/bramblebt/bramble/pkg/domain"
)

const (
	transitionsBucket = "transitions"
	sessionsBucket    = "sessions"

	// defaultQueueSize bounds how many transitions may sit between the
	// ticking goroutine and the database writer before Record starts
	// dropping.
	defaultQueueSize = 1024

	flushInterval = 250 * time.Millisecond
)

// BoltLogger persists status transitions into an embedded bbolt database.
// Each logger run gets a fresh session identifier, so several runs can share
// one database file and still be replayed independently.
//
// Record enqueues on a bounded channel and a dedicated goroutine commits
// batches; when the writer falls behind, transitions are dropped and counted
// rather than stalling tree evaluation.
type BoltLogger struct {
	db      *bolt.DB
	session string

	queue   chan domain.Transition
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	seq     uint64

	closeOnce sync.Once
	closeErr  error
}

// NewBoltLogger opens (or creates) the database at path and starts the
// writer goroutine.
func NewBoltLogger(path string) (*BoltLogger, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}

	l := &BoltLogger{
		db:      db,
		session: uuid.NewString(),
		queue:   make(chan domain.Transition, defaultQueueSize),
		done:    make(chan struct{}),
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(transitionsBucket)); err != nil {
			return err
		}
		sessions, err := tx.CreateBucketIfNotExists([]byte(sessionsBucket))
		if err != nil {
			return err
		}
		return sessions.Put([]byte(l.session), []byte(time.Now().UTC().Format(time.RFC3339Nano)))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize trace database: %w", err)
	}

	l.wg.Add(1)
	go l.writeLoop()
	return l, nil
}

// Session returns the identifier under which this run's transitions are
// stored.
func (l *BoltLogger) Session() string { return l.session }

// Record enqueues one transition for persistence. It never blocks; when the
// queue is full the transition is dropped and counted.
func (l *BoltLogger) Record(tr domain.Transition) {
	select {
	case l.queue <- tr:
	default:
		l.dropped.Add(1)
	}
}

// Dropped reports how many transitions were discarded because the writer
// could not keep up.
func (l *BoltLogger) Dropped() uint64 { return l.dropped.Load() }

// Close drains the queue, commits the tail batch and closes the database.
func (l *BoltLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.wg.Wait()
		l.closeErr = l.db.Close()
	})
	return l.closeErr
}

func (l *BoltLogger) writeLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]domain.Transition, 0, 64)
	for {
		select {
		case tr := <-l.queue:
			batch = append(batch, tr)
			if len(batch) >= cap(batch) {
				l.commit(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				l.commit(batch)
				batch = batch[:0]
			}
		case <-l.done:
			for {
				select {
				case tr := <-l.queue:
					batch = append(batch, tr)
				default:
					if len(batch) > 0 {
						l.commit(batch)
					}
					return
				}
			}
		}
	}
}

type boltRecord struct {
	Session string            `json:"session"`
	Seq     uint64            `json:"seq"`
	Event   domain.Transition `json:"event"`
}

func (l *BoltLogger) commit(batch []domain.Transition) {
	err := l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(transitionsBucket))
		for _, tr := range batch {
			l.seq++
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, l.seq)
			val, err := json.Marshal(boltRecord{Session: l.session, Seq: l.seq, Event: tr})
			if err != nil {
				return err
			}
			if err := bucket.Put(key, val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.dropped.Add(uint64(len(batch)))
	}
}

// ReadSession loads all transitions recorded under a session id, in commit
// order. Intended for replay tooling and tests.
func ReadSession(path, session string) ([]domain.Transition, error) {
	db, err := bolt.Open(path, 0o400, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	defer db.Close()

	var out []domain.Transition
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(transitionsBucket))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.Session == session {
				out = append(out, rec.Event)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
