package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"spotifylyrics-go/logcolors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	statsBucketName = "stats"
	statsKey        = "totals"
)

// Store persists counters across restarts in a small bbolt file
type Store struct {
	db    *bolt.DB
	stats *Stats
	mu    sync.Mutex
	stop  chan struct{}
	wg    sync.WaitGroup
}

type persisted struct {
	Totals       Totals    `json:"totals"`
	FirstStarted time.Time `json:"firstStarted"`
	LastSaved    time.Time `json:"lastSaved"`
}

// NewStore opens the stats file at dbPath for s
func NewStore(dbPath string, s *Stats) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats bucket: %w", err)
	}

	log.Infof("%s Stats store opened at %s", logcolors.LogStats, dbPath)
	return &Store{db: db, stats: s, stop: make(chan struct{})}, nil
}

// Load restores previously saved counters. A fresh file is not an error.
func (st *Store) Load() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	var p persisted
	found := false
	err := st.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return errors.New("stats bucket not found")
		}
		data := b.Get([]byte(statsKey))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if !found {
		return nil
	}

	st.stats.Restore(p.Totals)
	if !p.FirstStarted.IsZero() {
		st.stats.StartTime = p.FirstStarted
	}
	log.Infof("%s Restored %d detections and %d cache lookups saved at %s", logcolors.LogStats,
		p.Totals.Detections, p.Totals.CacheHits+p.Totals.CacheMisses, p.LastSaved.Format(time.RFC3339))
	return nil
}

// Save writes the current counters
func (st *Store) Save() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := json.Marshal(persisted{
		Totals:       st.stats.Totals(),
		FirstStarted: st.stats.StartTime,
		LastSaved:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	return st.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return errors.New("stats bucket not found")
		}
		return b.Put([]byte(statsKey), data)
	})
}

// StartAutoSave saves every interval until Close
func (st *Store) StartAutoSave(interval time.Duration) {
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := st.Save(); err != nil {
					log.Warnf("%s Auto-save failed: %v", logcolors.LogStats, err)
				}
			case <-st.stop:
				return
			}
		}
	}()
}

// Close stops auto-saving, saves once more and closes the file
func (st *Store) Close() error {
	close(st.stop)
	st.wg.Wait()

	if err := st.Save(); err != nil {
		log.Warnf("%s Final save failed: %v", logcolors.LogStats, err)
	}
	return st.db.Close()
}
