package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/utils"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const bucketName = "lyrics"

var errNoBucket = errors.New("bucket not found")

// PersistentCache keeps lyrics in a bbolt file with an in-memory mirror
// for fast reads.
type PersistentCache struct {
	db                 *bolt.DB
	memCache           sync.Map
	dbPath             string
	backupPath         string
	ttl                time.Duration
	compressionEnabled bool
	now                func() time.Time
}

// NewPersistentCache opens (or creates) the cache file at dbPath.
// Entries written through it expire after ttl.
func NewPersistentCache(dbPath, backupPath string, ttl time.Duration, compressionEnabled bool) (*PersistentCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.MkdirAll(backupPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	if info, err := os.Stat(dbPath); err == nil {
		log.Infof("%s Reusing %s (%d bytes)", logcolors.LogCacheInit, dbPath, info.Size())
	} else {
		log.Infof("%s Creating %s", logcolors.LogCacheInit, dbPath)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	pc := &PersistentCache{
		db:                 db,
		dbPath:             dbPath,
		backupPath:         backupPath,
		ttl:                ttl,
		compressionEnabled: compressionEnabled,
		now:                time.Now,
	}

	if err := pc.loadToMemory(); err != nil {
		log.Warnf("%s Failed to preload entries: %v", logcolors.LogCache, err)
	}

	log.Infof("%s Persistent cache ready (ttl: %s, compression: %v)", logcolors.LogCache, ttl, compressionEnabled)
	return pc, nil
}

// loadToMemory mirrors every live entry of the bucket into memCache
func (pc *PersistentCache) loadToMemory() error {
	now := pc.now()
	loaded, stale := 0, 0
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errNoBucket
		}
		return b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				log.Warnf("%s Skipping unreadable entry %s: %v", logcolors.LogCache, string(k), err)
				return nil
			}
			if entry.Expired(now) {
				stale++
				return nil
			}
			pc.memCache.Store(string(k), entry)
			loaded++
			return nil
		})
	})
	if err != nil {
		return err
	}

	log.Infof("%s Loaded %d entries (%d expired left for the sweeper)", logcolors.LogCache, loaded, stale)
	return nil
}

func (pc *PersistentCache) decode(key string, entry Entry) (string, bool) {
	if !pc.compressionEnabled {
		return entry.Value, true
	}
	value, err := utils.DecompressString(entry.Value)
	if err != nil {
		log.Errorf("%s Failed to decompress %s: %v", logcolors.LogCache, key, err)
		return "", false
	}
	return value, true
}

// Get returns the value stored under key. Expired entries are dropped on
// the way out and reported as misses.
func (pc *PersistentCache) Get(key string) (string, bool) {
	if v, ok := pc.memCache.Load(key); ok {
		entry := v.(Entry)
		if entry.Expired(pc.now()) {
			pc.Delete(key)
			return "", false
		}
		return pc.decode(key, entry)
	}

	var entry Entry
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errNoBucket
		}
		data := b.Get([]byte(key))
		if data == nil {
			return os.ErrNotExist
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return "", false
	}
	if entry.Expired(pc.now()) {
		pc.Delete(key)
		return "", false
	}

	pc.memCache.Store(key, entry)
	return pc.decode(key, entry)
}

// Set overwrites key with value and a fresh expiry
func (pc *PersistentCache) Set(key, value string) error {
	stored := value
	if pc.compressionEnabled {
		compressed, err := utils.CompressString(value)
		if err != nil {
			return fmt.Errorf("failed to compress %s: %w", key, err)
		}
		stored = compressed
	}

	entry := Entry{Value: stored, ExpiresAt: expiry(pc.now(), pc.ttl)}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	err = pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errNoBucket
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return err
	}

	pc.memCache.Store(key, entry)
	return nil
}

// Delete removes key from memory and disk
func (pc *PersistentCache) Delete(key string) error {
	pc.memCache.Delete(key)
	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errNoBucket
		}
		return b.Delete([]byte(key))
	})
}

// Clear drops every entry
func (pc *PersistentCache) Clear() error {
	pc.memCache.Range(func(k, _ interface{}) bool {
		pc.memCache.Delete(k)
		return true
	})
	return pc.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Sweep deletes every expired entry from disk and memory and returns how
// many were removed.
func (pc *PersistentCache) Sweep() (int, error) {
	now := pc.now()
	var expired [][]byte

	err := pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errNoBucket
		}
		err := b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil || entry.Expired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, k := range expired {
		pc.memCache.Delete(string(k))
	}
	if len(expired) > 0 {
		log.Infof("%s Removed %d expired entries", logcolors.LogCacheSweep, len(expired))
	}
	return len(expired), nil
}

// StartSweeper runs Sweep every interval until ctx is done
func (pc *PersistentCache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := pc.Sweep(); err != nil {
					log.Warnf("%s Sweep failed: %v", logcolors.LogCacheSweep, err)
				}
			}
		}
	}()
}

// Stats returns the number of live entries and their approximate size
func (pc *PersistentCache) Stats() (numKeys int, sizeInKB int) {
	now := pc.now()
	size := 0
	pc.memCache.Range(func(k, v interface{}) bool {
		entry := v.(Entry)
		if entry.Expired(now) {
			return true
		}
		numKeys++
		size += len(k.(string)) + len(entry.Value)
		return true
	})
	return numKeys, size / 1024
}

// Backup writes a consistent snapshot of the cache file into the backup
// directory and returns its path.
func (pc *PersistentCache) Backup() (string, error) {
	name := fmt.Sprintf("lyrics_backup_%s.db", pc.now().Format("2006-01-02_15-04-05.000"))
	path := filepath.Join(pc.backupPath, name)

	err := pc.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(path, 0600)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	log.Infof("%s Snapshot written to %s", logcolors.LogCacheBackup, path)
	return path, nil
}

// BackupAndClear snapshots the cache and then empties it
func (pc *PersistentCache) BackupAndClear() (string, error) {
	path, err := pc.Backup()
	if err != nil {
		return "", err
	}
	if err := pc.Clear(); err != nil {
		return path, fmt.Errorf("backup written but clear failed: %w", err)
	}
	log.Infof("%s Cache emptied (snapshot: %s)", logcolors.LogCacheClear, path)
	return path, nil
}

// BackupInfo describes one snapshot file
type BackupInfo struct {
	FileName  string    `json:"fileName"`
	Size      int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListBackups returns the snapshot files in the backup directory
func (pc *PersistentCache) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(pc.backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".db" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{FileName: e.Name(), Size: info.Size(), CreatedAt: info.ModTime()})
	}
	return backups, nil
}

// Close closes the database file
func (pc *PersistentCache) Close() error {
	if pc.db == nil {
		return nil
	}
	return pc.db.Close()
}
