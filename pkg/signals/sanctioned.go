package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SanctionRecord is one entry in the sanctioned-ID cache, keyed by the
// canonical digit-string value of the identifier.
type SanctionRecord struct {
	Value      string `json:"value"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	EntityType string `json:"entity_type"`
	HasTIN     bool   `json:"has_tin"`
	HasDOB     bool   `json:"has_dob"`
}

// snapshotEntry is the on-disk shape of one value in the §6 snapshot file:
// name/source/entity_type are the binding fields, has_tin/has_dob an
// extension this cache also understands for the TIN+DOB review gate.
type snapshotEntry struct {
	Name       string `json:"name"`
	Source     string `json:"source"`
	EntityType string `json:"entity_type"`
	HasTIN     bool   `json:"has_tin"`
	HasDOB     bool   `json:"has_dob"`
}

// SanctionedIDCache is the process-wide, read-mostly sanctioned-ID lookup
// table described in §3 Lifecycle and §5 Shared resources: readers never
// block each other, writers swap the whole map atomically under a
// reader-writer lock.
type SanctionedIDCache struct {
	mu      sync.RWMutex
	records map[string]SanctionRecord

	snapshotPath string
	pool         *pgxpool.Pool
	reloading    atomic.Bool
}

// NewSanctionedIDCache builds an empty cache. Call LoadSnapshot or
// LoadFromPostgres to populate it before serving requests.
func NewSanctionedIDCache() *SanctionedIDCache {
	return &SanctionedIDCache{records: map[string]SanctionRecord{}}
}

// Lookup returns the record for value, if any, regardless of whether value
// is a formally valid identifier (§4.2's "consult... regardless of valid").
func (c *SanctionedIDCache) Lookup(value string) (SanctionRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[value]
	return rec, ok
}

// Size returns the number of cached entries.
func (c *SanctionedIDCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Swap atomically replaces the entire record set. Existing readers holding
// the old map (via a completed Lookup) are unaffected; no lookup is ever
// partially served from a mix of old and new data.
func (c *SanctionedIDCache) Swap(records map[string]SanctionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
}

// LoadSnapshot reads a §6 JSON snapshot — an object keyed by canonical
// digit-string identifier, each value carrying name/source/entity_type (plus
// the has_tin/has_dob extension this cache uses for the TIN+DOB review gate)
// — from path and atomically swaps it in. It tries once, without waiting, to
// take the lock file path+".lock" and holds it for the read when it gets it;
// when another process holds that lock, the snapshot is read anyway.
func (c *SanctionedIDCache) LoadSnapshot(path string) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("sanctioned cache: acquiring lock: %w", err)
	}
	if locked {
		defer lock.Unlock()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sanctioned cache: reading snapshot %s: %w", path, err)
	}

	var entries map[string]snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("sanctioned cache: parsing snapshot %s: %w", path, err)
	}

	records := make(map[string]SanctionRecord, len(entries))
	for value, e := range entries {
		records[value] = SanctionRecord{
			Value:      value,
			Name:       e.Name,
			Source:     e.Source,
			EntityType: e.EntityType,
			HasTIN:     e.HasTIN,
			HasDOB:     e.HasDOB,
		}
	}

	c.snapshotPath = path
	c.Swap(records)
	return nil
}

// AttachPostgres configures an optional Postgres pool used by Reload to
// refresh the cache from a live sanctions table instead of a flat file.
func (c *SanctionedIDCache) AttachPostgres(pool *pgxpool.Pool) {
	c.pool = pool
}

// Reload re-reads the current source (Postgres if attached, else the last
// snapshot path) and atomically swaps the result in. Safe to call
// concurrently with in-flight Lookups. Only one refresh runs at a time: a
// Reload that starts while another is running returns nil at once without
// refreshing.
func (c *SanctionedIDCache) Reload(ctx context.Context) error {
	if !c.reloading.CompareAndSwap(false, true) {
		return nil
	}
	defer c.reloading.Store(false)

	if c.pool != nil {
		return c.reloadFromPostgres(ctx)
	}
	if c.snapshotPath != "" {
		return c.LoadSnapshot(c.snapshotPath)
	}
	return nil
}

func (c *SanctionedIDCache) reloadFromPostgres(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `SELECT value, name, source, entity_type, has_tin, has_dob FROM sanctioned_identifiers`)
	if err != nil {
		return fmt.Errorf("sanctioned cache: querying postgres: %w", err)
	}
	defer rows.Close()

	records := map[string]SanctionRecord{}
	for rows.Next() {
		var rec SanctionRecord
		if err := rows.Scan(&rec.Value, &rec.Name, &rec.Source, &rec.EntityType, &rec.HasTIN, &rec.HasDOB); err != nil {
			return fmt.Errorf("sanctioned cache: scanning row: %w", err)
		}
		records[rec.Value] = rec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sanctioned cache: iterating rows: %w", err)
	}

	c.Swap(records)
	return nil
}
