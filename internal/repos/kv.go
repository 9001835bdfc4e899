package repos

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	applog "ecofinds/internal/log"
)

// Storage slot keys.
const (
	KeySessionUser   = "ecofinds_user"
	KeyCart          = "ecofinds_cart"
	KeyLocalProducts = "ecofinds_local_products"
)

// KV is the persistence adapter: named slots holding JSON blobs. It owns no
// domain semantics, only serialization.
type KV struct{ db *sqlx.DB }

func NewKV(db *sqlx.DB) *KV { return &KV{db: db} }

// Save serializes value and writes it under key. Failures are swallowed and
// logged; callers never observe a storage error.
func (s *KV) Save(key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		applog.Error(nil, "kv.save.marshal", err, map[string]any{"key": key})
		return
	}
	_, err = s.db.Exec(`
		INSERT INTO kv(key,value,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP
	`, key, string(b))
	if err != nil {
		applog.Error(nil, "kv.save.write", err, map[string]any{"key": key})
	}
}

// Load unmarshals the blob at key into dest and reports whether it did.
// On a missing key or bad JSON, dest is left untouched so the caller's
// default stands.
func (s *KV) Load(key string, dest any) bool {
	var raw string
	if err := s.db.Get(&raw, `SELECT value FROM kv WHERE key=?`, key); err != nil {
		if err != sql.ErrNoRows {
			applog.Error(nil, "kv.load.read", err, map[string]any{"key": key})
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		applog.Error(nil, "kv.load.unmarshal", err, map[string]any{"key": key})
		return false
	}
	return true
}

func (s *KV) Remove(key string) {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key=?`, key); err != nil {
		applog.Error(nil, "kv.remove", err, map[string]any{"key": key})
	}
}
