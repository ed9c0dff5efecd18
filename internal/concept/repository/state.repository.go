package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"conceptcraft/internal/concept/model"
	"conceptcraft/pkg/logger"
)

// SchemaVersion is bumped whenever the shape of a stored blob changes. Blobs
// written under another version fail validation on read and are reset.
const SchemaVersion = 1

// envelope wraps every stored blob so reads can validate the schema before
// trusting the payload.
type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

// StateRepository persists wizard state as whole-value rows in a single
// key/value table. Every write replaces the full value for its key; there are
// no partial updates at this layer.
type StateRepository struct {
	DB *sql.DB
}

func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{DB: db}
}

// EnsureSchema creates the state table if it does not exist yet.
func (r *StateRepository) EnsureSchema() error {
	_, err := r.DB.Exec(`CREATE TABLE IF NOT EXISTS wizard_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		logger.Sugar.Errorf("Failed to ensure wizard_state schema: %v", err)
	}
	return err
}

func conceptKey(userID string) string  { return "concept:" + userID }
func personasKey(userID string) string { return "personas:" + userID }
func stepKey(userID string) string     { return "step:" + userID }

// UsageKey names the monthly AI usage counter for a user, e.g.
// "ai_usage:u1:2026-08".
func UsageKey(userID, month string) string {
	return fmt.Sprintf("ai_usage:%s:%s", userID, month)
}

func (r *StateRepository) get(key string) ([]byte, error) {
	var value []byte
	err := r.DB.QueryRow("SELECT value FROM wizard_state WHERE key = $1", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read state key %s: %v", key, err)
		return nil, err
	}
	return value, nil
}

func (r *StateRepository) put(key string, value []byte) error {
	// The value column is TEXT; pass a string so the driver does not encode
	// the blob as bytea.
	_, err := r.DB.Exec(`INSERT INTO wizard_state (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`, key, string(value))
	if err != nil {
		logger.Sugar.Errorf("Failed to write state key %s: %v", key, err)
	}
	return err
}

func (r *StateRepository) delete(key string) {
	if _, err := r.DB.Exec("DELETE FROM wizard_state WHERE key = $1", key); err != nil {
		logger.Sugar.Errorf("Failed to delete state key %s: %v", key, err)
	}
}

// load reads a key and decodes its envelope into dst. A missing key returns
// false. A blob that fails validation is rejected, logged, and removed so the
// caller starts from the default instead of trusting a bad shape.
func (r *StateRepository) load(key string, dst interface{}) (bool, error) {
	raw, err := r.get(key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Sugar.Warnf("State key %s is not a valid envelope, resetting: %v", key, err)
		r.delete(key)
		return false, nil
	}
	if env.SchemaVersion != SchemaVersion {
		logger.Sugar.Warnf("State key %s has schema version %d, want %d, resetting", key, env.SchemaVersion, SchemaVersion)
		r.delete(key)
		return false, nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		logger.Sugar.Warnf("State key %s payload failed validation, resetting: %v", key, err)
		r.delete(key)
		return false, nil
	}
	return true, nil
}

func (r *StateRepository) store(key string, src interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, Data: data})
	if err != nil {
		return err
	}
	return r.put(key, raw)
}

// LoadConcept returns the active concept for a user, or nil when none exists.
func (r *StateRepository) LoadConcept(userID string) (*model.BusinessConcept, error) {
	var concept model.BusinessConcept
	ok, err := r.load(conceptKey(userID), &concept)
	if err != nil || !ok {
		return nil, err
	}
	return &concept, nil
}

func (r *StateRepository) SaveConcept(userID string, concept *model.BusinessConcept) error {
	return r.store(conceptKey(userID), concept)
}

func (r *StateRepository) LoadPersonas(userID string) ([]model.Persona, error) {
	var personas []model.Persona
	if _, err := r.load(personasKey(userID), &personas); err != nil {
		return nil, err
	}
	return personas, nil
}

func (r *StateRepository) SavePersonas(userID string, personas []model.Persona) error {
	return r.store(personasKey(userID), personas)
}

func (r *StateRepository) LoadStep(userID string) (int, error) {
	var step int
	if _, err := r.load(stepKey(userID), &step); err != nil {
		return 0, err
	}
	return step, nil
}

func (r *StateRepository) SaveStep(userID string, step int) error {
	return r.store(stepKey(userID), step)
}

// IncrementCounter bumps an integer counter row and returns the new value.
// Counter rows hold a bare integer, not an envelope.
func (r *StateRepository) IncrementCounter(key string) (int, error) {
	var count int
	err := r.DB.QueryRow(`INSERT INTO wizard_state (key, value, updated_at) VALUES ($1, '1', NOW())
		ON CONFLICT (key) DO UPDATE SET value = (wizard_state.value::int + 1)::text, updated_at = NOW()
		RETURNING value::int`, key).Scan(&count)
	if err != nil {
		logger.Sugar.Errorf("Failed to increment counter %s: %v", key, err)
	}
	return count, err
}

func (r *StateRepository) GetCounter(key string) (int, error) {
	var count int
	err := r.DB.QueryRow("SELECT value::int FROM wizard_state WHERE key = $1", key).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read counter %s: %v", key, err)
	}
	return count, err
}
