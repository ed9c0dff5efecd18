package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"conceptcraft/internal/concept/model"
)

// MemoryStore keeps wizard state in process memory. It backs tests and local
// runs without a database, and mirrors StateRepository key for key. Values
// are stored as JSON so callers get copies, never shared pointers.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) get(key string, out interface{}) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadConcept(userID string) (*model.BusinessConcept, error) {
	var concept model.BusinessConcept
	ok, err := m.get(conceptKey(userID), &concept)
	if err != nil || !ok {
		return nil, err
	}
	return &concept, nil
}

func (m *MemoryStore) SaveConcept(userID string, concept *model.BusinessConcept) error {
	return m.put(conceptKey(userID), concept)
}

func (m *MemoryStore) LoadPersonas(userID string) ([]model.Persona, error) {
	var personas []model.Persona
	if _, err := m.get(personasKey(userID), &personas); err != nil {
		return nil, err
	}
	return personas, nil
}

func (m *MemoryStore) SavePersonas(userID string, personas []model.Persona) error {
	return m.put(personasKey(userID), personas)
}

func (m *MemoryStore) LoadStep(userID string) (int, error) {
	var step int
	if _, err := m.get(stepKey(userID), &step); err != nil {
		return 0, err
	}
	return step, nil
}

func (m *MemoryStore) SaveStep(userID string, step int) error {
	return m.put(stepKey(userID), step)
}

func (m *MemoryStore) IncrementCounter(key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	if raw, ok := m.data[key]; ok {
		n, err := strconv.Atoi(string(raw))
		if err != nil {
			return 0, fmt.Errorf("counter %s holds %q", key, raw)
		}
		count = n
	}
	count++
	m.data[key] = []byte(strconv.Itoa(count))
	return count, nil
}

func (m *MemoryStore) GetCounter(key string) (int, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	return strconv.Atoi(string(raw))
}
