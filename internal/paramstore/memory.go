package paramstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used as a test double by the paramstore,
// vault and commands tests. Fail* entries make the named operation return
// the given error.
type MemStore struct {
	mu     sync.Mutex
	params map[string]Parameter

	FailDescribe map[string]error
	FailPut      map[string]error
	FailDelete   map[string]error
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns a MemStore holding params.
func NewMemStore(params ...Parameter) *MemStore {
	m := &MemStore{params: make(map[string]Parameter)}
	for _, p := range params {
		m.params[p.Name] = p
	}
	return m
}

// Get returns a stored parameter.
func (m *MemStore) Get(name string) (Parameter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.params[name]
	return p, ok
}

// Names returns all stored names, sorted.
func (m *MemStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.params))
	for n := range m.params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *MemStore) ListByPath(_ context.Context, path string) ([]Parameter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := strings.TrimSuffix(path, "/") + "/"
	var out []Parameter
	for name, p := range m.params {
		if strings.HasPrefix(name, prefix) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) Describe(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailDescribe[name]; err != nil {
		return "", err
	}
	p, ok := m.params[name]
	if !ok {
		return "", fmt.Errorf("describe parameter %s: %w", name, ErrNotFound)
	}
	return p.Description, nil
}

func (m *MemStore) Put(_ context.Context, p Parameter, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailPut[p.Name]; err != nil {
		return err
	}
	if _, exists := m.params[p.Name]; exists && !overwrite {
		return fmt.Errorf("put parameter %s: %w", p.Name, ErrAlreadyExists)
	}
	m.params[p.Name] = p
	return nil
}

func (m *MemStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailDelete[name]; err != nil {
		return err
	}
	if _, ok := m.params[name]; !ok {
		return fmt.Errorf("delete parameter %s: %w", name, ErrNotFound)
	}
	delete(m.params, name)
	return nil
}
