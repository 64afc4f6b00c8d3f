package mock

import (
	"context"
	"sync"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	AuditRepo *mockAuditRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		AuditRepo: &mockAuditRepo{},
	}
}

type mockAuditRepo struct {
	mu        sync.Mutex
	Stored    []models.AuditLogEntry
	AppendErr error
}

func (m *mockAuditRepo) AppendAudit(ctx context.Context, e *models.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Stored = append(m.Stored, *e)
	return nil
}

func (m *mockAuditRepo) ListAudit(ctx context.Context, f models.AuditFilter) ([]models.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AuditLogEntry{}
	for i := len(m.Stored) - 1; i >= 0; i-- {
		if f.ResourceType == "" || m.Stored[i].ResourceType == f.ResourceType {
			out = append(out, m.Stored[i])
		}
	}
	return out, nil
}

// Entries returns a copy of the recorded audit entries.
func (m *mockAuditRepo) Entries() []models.AuditLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditLogEntry(nil), m.Stored...)
}
