package storage

import (
	"fmt"
	"sync"

	"github.com/alisaviation/metricslog/internal/models"
)

// MemStorage keeps the latest value of every metric in memory. All access
// to the map goes through mu.
type MemStorage struct {
	metrics map[string]*models.MetricValue
	mu      sync.Mutex
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		metrics: make(map[string]*models.MetricValue),
	}
}

// Record stores value under name and marks it fresh. The first record of a
// name binds its kind; later records of another kind fail with
// models.ErrTypeMismatch and leave the stored value untouched.
func (m *MemStorage) Record(name string, value models.Value) error {
	if value.Kind() == 0 {
		return fmt.Errorf("record %q: %w", name, models.ErrUnsupportedType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	metric, exists := m.metrics[name]
	if !exists {
		m.metrics[name] = models.NewMetricValue(value)
		return nil
	}
	return metric.Set(name, value)
}

// SnapshotAndReset returns a copy of every fresh metric and clears their
// fresh flag. Metrics without a new value since the previous call are left
// out. The result is in map order.
func (m *MemStorage) SnapshotAndReset() []models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var snapshot []models.Entry
	for name, metric := range m.metrics {
		if !metric.HasValue() {
			continue
		}
		snapshot = append(snapshot, models.Entry{Name: name, Value: metric.Clone()})
		metric.Reset()
	}
	return snapshot
}

func (m *MemStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.metrics)
}

// Kinds reports the kind each known metric is bound to.
func (m *MemStorage) Kinds() map[string]models.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()

	kinds := make(map[string]models.Kind, len(m.metrics))
	for name, metric := range m.metrics {
		kinds[name] = metric.Kind()
	}
	return kinds
}
