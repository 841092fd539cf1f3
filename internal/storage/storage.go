package storage

import "github.com/alisaviation/metricslog/internal/models"

type Storage interface {
	Record(name string, value models.Value) error
	SnapshotAndReset() []models.Entry
	Len() int
}
