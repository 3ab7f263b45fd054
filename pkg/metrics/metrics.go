package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Package metrics keeps operational gauges and counters in an embedded
// time-series store under the application workdir.

var (
	mu       sync.Mutex
	storage  tstorage.Storage
	counters = map[string]int64{}
)

// InitMetrics opens the embedded time-series storage under workdir.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(time.Hour*24*30),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records an instantaneous value for name.
func SetGauge(name string, value int64) {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}

// IncrCounter increments a monotonic counter and records the new value.
func IncrCounter(name string, delta int64) {
	mu.Lock()
	if storage == nil {
		mu.Unlock()
		return
	}
	counters[name] += delta
	v := counters[name]
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(v)},
	}})
	mu.Unlock()
}

// GetCounter returns the in-process counter value.
func GetCounter(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return counters[name]
}

// Select returns raw data points for a metric within [start, end].
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil, nil
	}
	return storage.Select(name, nil, start, end)
}

// Close flushes and closes the underlying storage.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
