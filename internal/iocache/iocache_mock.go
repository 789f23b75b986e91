package iocache

import (
	"time"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// GetDatasetCache implements the StoreManager interface.
func (m *MockStoreManager) GetDatasetCache() contract.DatasetCache {
	ret := m.Called()
	cache, _ := ret.Get(0).(contract.DatasetCache)
	return cache
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(command, inputPath string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(command, inputPath, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, seriesCount, flagCount int) error {
	args := m.Called(runID, endTime, seriesCount, flagCount)
	return args.Error(0)
}

// RecordSeriesResult implements the RunStore interface.
func (m *MockRunStore) RecordSeriesResult(runID int64, record schema.RunSeriesRecord) error {
	args := m.Called(runID, record)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
