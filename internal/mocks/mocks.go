// Package mocks contains shared testify mocks for the widget server tests.
package mocks

import (
	"context"

	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockRateSource mocks the RateSource interface
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchLastRates(ctx context.Context) ([]entity.RateRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RateRecord), args.Error(1)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	m.Called(key, value)
	return m
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	m.Called(fields)
	return m
}
