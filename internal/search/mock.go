package search

import (
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider for testing.
type MockProvider struct {
	mock.Mock
}

// Match provides a mock function with given fields: doc, query.
func (m *MockProvider) Match(doc Document, query string) bool {
	ret := m.Called(doc, query)
	if rf, ok := ret.Get(0).(func(Document, string) bool); ok {
		return rf(doc, query)
	}
	return ret.Bool(0)
}

// Name provides a mock function with given fields: .
func (m *MockProvider) Name() string {
	return m.Called().String(0)
}
