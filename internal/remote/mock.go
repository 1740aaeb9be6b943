package remote

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCollection is a mock implementation of Collection for testing.
//
// Example usage:
//
//	c := new(MockCollection)
//	c.On("Mutate", mock.Anything, mock.MatchedBy(func(m Mutation) bool {
//	    return m.Path == "/others/notifications"
//	})).Return(nil)
//
//	err := c.Mutate(ctx, MarkNotificationRead(id, 7))
//	assert.NoError(t, err)
//	c.AssertExpectations(t)
type MockCollection struct {
	mock.Mock
}

// FetchPage returns a mocked raw page.
// Configure the return value using:
//
//	mock.On("FetchPage", mock.Anything, Notifications, mock.Anything).Return(RawPage{...}, nil)
func (m *MockCollection) FetchPage(ctx context.Context, res Resource, params Params) (RawPage, error) {
	args := m.Called(ctx, res, params)
	return args.Get(0).(RawPage), args.Error(1)
}

// Mutate returns a mocked mutation error.
// Configure the return value using:
//
//	mock.On("Mutate", mock.Anything, mock.Anything).Return(nil)
func (m *MockCollection) Mutate(ctx context.Context, mutation Mutation) error {
	args := m.Called(ctx, mutation)
	return args.Error(0)
}
