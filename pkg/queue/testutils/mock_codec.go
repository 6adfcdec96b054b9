package testutils

import (
	"github.com/stretchr/testify/mock"
)

// MockCodec is a mock implementation of queue.Codec for testing
type MockCodec struct {
	mock.Mock
}

// Marshal mocks the Marshal method
func (m *MockCodec) Marshal(event any) ([]byte, error) {
	args := m.Called(event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Unmarshal mocks the Unmarshal method
func (m *MockCodec) Unmarshal(data []byte, out any) error {
	args := m.Called(data, out)
	return args.Error(0)
}
