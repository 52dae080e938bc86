package inference

import (
	"github.com/stretchr/testify/mock"
)

// MockClient is a testify mock of Client for pipeline tests.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ExtraEmbedding(offerable, createdAt float32) ([]float32, error) {
	args := m.Called(offerable, createdAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}
