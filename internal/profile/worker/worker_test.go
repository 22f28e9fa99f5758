package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talkbase/talkbase/internal/bus"
	"github.com/talkbase/talkbase/internal/event"
	profileDomain "github.com/talkbase/talkbase/internal/profile/domain"
)

// MockProvisioner is a mock implementation of ProfileProvisioner
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context, userID uuid.UUID) (*profileDomain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileDomain.Profile), args.Error(1)
}

func userCreatedPayload(t *testing.T, userID uuid.UUID) []byte {
	t.Helper()
	payload, err := event.Encode(event.NewUserCreated(event.UserPayload{
		ID:       userID.String(),
		Username: "alice",
		Email:    "alice@example.com",
		IsActive: true,
	}))
	require.NoError(t, err)
	return payload
}

func TestProvisioningWorker_Handle(t *testing.T) {
	t.Run("provisions profile for user_created", func(t *testing.T) {
		provisioner := &MockProvisioner{}
		worker := NewProvisioningWorker(nil, provisioner, nil)

		userID := uuid.Must(uuid.NewV7())
		provisioner.On("Provision", mock.Anything, userID).
			Return(&profileDomain.Profile{UserID: userID}, nil)

		err := worker.Handle(context.Background(), userCreatedPayload(t, userID))
		assert.NoError(t, err)
		provisioner.AssertExpectations(t)
	})

	t.Run("malformed payload is acknowledged", func(t *testing.T) {
		provisioner := &MockProvisioner{}
		worker := NewProvisioningWorker(nil, provisioner, nil)

		err := worker.Handle(context.Background(), []byte("not json"))
		assert.NoError(t, err)
		provisioner.AssertNotCalled(t, "Provision")
	})

	t.Run("unknown event type is acknowledged", func(t *testing.T) {
		provisioner := &MockProvisioner{}
		worker := NewProvisioningWorker(nil, provisioner, nil)

		err := worker.Handle(context.Background(), []byte(`{"type":"user_deleted","user":{"id":"u1"}}`))
		assert.NoError(t, err)
		provisioner.AssertNotCalled(t, "Provision")
	})

	t.Run("missing user id is acknowledged", func(t *testing.T) {
		provisioner := &MockProvisioner{}
		worker := NewProvisioningWorker(nil, provisioner, nil)

		err := worker.Handle(context.Background(), []byte(`{"type":"user_created"}`))
		assert.NoError(t, err)
		provisioner.AssertNotCalled(t, "Provision")
	})

	t.Run("storage failure is retried", func(t *testing.T) {
		provisioner := &MockProvisioner{}
		worker := NewProvisioningWorker(nil, provisioner, nil)

		userID := uuid.Must(uuid.NewV7())
		provisioner.On("Provision", mock.Anything, userID).
			Return(nil, errors.New("database down"))

		err := worker.Handle(context.Background(), userCreatedPayload(t, userID))
		assert.Error(t, err)
	})
}

func TestProvisioningWorker_Run(t *testing.T) {
	// End to end through the in-memory bus: publish two events for the same
	// user, the worker provisions once and treats the duplicate as a no-op.
	memoryBus := bus.NewMemoryBus()
	provisioner := &MockProvisioner{}
	worker := NewProvisioningWorker(memoryBus, provisioner, nil)

	userID := uuid.Must(uuid.NewV7())
	payload := userCreatedPayload(t, userID)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, memoryBus.Publish(ctx, payload))
	require.NoError(t, memoryBus.Publish(ctx, payload))

	calls := make(chan struct{}, 2)
	provisioner.On("Provision", mock.Anything, userID).
		Run(func(mock.Arguments) { calls <- struct{}{} }).
		Return(&profileDomain.Profile{UserID: userID}, nil)

	go func() { _ = worker.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for provisioning")
		}
	}
	cancel()

	provisioner.AssertNumberOfCalls(t, "Provision", 2)
}
