package testnats

import (
	"context"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedContainer *NATSContainer
	sharedOnce      sync.Once
)

type NATSContainer struct {
	Container testcontainers.Container
	URL       string
}

// SetupSharedNATS starts one NATS server for the whole test binary.
// Tests sharing it must use distinct subjects or run sequentially.
func SetupSharedNATS(t *testing.T) *NATSContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForListeningPort("4222/tcp"),
		}

		natsContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err)

		host, err := natsContainer.Host(ctx)
		require.NoError(t, err)

		port, err := natsContainer.MappedPort(ctx, "4222")
		require.NoError(t, err)

		sharedContainer = &NATSContainer{
			Container: natsContainer,
			URL:       "nats://" + host + ":" + port.Port(),
		}
	})
	require.NotNil(t, sharedContainer, "shared nats container failed to start")

	return sharedContainer
}

func (nc *NATSContainer) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if nc.Container != nil {
		if err := nc.Container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

// Subscribe opens a client connection and a synchronous subscription on
// subject, both closed with the test.
func (nc *NATSContainer) Subscribe(t *testing.T, subject string) *nats.Subscription {
	t.Helper()

	conn, err := nats.Connect(nc.URL)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	sub, err := conn.SubscribeSync(subject)
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	return sub
}
