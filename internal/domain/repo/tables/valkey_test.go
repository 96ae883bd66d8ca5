package tables_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/valkey-io/valkey-go"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/domain/repo/tables"
	"github.com/fleetops/fleetquery/internal/factory"
)

// Helper

func startValkey(t *testing.T) testcontainers.Container {
	req := testcontainers.ContainerRequest{
		Image:        "quay.io/sclorg/valkey-7-c10s:bf91acf0827dc5db216164aafe3d34beb245dcec",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections tcp"),
	}
	ret, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})

	testcontainers.CleanupContainer(t, ret)

	require.NoError(t, err, "failed to start valkey instance")

	return ret
}

func createValkeyClient(t *testing.T, container testcontainers.Container) valkey.Client {
	endpoint, err := container.Endpoint(context.Background(), "")
	require.NoError(t, err, "failed to get valkey endpoint")

	ret, _, err := factory.CreateValkeyClient(context.Background(), config.Valkey{URL: endpoint})
	require.NoError(t, err, "failed to create valkey client")

	return ret
}

// Test suite definition

type ValkeyStoreIntegrationTestSuite struct {
	suite.Suite

	client    valkey.Client
	store     tables.ValkeyStore
	container testcontainers.Container
}

func (s *ValkeyStoreIntegrationTestSuite) SetupSuite() {
	t := s.T()

	s.container = startValkey(t)
	s.client = createValkeyClient(t, s.container)
	s.store = tables.NewValkeyStore(s.client, time.Minute)
}

func (s *ValkeyStoreIntegrationTestSuite) TearDownTest() {
	ctx := context.Background()
	command := s.client.B().Flushall().Build()

	err := s.client.Do(ctx, command).Error()
	require.NoError(s.T(), err, "failed to clean valkey")
}

// Run test

func TestValkeyStoreIntegrationTestSuite(t *testing.T) {
	t.Parallel()

	suite.Run(t, new(ValkeyStoreIntegrationTestSuite))
}

// Test

func (s *ValkeyStoreIntegrationTestSuite) TestWriteAndGet() {
	ctx := context.Background()
	t := s.T()

	entry := sampleEntry(42, "linux")

	err := s.store.WriteHostTables(ctx, entry)
	require.NoError(t, err, "failed to write entry")

	res, found, err := s.store.GetHostTables(ctx, 42, "linux")
	require.NoError(t, err, "failed to get entry")
	require.True(t, found, "entry not found")
	assert.Equal(t, entry, res, "different entry")
}

func (s *ValkeyStoreIntegrationTestSuite) TestOverwriteEntry() {
	ctx := context.Background()
	t := s.T()

	entry := sampleEntry(42, "linux")

	err := s.store.WriteHostTables(ctx, entry)
	require.NoError(t, err, "failed to write entry (1)")

	entry.Tables = entry.Tables[:0]
	entry.FetchedAt = entry.FetchedAt.Add(time.Minute)

	err = s.store.WriteHostTables(ctx, entry)
	require.NoError(t, err, "failed to write entry (2)")

	res, found, err := s.store.GetHostTables(ctx, 42, "linux")
	require.NoError(t, err, "failed to get entry")
	require.True(t, found, "entry not found")
	assert.Equal(t, entry.FetchedAt, res.FetchedAt, "different fetch time")
	assert.Empty(t, res.Tables, "tables were not overwritten")
}

func (s *ValkeyStoreIntegrationTestSuite) TestGetUnknownHost() {
	ctx := context.Background()
	t := s.T()

	_, found, err := s.store.GetHostTables(ctx, 7, "darwin")
	require.NoError(t, err, "failed to get entry")
	assert.False(t, found, "unexpected entry")
}

func (s *ValkeyStoreIntegrationTestSuite) TestInvalidateHost() {
	ctx := context.Background()
	t := s.T()

	err := s.store.WriteHostTables(ctx, sampleEntry(42, "linux"))
	require.NoError(t, err, "failed to write entry (linux)")

	err = s.store.WriteHostTables(ctx, sampleEntry(42, "darwin"))
	require.NoError(t, err, "failed to write entry (darwin)")

	err = s.store.InvalidateHost(ctx, 42)
	require.NoError(t, err, "failed to invalidate host")

	_, found, err := s.store.GetHostTables(ctx, 42, "linux")
	require.NoError(t, err)
	assert.False(t, found, "linux entry survived invalidation")

	_, found, err = s.store.GetHostTables(ctx, 42, "darwin")
	require.NoError(t, err)
	assert.False(t, found, "darwin entry survived invalidation")
}

func (s *ValkeyStoreIntegrationTestSuite) TestCountHosts() {
	ctx := context.Background()
	t := s.T()

	err := s.store.WriteHostTables(ctx, sampleEntry(42, "linux"))
	require.NoError(t, err)

	err = s.store.WriteHostTables(ctx, sampleEntry(42, "darwin"))
	require.NoError(t, err)

	err = s.store.WriteHostTables(ctx, sampleEntry(43, "linux"))
	require.NoError(t, err)

	count, err := s.store.CountHosts(ctx)
	require.NoError(t, err, "failed to count hosts")
	assert.Equal(t, 2, count, "unexpected host count")
}

func (s *ValkeyStoreIntegrationTestSuite) TestRetention() {
	ctx := context.Background()
	t := s.T()

	err := s.store.WriteHostTables(ctx, sampleEntry(42, "linux"))
	require.NoError(t, err, "failed to write entry")

	// This is breaking black-box testing but is convenient...
	command := s.client.B().Ttl().Key("fleetquery:tables:42").Build()

	resp := s.client.Do(ctx, command)
	require.NoError(t, resp.Error(), "failed to get TTL")

	ttl, err := resp.AsInt64() // ttl in second
	require.NoError(t, err, "TTL is not a int64")

	// This command returns -2 if key does not exist
	// This command returns -1 if key exists but has no TTL
	assert.Greater(t, ttl, int64(45), "ttl is supposed to be 1min") // Keeping some margin
}
