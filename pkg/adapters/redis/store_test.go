package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelst/skein/pkg/adapters/redis"
	"github.com/avelst/skein/pkg/domain"
	portstests "github.com/avelst/skein/pkg/ports/tests"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	portstests.WorkflowStoreContractTest(t, store)
}

func TestRedisStore_TTLExpiration(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Second))
	ctx := context.Background()

	flow := domain.Workflow{
		ID:    "wf-ttl",
		Name:  "ephemeral",
		Nodes: []domain.Node{{ID: "start", Type: domain.NodeTypeStart}},
	}
	require.NoError(t, store.Save(ctx, flow))

	_, err := store.Get(ctx, "wf-ttl")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "wf-ttl")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	// The index prunes the expired entry on the next List.
	flows, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	a := redis.NewFromClient(client, redis.WithPrefix("tenant-a:"))
	b := redis.NewFromClient(client, redis.WithPrefix("tenant-b:"))
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, domain.Workflow{ID: "wf", Name: "a"}))

	_, err = b.Get(ctx, "wf")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	got, err := a.Get(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}
