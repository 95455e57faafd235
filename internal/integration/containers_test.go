//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/app"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/orchestrator"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
	host, err := c.Host(ctx)
	require.NoError(t, err)
	p, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host + ":" + p.Port()
}

func TestTika_ExtractsUploadedResume(t *testing.T) {
	t.Parallel()
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "apache/tika:2.9.0.0",
		ExposedPorts: []string{"9998/tcp"},
		WaitingFor:   wait.ForHTTP("/version").WithPort("9998/tcp").WithStartupTimeout(90 * time.Second),
	}, "9998")

	dir := t.TempDir()
	path := filepath.Join(dir, "upload-1.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\nGo engineer\n"), 0o600))

	client := tika.New("http://"+addr, 30*time.Second, dir)
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))

	text, err := client.ExtractPath(ctx, "cv.txt", path)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Go engineer")
}

func TestRedis_LockerSerializesHolders(t *testing.T) {
	t.Parallel()
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}, "6379")

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.Eventually(t, func() bool { return rdb.Ping(ctx).Err() == nil }, 30*time.Second, time.Second)

	checks := app.BuildReadinessChecks(app.Dependencies{DB: pingOK{}, Redis: rdb})
	for _, c := range checks {
		require.NoError(t, c.Probe(ctx), c.Name)
	}

	locker := orchestrator.NewRedisLocker(rdb, 10*time.Second)
	var inside, overlaps int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			release, err := locker.Acquire(gctx, "cand-1")
			if err != nil {
				return err
			}
			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			return release(context.Background())
		})
	}
	require.NoError(t, g.Wait())
	assert.Zero(t, atomic.LoadInt32(&overlaps))
}

type pingOK struct{}

func (pingOK) Ping(context.Context) error { return nil }
