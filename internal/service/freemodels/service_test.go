package freemodels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogue(t *testing.T, hits *atomic.Int32, status *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		if code := status.Load(); code != 0 {
			w.WriteHeader(int(code))
			return
		}
		_ = json.NewEncoder(w).Encode(modelsResponse{Data: []Model{
			{ID: "openrouter/auto"},
			{ID: "meta-llama/llama-3.1-8b-instruct:free", Pricing: Pricing{Prompt: "0", Completion: "0"}},
			{ID: "openai/gpt-4o", Pricing: Pricing{Prompt: "0.000005", Completion: "0.000015"}},
			{ID: "qwen/qwen-2-7b-instruct:free", Pricing: Pricing{Prompt: "0.0"}},
		}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetFreeModels_FiltersAndCaches(t *testing.T) {
	t.Parallel()
	var hits, status atomic.Int32
	srv := catalogue(t, &hits, &status)
	svc := NewService("key", srv.URL+"/", time.Hour, srv.Client())

	models, err := svc.GetFreeModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "meta-llama/llama-3.1-8b-instruct:free", models[0].ID)

	first, err := svc.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models[0].ID, first)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetFreeModels_StaleCacheSurvivesFailure(t *testing.T) {
	t.Parallel()
	var hits, status atomic.Int32
	srv := catalogue(t, &hits, &status)
	svc := NewService("key", srv.URL, 0, srv.Client())

	_, err := svc.GetFreeModels(context.Background())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	status.Store(http.StatusTooManyRequests)
	models, err := svc.GetFreeModels(context.Background())
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGetFreeModels_ErrorWithoutCache(t *testing.T) {
	t.Parallel()
	var hits, status atomic.Int32
	status.Store(http.StatusUnauthorized)
	srv := catalogue(t, &hits, &status)
	svc := NewService("key", srv.URL, time.Hour, srv.Client())

	_, err := svc.First(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestIsFree(t *testing.T) {
	t.Parallel()
	assert.True(t, IsFree(Model{ID: "x/y"}))
	assert.False(t, IsFree(Model{ID: "x/y", Pricing: Pricing{Image: "0.01"}}))
	assert.False(t, IsFree(Model{ID: "openrouter/auto"}))
	assert.False(t, IsFree(Model{ID: "anthropic/claude-3-haiku"}))
}
