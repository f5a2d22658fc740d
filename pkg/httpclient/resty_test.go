package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"stockgenius/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	client := New(logger.NewNop(), srv.URL, time.Second, "secret")

	var result struct {
		Name string `json:"name"`
	}
	resp, err := client.Get(context.Background(), "/query", map[string]string{"function": "GLOBAL_QUOTE"}, nil, &result)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"ok"}`, string(resp.Body))
	assert.Equal(t, "ok", result.Name)
}

func TestRestyClient_NonOKStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := New(logger.NewNop(), srv.URL, time.Second, "").Get(context.Background(), "/", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRestyClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(logger.NewNop(), url, time.Second, "").Get(context.Background(), "/query", nil, nil, nil)
	assert.Error(t, err)
}
