package fixture

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchProcesses(t *testing.T) {
	srv := httptest.NewServer(NewServer(ServerOptions{}).Handler())
	defer srv.Close()

	procs, err := NewClient(srv.URL+"/", nil).FetchProcesses(context.Background())
	require.NoError(t, err)
	require.Len(t, procs, 3)
	assert.Equal(t, "proc-001", procs[0].ID)
}

func TestClient_NonSuccessIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch processes"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).FetchProcesses(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Equal(t, "Failed to fetch processes", fe.Message)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestClient_NonJSONErrorUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).FetchProcesses(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Bad Gateway", fe.Message)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"processes": [`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).FetchProcesses(context.Background())
	require.Error(t, err)
	var fe *FetchError
	assert.False(t, errors.As(err, &fe))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).FetchProcesses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching processes")
}

func TestClient_ContextCancelDuringLatency(t *testing.T) {
	srv := httptest.NewServer(NewServer(ServerOptions{Latency: time.Hour}).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL, nil).FetchProcesses(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
