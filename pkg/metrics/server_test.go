package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServer_ServesMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordPublished(stream)

	port := freePort(t)
	srv := NewServer(fmt.Sprintf("127.0.0.1:%d", port), reg)
	errCh := srv.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, srv.Shutdown(ctx))
	}()

	// Wait for the listener to come up.
	var resp *http.Response
	var err error
	for i := 0; i < 50; i++ {
		resp, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthz", port))
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "eventq_records_published_total")

	select {
	case err := <-errCh:
		require.NoError(t, err)
	default:
	}
}

func TestServer_ListenFailureSurfacesOnChannel(t *testing.T) {
	// Occupy a port so the server cannot bind it.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv := NewServer(l.Addr().String(), prometheus.NewRegistry())
	errCh := srv.Start()

	select {
	case err, ok := <-errCh:
		require.True(t, ok, "expected a listen error before the channel closed")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics server")
	case <-time.After(2 * time.Second):
		t.Fatal("listen failure was not reported on the error channel")
	}
}

func TestServer_ShutdownClosesErrChannel(t *testing.T) {
	port := freePort(t)
	srv := NewServer(fmt.Sprintf("127.0.0.1:%d", port), prometheus.NewRegistry())
	errCh := srv.Start()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err, ok := <-errCh:
		if ok {
			require.NoError(t, err)
		}
	case <-time.After(time.Second):
		t.Fatal("error channel not closed after shutdown")
	}
}
