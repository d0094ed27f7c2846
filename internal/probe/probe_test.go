package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/dlprobe/internal/output"
	"github.com/tanq16/dlprobe/internal/utils"
)

func newTestProber(endpoint string, timeout time.Duration) (*Prober, *bytes.Buffer) {
	var buf bytes.Buffer
	p := New(endpoint, utils.HTTPClientConfig{Timeout: timeout}, output.NewPrinter(&buf))
	return p, &buf
}

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendSuccess(t *testing.T) {
	var got map[string]any
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/download", r.URL.Path)
		gotHeaders = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"status":"queued"}`)
	}))
	defer srv.Close()

	p, buf := newTestProber(srv.URL+"/download", time.Second)
	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	assert.Equal(t, KindSuccess, res.Kind)
	assert.True(t, res.OK())
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `{"status":"queued"}`, res.Body)
	assert.NoError(t, res.AsError())

	assert.Equal(t, map[string]any{
		"url":      "https://example.com/test-file.zip",
		"filename": "test-file.zip",
	}, got)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, res.RequestID, gotHeaders.Get(utils.RequestIDHeader))
	assert.Equal(t, utils.ToolUserAgent, gotHeaders.Get("User-Agent"))

	trace := buf.String()
	assert.Contains(t, trace, "Sending download request to "+srv.URL+"/download")
	assert.Contains(t, trace, `"url": "https://example.com/test-file.zip"`)
	assert.Contains(t, trace, "Response status code: 200")
	assert.Contains(t, trace, `"status": "queued"`)
	assert.Contains(t, trace, "Request sent successfully")
}

func TestSendOptionalFields(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	p, buf := newTestProber(srv.URL, time.Second)
	payload := utils.DownloadRequest{
		URL:      "https://example.com/big.iso",
		Filename: "big.iso",
		FileSize: 2 * 1024 * 1024,
		MimeType: "application/x-iso9660-image",
	}
	res := p.Send(context.Background(), payload)

	require.Equal(t, KindSuccess, res.Kind)
	assert.Equal(t, float64(2*1024*1024), got["fileSize"])
	assert.Equal(t, "application/x-iso9660-image", got["mimeType"])
	assert.NotContains(t, got, "savePath")
	assert.Contains(t, buf.String(), "File size: 2.00 MB")
}

func TestSendHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "conflict", status: http.StatusConflict, body: `{"status":"duplicate"}`},
		{name: "bad request", status: http.StatusBadRequest, body: `{"status":"error", "message":"Invalid JSON"}`},
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "created is not 200", status: http.StatusCreated, body: `{"status":"queued"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.status, tt.body)
			p, buf := newTestProber(srv.URL+"/download", time.Second)

			res := p.Send(context.Background(), utils.DefaultDownloadRequest())

			assert.Equal(t, KindHTTPError, res.Kind)
			assert.False(t, res.OK())
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.body, res.Body)
			require.Error(t, res.AsError())
			assert.Contains(t, res.AsError().Error(), fmt.Sprint(tt.status))
			assert.Contains(t, buf.String(), fmt.Sprintf("Request failed: %d", tt.status))
			assert.NotContains(t, buf.String(), "Request sent successfully")
		})
	}
}

func TestSendConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/download"
	srv.Close()

	p, buf := newTestProber(endpoint, time.Second)
	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	assert.Equal(t, KindConnectionFailure, res.Kind)
	assert.Zero(t, res.StatusCode)
	assert.Error(t, res.Err)

	port, err := utils.EndpointPort(endpoint)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "may not be running")
	assert.Contains(t, buf.String(), fmt.Sprintf("port %d", port))
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p, buf := newTestProber(srv.URL+"/download", 50*time.Millisecond)
	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	assert.Equal(t, KindTimeout, res.Kind)
	assert.Contains(t, buf.String(), "Request timed out after 50ms")
	assert.Less(t, res.Duration(), 2*time.Second)
}

func TestSendConnectTimeoutIsConnectionFailure(t *testing.T) {
	client := &http.Client{
		Timeout: 100 * time.Millisecond,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		},
	}
	var buf bytes.Buffer
	p := NewWithClient("http://192.0.2.1:8077/download", 100*time.Millisecond, client, output.NewPrinter(&buf))

	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	assert.Equal(t, KindConnectionFailure, res.Kind)
	assert.Contains(t, buf.String(), "may not be running")
	assert.NotContains(t, buf.String(), "timed out")
}

func TestSendTruncatesLargeBody(t *testing.T) {
	body := strings.Repeat("x", utils.MaxBodyBytes+10)
	srv := jsonServer(t, http.StatusConflict, body)
	p, buf := newTestProber(srv.URL+"/download", 5*time.Second)

	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	assert.Equal(t, KindHTTPError, res.Kind)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Body, utils.MaxBodyBytes)
	assert.Contains(t, buf.String(), "Response body truncated to 1.00 MB")
}

func TestSendSmallBodyNotTruncated(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"status":"queued"}`)
	p, buf := newTestProber(srv.URL+"/download", time.Second)

	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	assert.False(t, res.Truncated)
	assert.NotContains(t, buf.String(), "truncated")
}

func TestSendIsRepeatable(t *testing.T) {
	srv := jsonServer(t, http.StatusConflict, `{"status":"duplicate"}`)
	p, _ := newTestProber(srv.URL+"/download", time.Second)

	first := p.Send(context.Background(), utils.DefaultDownloadRequest())
	for range 3 {
		res := p.Send(context.Background(), utils.DefaultDownloadRequest())
		assert.Equal(t, first.Kind, res.Kind)
		assert.Equal(t, first.StatusCode, res.StatusCode)
		assert.Equal(t, first.Body, res.Body)
		assert.NotEqual(t, first.RequestID, res.RequestID)
	}
}

func TestSendMalformedEndpoint(t *testing.T) {
	p, buf := newTestProber("http://[::1", time.Second)
	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	assert.Equal(t, KindUnexpected, res.Kind)
	assert.Contains(t, res.Message, "building request")
	assert.Contains(t, buf.String(), "Unexpected error")
}

type panicDoer struct{}

func (panicDoer) Do(*http.Request) (*http.Response, error) {
	panic("transport exploded")
}

func TestSendRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	p := NewWithClient("http://localhost:8077/download", time.Second, panicDoer{}, output.NewPrinter(&buf))

	var res Result
	require.NotPanics(t, func() {
		res = p.Send(context.Background(), utils.DefaultDownloadRequest())
	})
	assert.Equal(t, KindUnexpected, res.Kind)
	assert.Equal(t, "transport exploded", res.Message)
	assert.Contains(t, buf.String(), "Unexpected error: transport exploded")
}

func TestSendCustomHeaders(t *testing.T) {
	var auth, agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		agent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	var buf bytes.Buffer
	p := New(srv.URL, utils.HTTPClientConfig{
		Timeout:   time.Second,
		UserAgent: "probe-test",
		Headers:   map[string]string{"Authorization": "Bearer abc"},
	}, output.NewPrinter(&buf))
	res := p.Send(context.Background(), utils.DefaultDownloadRequest())

	require.Equal(t, KindSuccess, res.Kind)
	assert.Equal(t, "Bearer abc", auth)
	assert.Equal(t, "probe-test", agent)
}

func TestStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path != "/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, "Downloader HTTP Server is running")
	}))
	defer srv.Close()

	p, buf := newTestProber(srv.URL+"/download", time.Second)
	res := p.Status(context.Background())

	assert.Equal(t, KindSuccess, res.Kind)
	assert.Equal(t, "Downloader HTTP Server is running", res.Body)
	assert.EqualValues(t, 1, hits.Load())
	assert.Contains(t, buf.String(), "Checking server status at "+srv.URL+"/status")
}

func TestStatusUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/download"
	srv.Close()

	p, buf := newTestProber(endpoint, time.Second)
	res := p.Status(context.Background())

	assert.Equal(t, KindConnectionFailure, res.Kind)
	assert.True(t, strings.Contains(buf.String(), "may not be running"))
}

func TestPackageSend(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"status":"success","message":"Download request received"}`)
	res := Send(context.Background(), srv.URL+"/download", utils.DefaultDownloadRequest(), time.Second)
	assert.Equal(t, KindSuccess, res.Kind)
}
