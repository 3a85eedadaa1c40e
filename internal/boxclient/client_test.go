package boxclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession_SendsBearerTokenAndDecodesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/sessions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	id, err := c.CreateSession(context.Background(), map[string]string{"FOO": "bar"})
	require.NoError(t, err)
	assert.Equal(t, "sess-123", id)
}

func TestListSessions_DecodesArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]SessionInfo{
			{ID: "a", State: "running", LastUsed: time.Now()},
			{ID: "b", State: "idle", LastUsed: time.Now()},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
}

func TestDoRequest_NonOKStatusReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.GetSession(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestExec_RoundTripsCommandAndResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/sess-1/exec", r.URL.Path)

		var body struct {
			Command []string `json:"command"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"echo", "hi"}, body.Command)

		json.NewEncoder(w).Encode(CommandResult{Stdout: "hi\n", ExitCode: 0})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	result, err := c.Exec(context.Background(), "sess-1", []string{"echo", "hi"}, RunCommandOpts{})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", result.Stdout)
}

func TestWriteThenReadFile_Base64RoundTrip(t *testing.T) {
	var stored []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			var body struct {
				ContentBase64 string `json:"content_base64"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			stored = []byte(body.ContentBase64)
			json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"content_base64": string(stored),
				"truncated":      false,
			})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	ctx := context.Background()
	require.NoError(t, c.WriteFile(ctx, "sess-1", "/tmp/x.txt", []byte("hello")))

	content, truncated, err := c.ReadFile(ctx, "sess-1", "/tmp/x.txt", 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, "hello", string(content))
}

func TestExportSnapshot_StreamsBodyToWriter(t *testing.T) {
	payload := []byte("fake gzip tar bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	var buf bytes.Buffer
	require.NoError(t, c.ExportSnapshot(context.Background(), "sess-1", "checkpoint-1", &buf))
	assert.Equal(t, payload, buf.Bytes())
}

func TestImportSnapshot_SendsRequestBody(t *testing.T) {
	payload := []byte("archive contents")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		buf.ReadFrom(r.Body)
		assert.Equal(t, payload, buf.Bytes())
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	require.NoError(t, c.ImportSnapshot(context.Background(), "sess-1", "checkpoint-1", bytes.NewReader(payload)))
}
