package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.db" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	body, err := DownloadFile(context.Background(), nil, srv.URL+"/app.db")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = DownloadFile(context.Background(), NewHTTPClient(0), srv.URL+"/missing.db")
	assert.ErrorContains(t, err, "unexpected status code: 404")
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "app.db", FilenameFromURL("https://example.com/files/app.db?x=1", "fallback"))
	assert.Equal(t, "fallback", FilenameFromURL("https://example.com/", "fallback"))
	assert.Equal(t, "fallback", FilenameFromURL("https://example.com", "fallback"))
	assert.Equal(t, "fallback", FilenameFromURL("://bad", "fallback"))
}
