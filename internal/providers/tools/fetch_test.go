package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 1.0,
	}
}

func TestFetch_FetchPage(t *testing.T) {
	tests := []struct {
		name            string
		handler         http.HandlerFunc
		emptyURL        bool
		useShortTimeout bool
		wantErr         bool
		wantErrMsg      string
		wantTitle       string
		wantContains    string
		wantNotContains string
	}{
		{
			name: "HTML page is reduced to text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				fmt.Fprint(w, `<html><head><title>Migraine &amp; Headache</title></head><body><h1>Symptoms</h1><p>Throbbing pain on one side.</p><script>var x = 1;</script></body></html>`)
			},
			wantTitle:       "Migraine & Headache",
			wantContains:    "Throbbing pain on one side.",
			wantNotContains: "<p>",
		},
		{
			name: "plain text kept as is",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				fmt.Fprint(w, "Drink fluids and rest.")
			},
			wantContains: "Drink fluids and rest.",
		},
		{
			name: "404 error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr:    true,
			wantErrMsg: "HTTP 404",
		},
		{
			name: "500 error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:    true,
			wantErrMsg: "HTTP 500",
		},
		{
			name:       "missing URL",
			emptyURL:   true,
			wantErr:    true,
			wantErrMsg: "failed to fetch url",
		},
		{
			name: "large response gets truncated",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte(strings.Repeat("a", maxResponseSize+100)))
			},
			wantContains: strings.Repeat("a", maxResponseSize),
		},
		{
			name: "timeout handling",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(500 * time.Millisecond)
			},
			useShortTimeout: true,
			wantErr:         true,
			wantErrMsg:      "failed to fetch url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := ""
			if !tt.emptyURL {
				server := httptest.NewServer(tt.handler)
				defer server.Close()
				url = server.URL
			}

			timeout := defaultFetchTimeout
			if tt.useShortTimeout {
				timeout = 100 * time.Millisecond
			}
			fetch := NewFetchWithTimeout(timeout, testRetry())

			page, err := fetch.FetchPage(context.Background(), url)

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, url, page.URL)
			assert.Equal(t, tt.wantTitle, page.Title)
			if tt.wantContains != "" {
				assert.Contains(t, page.Text, tt.wantContains)
			}
			if tt.wantNotContains != "" {
				assert.NotContains(t, page.Text, tt.wantNotContains)
			}
			if tt.name == "large response gets truncated" {
				assert.Len(t, page.Text, maxResponseSize)
			}
		})
	}
}

func TestFetch_RetryBehavior(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "Success after retries")
	}))
	defer server.Close()

	page, err := NewFetchWithTimeout(time.Second, testRetry()).FetchPage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, page.Text, "Success after retries")
	assert.Equal(t, 3, attempts, "should retry failed requests")
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewFetchWithTimeout(time.Second, testRetry()).FetchPage(context.Background(), server.URL)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestFetch_UserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	_, err := NewFetch().FetchPage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, core.AppUserAgent, receivedUA)
}
