package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClientWithBaseURL(srv.URL+"/", "test-token")
	require.NoError(t, err)
	return c
}

func TestFetchDiff(t *testing.T) {
	const rawDiff = "diff --git a/f.py b/f.py\n--- a/f.py\n+++ b/f.py\n@@ -0,0 +1,1 @@\n+x = 1\n"

	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/7", r.URL.Path)
		assert.Contains(t, r.Header.Get("Accept"), "diff")
		fmt.Fprint(w, rawDiff)
	})

	diff, err := c.FetchDiff(context.Background(), "acme", "widgets", 7)
	require.NoError(t, err)
	assert.Equal(t, rawDiff, diff)
}

func TestFetchDiffErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"missing pull request", http.StatusNotFound, ErrNotFound},
		{"bad token", http.StatusUnauthorized, ErrAuth},
		{"insufficient scope", http.StatusForbidden, ErrAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message": "nope"}`)
			})

			_, err := c.FetchDiff(context.Background(), "acme", "widgets", 7)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPostComment(t *testing.T) {
	var gotBody string
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/widgets/issues/7/comments", r.URL.Path)

		var payload struct {
			Body string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotBody = payload.Body

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 1}`)
	})

	err := c.PostComment(context.Background(), "acme", "widgets", 7, "## Automated Code Review")
	require.NoError(t, err)
	assert.Equal(t, "## Automated Code Review", gotBody)
}

func TestNewClientWithBaseURLRejectsBadURL(t *testing.T) {
	_, err := NewClientWithBaseURL("://nope", "")
	assert.Error(t, err)
}
