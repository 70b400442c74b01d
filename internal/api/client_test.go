package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, staticToken(token), zap.NewNop()), srv
}

func TestBearerAttachedToAuthorizedCalls(t *testing.T) {
	var got string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"id":1,"email":"a@b.c","is_active":true,"is_superuser":false,"created_at":"2026-01-01T00:00:00"}`)
	}), "tok123")

	_, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", got)
}

func TestNoBearerWhenUnauthenticated(t *testing.T) {
	var got string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"openai_status":"ok"}`)
	}), "")

	_, err := client.Probe(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoginSendsFormEncodedCredentials(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/token", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		assert.Equal(t, "user@example.com", r.PostFormValue("username"))
		assert.Equal(t, "hunter2", r.PostFormValue("password"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer"}`)
	}), "")

	resp, err := client.Login(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
}

func TestErrorKindsByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusBadRequest, KindValidation},
		{http.StatusConflict, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"detail":"backend says no"}`)
			}), "")

			_, err := client.CurrentUser(context.Background())
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.want), "expected kind %s, got %v", tt.want, err)
			assert.Equal(t, "backend says no", Detail(err))
		})
	}
}

func TestFallbackDetailWhenBodyEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), "")

	_, err := client.ListDocuments(context.Background(), 0, 10)
	require.Error(t, err)
	assert.Equal(t, "error loading documents", Detail(err))
}

func TestTransportFailureIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listens anymore

	client := NewClient(srv.URL, time.Second, staticToken(""), zap.NewNop())
	_, err := client.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
}

func TestSearchResultsAreCached(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"query":"q","results":[],"total_results":0}`)
	}), "tok")

	_, err := client.SearchSimilar(context.Background(), "refund policy", 5)
	require.NoError(t, err)
	_, err = client.SearchSimilar(context.Background(), "refund policy", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	// A different query misses the cache.
	_, err = client.SearchSimilar(context.Background(), "shipping", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDocumentStatusIsCachedPerDocument(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%s,"title":"doc","processed":true,"uploaded_at":"2026-01-01T00:00:00","chunks_stored":4,"message":"ready"}`,
			r.URL.Path[len("/documents/"):len(r.URL.Path)-len("/status")])
	}), "tok")

	ctx := context.Background()
	st, err := client.DocumentStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, st.ChunksStored)

	_, err = client.DocumentStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "polling the same document hits the cache")

	_, err = client.DocumentStatus(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDeleteFlushesReadCache(t *testing.T) {
	var searches atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			fmt.Fprint(w, `{"message":"ok","deleted_id":1}`)
			return
		}
		searches.Add(1)
		fmt.Fprint(w, `{"query":"q","results":[],"total_results":0}`)
	}), "tok")

	ctx := context.Background()
	_, _ = client.SearchSimilar(ctx, "q", 5)
	require.NoError(t, client.DeleteDocument(ctx, 1))
	_, _ = client.SearchSimilar(ctx, "q", 5)
	assert.Equal(t, int32(2), searches.Load())
}
