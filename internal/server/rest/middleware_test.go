package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_Rejections(t *testing.T) {
	ts := newTestServer(t)

	expired, err := auth.GenerateToken("u1", testSecret, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("u1", []byte("other-secret"), time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"no header", "", http.StatusForbidden, msgNoToken},
		{"wrong scheme", "Token abc", http.StatusBadRequest, "malformed authorization header"},
		{"bearer without token", "Bearer ", http.StatusBadRequest, "malformed authorization header"},
		{"garbage token", "Bearer abc.def", http.StatusForbidden, msgBadToken},
		{"expired token", "Bearer " + expired, http.StatusForbidden, msgBadToken},
		{"foreign secret", "Bearer " + foreign, http.StatusForbidden, msgBadToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/post/timeline/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorOf(t, rec))
		})
	}
}

func TestAccessToken_SetsUserID(t *testing.T) {
	ts := newTestServer(t)
	token, err := auth.GenerateToken("u42", testSecret, time.Hour, time.Now())
	require.NoError(t, err)

	var got string
	h := ts.srv.accessToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u42", got)
}

func TestRecoverer(t *testing.T) {
	ts := newTestServer(t)
	h := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), ts.srv.recoverer, ts.srv.requestLogger)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternal, errorOf(t, rec))
}

func TestRequestLogger_RequestID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/ping", "", nil)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestApplyMiddleware_Order(t *testing.T) {
	var order []string
	stage := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), stage("a"), stage("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
