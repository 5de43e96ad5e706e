package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/cache"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("rest-test-secret")

type fakeImages struct {
	uploaded []services.ImageFile
	err      error
}

func (f *fakeImages) UploadImage(ctx context.Context, userID string, img services.ImageFile) (*models.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploaded = append(f.uploaded, img)
	return &models.Upload{Key: "images/2025/1/1/a.png", URL: "http://s3.local/images/2025/1/1/a.png?sig=1"}, nil
}

func (f *fakeImages) GetPresignedPutUrl(ctx context.Context, filename string) (*models.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Upload{Key: "images/2025/1/1/b" + filename, URL: "http://s3.local/put?sig=2"}, nil
}

func (f *fakeImages) GetPresignedGetUrl(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "http://s3.local/" + key + "?sig=3", nil
}

type testServer struct {
	srv     *HTTPServer
	handler http.Handler
	rm      repomanager.RepositoryManager
	images  *fakeImages
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	log := logging.NewNop()
	tokens := auth.NewTokenService(testSecret, time.Hour)
	images := &fakeImages{}

	srv := NewHTTPServer("127.0.0.1:0", log, Services{
		Tokens:   tokens,
		Auth:     services.NewAuthService(rm, tokens, events.Nop{}, log),
		Users:    services.NewUserService(rm, cache.Nop{}, events.Nop{}, log),
		Posts:    services.NewPostService(rm, cache.Nop{}, events.Nop{}, log),
		Comments: services.NewCommentService(rm),
		Uploads:  images,
	}, 1024, time.Second)

	return &testServer{srv: srv, handler: srv.Handler(), rm: rm, images: images}
}

// do sends body as JSON unless it is already an io.Reader.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rd = b
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the API and returns it with its token.
func (ts *testServer) register(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res services.AuthResult
	decode(t, rec, &res)
	return res.User, res.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	decode(t, rec, &e)
	return e.Error
}
