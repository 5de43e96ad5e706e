package rest

import (
	"bytes"
	"context"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/ping", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorOf(t, rec))

	rec = ts.do(t, http.MethodPatch, "/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Passw0rd",
		"username": "alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	var reg services.AuthResult
	decode(t, rec, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)

	t.Run("duplicate email", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email":    "alice@example.com",
			"password": "Passw0rd",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email":    "bob@example.com",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/register", "", strings.NewReader("{"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "Passw0rd",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")

		var res services.AuthResult
		decode(t, rec, &res)
		assert.Equal(t, reg.User.ID, res.User.ID)

		me := ts.do(t, http.MethodGet, "/user/find/"+reg.User.ID, res.Token, nil)
		assert.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "Wrong0pass",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceTok := ts.register(t, "alice@example.com")
	bob, bobTok := ts.register(t, "bob@example.com")

	t.Run("find all is public and summarized", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/user/findAll", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "followers")

		var users []models.UserSummary
		decode(t, rec, &users)
		assert.Len(t, users, 2)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/user/find/000000000000000000000000", aliceTok, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("self follow", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, "/user/toggleFollow/"+alice.ID, aliceTok, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("follow then unfollow", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, "/user/toggleFollow/"+bob.ID, aliceTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var res followResponse
		decode(t, rec, &res)
		assert.Equal(t, followResponse{Msg: "Toggle follow success", Following: true}, res)

		rec = ts.do(t, http.MethodGet, "/user/find/friends", aliceTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var friends []models.User
		decode(t, rec, &friends)
		require.Len(t, friends, 1)
		assert.Equal(t, bob.ID, friends[0].ID)

		rec = ts.do(t, http.MethodPut, "/user/toggleFollow/"+bob.ID, aliceTok, nil)
		decode(t, rec, &res)
		assert.False(t, res.Following)
	})

	t.Run("suggested excludes self", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/user/find/suggestedUsers", aliceTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var users []models.User
		decode(t, rec, &users)
		for _, u := range users {
			assert.NotEqual(t, alice.ID, u.ID)
		}
	})

	t.Run("update other user", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, "/user/updateUser/"+bob.ID, aliceTok, map[string]string{"bio": "x"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update self", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, "/user/updateUser/"+alice.ID, aliceTok, map[string]string{"bio": "hello"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"msg":"Successfully updated the user"}`, rec.Body.String())

		rec = ts.do(t, http.MethodGet, "/user/find/"+alice.ID, aliceTok, nil)
		var u models.User
		decode(t, rec, &u)
		assert.Equal(t, "hello", u.Bio)
	})

	t.Run("delete other user", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/user/deleteUser/"+alice.ID, bobTok, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete self", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/user/deleteUser/"+bob.ID, bobTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"msg":"User successfully deleted"}`, rec.Body.String())

		rec = ts.do(t, http.MethodGet, "/user/find/"+bob.ID, aliceTok, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostAndCommentEndpoints(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceTok := ts.register(t, "alice@example.com")
	_, bobTok := ts.register(t, "bob@example.com")

	rec := ts.do(t, http.MethodPost, "/post", aliceTok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/post", aliceTok, map[string]string{"description": "first"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	decode(t, rec, &post)
	assert.Equal(t, alice.ID, post.UserID)

	t.Run("find and list", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/post/find/"+post.ID, bobTok, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = ts.do(t, http.MethodGet, "/post/find/userposts/"+alice.ID, bobTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var posts []models.Post
		decode(t, rec, &posts)
		assert.Len(t, posts, 1)

		rec = ts.do(t, http.MethodGet, "/post/timeline/posts", aliceTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &posts)
		assert.Len(t, posts, 1)
	})

	t.Run("update by other user", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, "/post/updatePost/"+post.ID, bobTok, map[string]string{"description": "hijack"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update by author", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, "/post/updatePost/"+post.ID, aliceTok, map[string]string{"location": "Riga"})
		require.Equal(t, http.StatusOK, rec.Code)
		var p models.Post
		decode(t, rec, &p)
		assert.Equal(t, "Riga", p.Location)
		assert.Equal(t, "first", p.Description)
	})

	t.Run("like toggles", func(t *testing.T) {
		var res likeResponse
		rec := ts.do(t, http.MethodPut, "/post/toggleLike/"+post.ID, bobTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &res)
		assert.True(t, res.Liked)

		rec = ts.do(t, http.MethodPut, "/post/toggleLike/"+post.ID, bobTok, nil)
		decode(t, rec, &res)
		assert.False(t, res.Liked)
	})

	t.Run("bookmark toggles", func(t *testing.T) {
		var res bookmarkResponse
		rec := ts.do(t, http.MethodPut, "/user/bookmark/"+post.ID, bobTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &res)
		assert.Equal(t, bookmarkResponse{Msg: "Toggle bookmark success", Bookmarked: true}, res)
	})

	t.Run("comments", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/comment", bobTok, map[string]string{"postId": post.ID, "commentText": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = ts.do(t, http.MethodPost, "/comment", bobTok, map[string]string{"postId": post.ID, "commentText": "nice"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var c models.Comment
		decode(t, rec, &c)

		rec = ts.do(t, http.MethodGet, "/comment/"+post.ID, aliceTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var cs []models.Comment
		decode(t, rec, &cs)
		require.Len(t, cs, 1)
		assert.Equal(t, "nice", cs[0].CommentText)

		// the post author may remove comments on their post
		rec = ts.do(t, http.MethodDelete, "/comment/"+c.ID, aliceTok, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete by other user", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/post/deletePost/"+post.ID, bobTok, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete by author", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/post/deletePost/"+post.ID, aliceTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = ts.do(t, http.MethodGet, "/post/find/"+post.ID, aliceTok, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func uploadRequest(ts *testServer, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "alice@example.com")

	t.Run("stored", func(t *testing.T) {
		body, ct := multipartImage(t, "image", "cat.png", "image/png", []byte("png-bytes"))
		rec := uploadRequest(ts, token, body, ct)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var up models.Upload
		decode(t, rec, &up)
		assert.NotEmpty(t, up.Key)
		require.Len(t, ts.images.uploaded, 1)
		assert.Equal(t, "image/png", ts.images.uploaded[0].ContentType)
		assert.Equal(t, int64(len("png-bytes")), ts.images.uploaded[0].Size)
	})

	t.Run("missing field", func(t *testing.T) {
		body, ct := multipartImage(t, "file", "cat.png", "image/png", []byte("png-bytes"))
		rec := uploadRequest(ts, token, body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := uploadRequest(ts, token, bytes.NewBufferString("{}"), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartImage(t, "image", "big.png", "image/png", bytes.Repeat([]byte("x"), 2<<20))
		rec := uploadRequest(ts, token, body, ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestPresignAndRedirect(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "alice@example.com")

	rec := ts.do(t, http.MethodPost, "/upload/presign", token, map[string]string{"filename": ".png"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var up models.Upload
	decode(t, rec, &up)
	assert.Equal(t, "http://s3.local/put?sig=2", up.URL)

	rec = ts.do(t, http.MethodPost, "/upload/presign", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/upload/image/images/2025/1/1/a.png", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://s3.local/images/2025/1/1/a.png?sig=3", rec.Header().Get("Location"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	ts := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ts.srv.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestPresign_OptionalBody(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "alice@example.com")

	send := func(body string, length int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/upload/presign", strings.NewReader(body))
		req.ContentLength = length
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec
	}

	// chunked request with no body
	rec := send("", -1)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send("{", -1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
