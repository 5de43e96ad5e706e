// Package rest exposes the gophsocial services as a JSON HTTP API.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gorilla/mux"
)

// ImageStore is the object storage used by the upload endpoints.
type ImageStore interface {
	UploadImage(ctx context.Context, userID string, f services.ImageFile) (*models.Upload, error)
	GetPresignedPutUrl(ctx context.Context, filename string) (*models.Upload, error)
	GetPresignedGetUrl(ctx context.Context, key string) (string, error)
}

type HTTPServer struct {
	address         string
	logger          logging.Logger
	tokens          *auth.TokenService
	auth            *services.AuthService
	users           *services.UserService
	posts           *services.PostService
	comments        *services.CommentService
	uploads         ImageStore
	maxUploadSize   int64
	shutdownTimeout time.Duration
}

// Services groups the collaborators HTTPServer dispatches to.
type Services struct {
	Tokens   *auth.TokenService
	Auth     *services.AuthService
	Users    *services.UserService
	Posts    *services.PostService
	Comments *services.CommentService
	Uploads  ImageStore
}

func NewHTTPServer(a string, l logging.Logger, svc Services, maxUploadSize int64, shutdownTimeout time.Duration) *HTTPServer {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServer{
		address:         a,
		logger:          l.With("module", "http_server"),
		tokens:          svc.Tokens,
		auth:            svc.Auth,
		users:           svc.Users,
		posts:           svc.Posts,
		comments:        svc.Comments,
		uploads:         svc.Uploads,
		maxUploadSize:   maxUploadSize,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the routed handler with the global stages applied:
// recover, then request logging. Protected routes add the access token stage.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	protected := func(h http.HandlerFunc) http.Handler {
		return s.accessToken(h)
	}

	r.HandleFunc("/ping", s.ping).Methods(http.MethodGet)

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/register", s.register).Methods(http.MethodPost)
	a.HandleFunc("/login", s.login).Methods(http.MethodPost)

	u := r.PathPrefix("/user").Subrouter()
	u.Handle("/find/suggestedUsers", protected(s.suggestedUsers)).Methods(http.MethodGet)
	u.Handle("/find/friends", protected(s.friends)).Methods(http.MethodGet)
	u.Handle("/find/{userId}", protected(s.findUser)).Methods(http.MethodGet)
	u.HandleFunc("/findAll", s.findAllUsers).Methods(http.MethodGet)
	u.Handle("/updateUser/{userId}", protected(s.updateUser)).Methods(http.MethodPut)
	u.Handle("/deleteUser/{userId}", protected(s.deleteUser)).Methods(http.MethodDelete)
	u.Handle("/toggleFollow/{otherUserId}", protected(s.toggleFollow)).Methods(http.MethodPut)
	u.Handle("/bookmark/{postId}", protected(s.bookmark)).Methods(http.MethodPut)

	p := r.PathPrefix("/post").Subrouter()
	p.Handle("", protected(s.createPost)).Methods(http.MethodPost)
	p.Handle("/find/userposts/{userId}", protected(s.userPosts)).Methods(http.MethodGet)
	p.Handle("/find/{postId}", protected(s.findPost)).Methods(http.MethodGet)
	p.Handle("/timeline/posts", protected(s.timeline)).Methods(http.MethodGet)
	p.Handle("/updatePost/{postId}", protected(s.updatePost)).Methods(http.MethodPut)
	p.Handle("/deletePost/{postId}", protected(s.deletePost)).Methods(http.MethodDelete)
	p.Handle("/toggleLike/{postId}", protected(s.toggleLike)).Methods(http.MethodPut)

	c := r.PathPrefix("/comment").Subrouter()
	c.Handle("", protected(s.createComment)).Methods(http.MethodPost)
	c.Handle("/{postId}", protected(s.postComments)).Methods(http.MethodGet)
	c.Handle("/{commentId}", protected(s.deleteComment)).Methods(http.MethodDelete)

	up := r.PathPrefix("/upload").Subrouter()
	up.Handle("/image", protected(s.uploadImage)).Methods(http.MethodPost)
	up.Handle("/presign", protected(s.presignUpload)).Methods(http.MethodPost)
	up.HandleFunc("/image/{key:.+}", s.imageRedirect).Methods(http.MethodGet)

	return applyMiddleware(r, s.recoverer, s.requestLogger)
}

func (s *HTTPServer) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
