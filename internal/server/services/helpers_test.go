package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/cache"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Subject)
	}
	return out
}

type env struct {
	rm       repomanager.RepositoryManager
	pub      *recordingPublisher
	tokens   *auth.TokenService
	auth     *AuthService
	users    *UserService
	posts    *PostService
	comments *CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithCache(t, cache.Nop{})
}

func newEnvWithCache(t *testing.T, c cache.ProfileCache) *env {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	pub := &recordingPublisher{}
	log := logging.NewNop()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	return &env{
		rm:       rm,
		pub:      pub,
		tokens:   tokens,
		auth:     NewAuthService(rm, tokens, pub, log),
		users:    NewUserService(rm, c, pub, log),
		posts:    NewPostService(rm, c, pub, log),
		comments: NewCommentService(rm),
	}
}

// user inserts an account directly, skipping bcrypt.
func (e *env) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.rm.Users().Create(context.Background(), &models.User{Email: email, Password: "x"})
	require.NoError(t, err)
	return u
}

func (e *env) post(t *testing.T, userID, desc string) *models.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), userID, PostInput{Description: desc})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
