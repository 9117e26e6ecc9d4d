package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/layer-3/todo/adapters/hasher"
	"github.com/layer-3/todo/adapters/store"
	"github.com/layer-3/todo/adapters/tokenizer"
	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/logging"
	"github.com/layer-3/todo/metrics"
)

var errBoom = errors.New("boom")

type recordedEvent struct {
	op   string
	id   string
	user string
}

// recordingPublisher captures events and optionally fails
type recordingPublisher struct {
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, identifier string) error {
	p.events = append(p.events, recordedEvent{op: "registered", user: identifier})
	return p.err
}

func (p *recordingPublisher) PublishTaskChanged(_ context.Context, op string, task core.Task) error {
	p.events = append(p.events, recordedEvent{op: op, id: task.ID, user: task.Owner})
	return p.err
}

// faultyUsers fails every call
type faultyUsers struct{}

func (faultyUsers) FindByIdentifier(context.Context, string) (core.StoredUser, bool, error) {
	return core.StoredUser{}, false, errBoom
}

func (faultyUsers) InsertIfAbsent(context.Context, core.StoredUser) error {
	return errBoom
}

// faultyTokenizer issues nothing
type faultyTokenizer struct{}

func (faultyTokenizer) Issue(string) (core.Token, error) {
	return core.Token{}, core.ErrSigningKey
}

func (faultyTokenizer) Verify(string) (string, error) {
	return "", core.ErrTokenMalformed
}

type authFixture struct {
	svc       *AuthService
	store     *store.MemoryStore
	tokenizer *tokenizer.JWTTokenizer
	events    *recordingPublisher
	metrics   *metrics.Metrics
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tok, err := tokenizer.NewJWTTokenizer([]byte("test-secret"))
	require.NoError(t, err)

	f := &authFixture{
		store:     store.NewMemoryStore(),
		tokenizer: tok,
		events:    &recordingPublisher{},
		metrics:   metrics.New(),
	}
	f.svc = NewAuthService(f.store, hasher.NewBcryptHasher(hasher.DefaultCost), tok, f.events, f.metrics, logging.Discard())
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}
