// Package session holds the auth session container: signed out
// (nil user) or signed in, with the bearer token persisted so a
// restart can restore the session.
package session

import (
	"context"
	"errors"
	"sync"

	authapp "github.com/clvmartin/boutique/internal/auth/app"
	"github.com/clvmartin/boutique/pkg/storage"
)

const storageKey = "session"

type Auth interface {
	SignUp(ctx context.Context, email, password string) (authapp.Session, error)
	Login(ctx context.Context, email, password string) (authapp.Session, error)
	ParseSession(ctx context.Context, token string) (authapp.User, error)
}

type persisted struct {
	Token string `json:"token"`
}

type Container struct {
	mu      sync.Mutex
	user    *authapp.User
	loading bool
	err     string

	auth  Auth
	store *storage.Store
	subs  []func()
}

func New(auth Auth, store *storage.Store) *Container {
	return &Container{auth: auth, store: store}
}

func (c *Container) Subscribe(fn func()) func() {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.subs[idx] = nil
		c.mu.Unlock()
	}
}

func (c *Container) Login(ctx context.Context, email, password string) {
	c.begin()
	session, err := c.auth.Login(ctx, email, password)
	if err != nil {
		c.fail(err)
		return
	}
	c.signIn(session)
}

func (c *Container) SignUp(ctx context.Context, email, password string) {
	c.begin()
	session, err := c.auth.SignUp(ctx, email, password)
	if err != nil {
		c.fail(err)
		return
	}
	c.signIn(session)
}

func (c *Container) Logout(ctx context.Context) {
	c.begin()
	if c.store != nil {
		if err := c.store.Delete(storageKey); err != nil {
			c.fail(err)
			return
		}
	}
	c.finish(func() {
		c.user = nil
	})
}

// CheckSession restores the signed-in state from the persisted token.
// A missing or invalid token lands in the signed-out state without an
// error: that is a normal launch, not a failure.
func (c *Container) CheckSession(ctx context.Context) {
	c.begin()

	if c.store == nil {
		c.finish(func() { c.user = nil })
		return
	}

	var p persisted
	if err := c.store.Load(storageKey, &p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.finish(func() { c.user = nil })
			return
		}
		c.failAndSignOut(err)
		return
	}

	user, err := c.auth.ParseSession(ctx, p.Token)
	if err != nil {
		if errors.Is(err, authapp.ErrInvalidSession) {
			c.store.Delete(storageKey)
			c.finish(func() { c.user = nil })
			return
		}
		c.failAndSignOut(err)
		return
	}

	c.finish(func() { c.user = &user })
}

// User returns the signed-in user, or nil when signed out.
func (c *Container) User() *authapp.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Container) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Container) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Container) signIn(session authapp.Session) {
	if c.store != nil {
		if err := c.store.Save(storageKey, persisted{Token: session.Token}); err != nil {
			c.fail(err)
			return
		}
	}
	c.finish(func() {
		u := session.User
		c.user = &u
	})
}

func (c *Container) begin() {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	subs := c.subsCopy()
	c.mu.Unlock()
	notify(subs)
}

func (c *Container) finish(fn func()) {
	c.mu.Lock()
	fn()
	c.loading = false
	c.err = ""
	subs := c.subsCopy()
	c.mu.Unlock()
	notify(subs)
}

func (c *Container) fail(err error) {
	c.mu.Lock()
	c.loading = false
	c.err = err.Error()
	subs := c.subsCopy()
	c.mu.Unlock()
	notify(subs)
}

func (c *Container) failAndSignOut(err error) {
	c.mu.Lock()
	c.user = nil
	c.loading = false
	c.err = err.Error()
	subs := c.subsCopy()
	c.mu.Unlock()
	notify(subs)
}

func (c *Container) subsCopy() []func() {
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		if fn != nil {
			fn()
		}
	}
}
