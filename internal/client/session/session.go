/*
Package session holds the client's view of who is signed in.

A Controller owns one session: the persisted device identifier, the last account row the
server returned and a tagged state. Startup resolves silently and falls back to Anonymous;
explicit actions (Login, UpdateProfile, Reset) surface their failures. Transitions are
serialized: a call that overlaps another transition fails with ErrTransitionInProgress.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"seasnap/internal/app/account"
	"seasnap/internal/client/api"
	"seasnap/internal/pkg/logx"
)

// State is the lifecycle state of a session.
type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrTransitionInProgress = errors.New("another session transition is in progress")
	ErrNotAuthenticated     = errors.New("session is not authenticated")
)

// IDStore persists the device identifier.
type IDStore interface {
	Lookup(ctx context.Context) (string, bool, error)
	Get(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Resolver is the remote account resolver.
type Resolver interface {
	ResolveByDeviceID(ctx context.Context, deviceID string) (*account.Account, error)
	Provision(ctx context.Context, deviceID string) (*api.Provisioned, error)
	UpdateProfile(ctx context.Context, deviceID string, u account.ProfileUpdate) (*account.Account, error)
}

// Snapshot is a copy of the session at one point in time.
type Snapshot struct {
	State         State
	DeviceID      string
	Account       *account.Account
	Authenticated bool
}

type Controller struct {
	ids      IDStore
	accounts Resolver

	busy atomic.Bool

	mu   sync.RWMutex
	snap Snapshot
}

func NewController(ids IDStore, accounts Resolver) *Controller {
	return &Controller{ids: ids, accounts: accounts}
}

// Snapshot returns the current session. It is safe to call from any goroutine.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.snap
	s.Account = s.Account.Clone()
	return s
}

func (c *Controller) begin() error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrTransitionInProgress
	}
	return nil
}

func (c *Controller) end() { c.busy.Store(false) }

func (c *Controller) commit(s Snapshot) {
	c.mu.Lock()
	c.snap = s
	c.mu.Unlock()
}

func (c *Controller) setState(st State) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.snap
	c.snap.State = st
	return prev
}

// Start restores the session from the persisted identifier. It never fails on lookup or
// resolution errors: those leave the session Anonymous. The only error is
// ErrTransitionInProgress.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	id, ok, err := c.ids.Lookup(ctx)
	if err != nil {
		logx.Warn("Reading device identifier failed, starting anonymous", "error", err.Error())
		c.commit(Snapshot{State: Anonymous})
		return nil
	}
	if !ok {
		c.commit(Snapshot{State: Anonymous})
		return nil
	}

	c.commit(Snapshot{State: Loading, DeviceID: id})

	acc, err := c.accounts.ResolveByDeviceID(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			logx.Debug("No account bound to device identifier, starting anonymous")
		} else {
			logx.Warn("Resolving account failed, starting anonymous", "error", err.Error())
		}
		c.commit(Snapshot{State: Anonymous, DeviceID: id})
		return nil
	}

	c.commit(Snapshot{State: Authenticated, DeviceID: id, Account: acc, Authenticated: true})
	return nil
}

// Login authenticates the session, recovering the account bound to the persisted
// identifier or provisioning one. Logging in while already authenticated re-resolves.
// On failure the previous session is kept.
func (c *Controller) Login(ctx context.Context) (*account.Account, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	prev := c.setState(Loading)

	id, acc, err := c.login(ctx)
	if err != nil {
		c.commit(prev)
		return nil, err
	}

	c.commit(Snapshot{State: Authenticated, DeviceID: id, Account: acc, Authenticated: true})
	return acc.Clone(), nil
}

func (c *Controller) login(ctx context.Context) (string, *account.Account, error) {
	id, ok, err := c.ids.Lookup(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("read device id: %w", err)
	}

	if ok {
		acc, err := c.accounts.ResolveByDeviceID(ctx, id)
		if err == nil {
			return id, acc, nil
		}
		if !errors.Is(err, api.ErrNotFound) {
			return "", nil, fmt.Errorf("resolve account: %w", err)
		}
		logx.Debug("Device identifier not bound, provisioning")
	} else {
		if id, err = c.ids.Get(ctx); err != nil {
			return "", nil, fmt.Errorf("create device id: %w", err)
		}
	}

	if _, err := c.accounts.Provision(ctx, id); err != nil {
		return "", nil, fmt.Errorf("provision account: %w", err)
	}

	acc, err := c.accounts.ResolveByDeviceID(ctx, id)
	if err != nil {
		return "", nil, fmt.Errorf("resolve provisioned account: %w", err)
	}

	return id, acc, nil
}

// Logout drops the account from the session. The device identifier is kept, so the next
// Login recovers the same account.
func (c *Controller) Logout() error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	c.snap = Snapshot{State: Anonymous, DeviceID: c.snap.DeviceID}
	c.mu.Unlock()

	return nil
}

// UpdateProfile changes the signed-in account's profile and replaces the session's
// account with the row the server returns.
func (c *Controller) UpdateProfile(ctx context.Context, u account.ProfileUpdate) (*account.Account, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	cur := c.Snapshot()
	if cur.State != Authenticated || cur.DeviceID == "" {
		return nil, ErrNotAuthenticated
	}

	acc, err := c.accounts.UpdateProfile(ctx, cur.DeviceID, u)
	if err != nil {
		return nil, err
	}

	cur.Account = acc
	c.commit(cur)
	return acc.Clone(), nil
}

// Reset forgets the device identifier and the session. The next Login provisions a new
// account.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.ids.Clear(ctx); err != nil {
		return fmt.Errorf("clear device id: %w", err)
	}

	c.commit(Snapshot{State: Anonymous})
	return nil
}
