package account

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with a unique device_id constraint.
type memStore struct {
	mu       sync.Mutex
	byDevice map[string]*Account
	seq      int

	createErr error
	getErr    error
	updateErr error
	updates   int
}

func newMemStore() *memStore {
	return &memStore{byDevice: make(map[string]*Account)}
}

func (m *memStore) GetByDeviceID(_ context.Context, deviceID string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	acc, ok := m.byDevice[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *memStore) CreateAnonymous(_ context.Context, deviceID string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.byDevice[deviceID]; ok {
		return nil, ErrDeviceTaken
	}

	m.seq++
	id := fmt.Sprintf("acc-%d", m.seq)
	now := time.Now()
	acc := &Account{ID: id, DeviceID: deviceID, CreatedBy: &id, UpdatedBy: &id, CreatedAt: now, UpdatedAt: now}
	m.byDevice[deviceID] = acc

	cp := *acc
	return &cp, nil
}

func (m *memStore) UpdateProfile(_ context.Context, accountID string, u ProfileUpdate, actorID string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return nil, m.updateErr
	}
	for _, acc := range m.byDevice {
		if acc.ID != accountID {
			continue
		}
		m.updates++
		if u.DisplayName != nil {
			acc.UserName = nullable(*u.DisplayName)
		}
		if u.Image != nil {
			acc.ProfileImage = nullable(*u.Image)
		}
		acc.UpdatedBy = &actorID
		acc.UpdatedAt = time.Now()
		cp := *acc
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byDevice)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type recordingMirror struct {
	puts    []string
	deletes []string
	mime    string
	err     error
}

func (r *recordingMirror) PutAvatar(_ context.Context, accountID, contentType string, _ []byte) error {
	r.puts = append(r.puts, accountID)
	r.mime = contentType
	return r.err
}

func (r *recordingMirror) DeleteAvatar(_ context.Context, accountID string) error {
	r.deletes = append(r.deletes, accountID)
	return r.err
}

func ptr(s string) *string { return &s }

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

// pngDataURL returns a valid png data URL padded to exactly size bytes.
func pngDataURL(t *testing.T, size int) string {
	t.Helper()
	raw := tinyPNG(t)
	for len(raw)%3 != 0 {
		raw = append(raw, 0)
	}
	s := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	require.LessOrEqual(t, len(s), size)
	return s + strings.Repeat("A", size-len(s))
}

func TestProvision_GeneratesDeviceIDWhenEmpty(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	out, err := svc.Provision(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Account.DeviceID)
	assert.Equal(t, out.Account.ID, *out.Account.CreatedBy)
	assert.Empty(t, out.AccessToken)
}

func TestProvision_Idempotent(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)
	second, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)

	assert.Equal(t, first.Account.ID, second.Account.ID)
	assert.Equal(t, 1, store.count())
}

func TestProvision_ConcurrentSameDevice(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := svc.Provision(context.Background(), "device-race")
			if err == nil {
				ids[i] = out.Account.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.count())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

// blockingStore holds CreateAnonymous until release is closed or its ctx ends.
type blockingStore struct {
	*memStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	ctxErr  error
}

func (b *blockingStore) CreateAnonymous(ctx context.Context, deviceID string) (*Account, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
	case <-ctx.Done():
		b.ctxErr = ctx.Err()
		return nil, ctx.Err()
	}
	return b.memStore.CreateAnonymous(ctx, deviceID)
}

func TestProvision_CanceledCallerDoesNotFailOthers(t *testing.T) {
	store := &blockingStore{memStore: newMemStore(), entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(store)

	ctx1, cancel := context.WithCancel(context.Background())
	err1 := make(chan error, 1)
	go func() {
		_, err := svc.Provision(ctx1, "device-1")
		err1 <- err
	}()
	<-store.entered

	type result struct {
		out *Provisioned
		err error
	}
	res2 := make(chan result, 1)
	go func() {
		out, err := svc.Provision(context.Background(), "device-1")
		res2 <- result{out, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-err1, context.Canceled)

	close(store.release)
	r := <-res2
	require.NoError(t, r.err)
	assert.Equal(t, "device-1", r.out.Account.DeviceID)
	assert.NoError(t, store.ctxErr)
	assert.Equal(t, 1, store.count())
}

func TestProvision_InvalidDeviceID(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.Provision(context.Background(), "bad id!")
	assert.ErrorIs(t, err, ErrInvalidDeviceID)
}

func TestProvision_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.createErr = errors.New("insert failed")
	svc := NewService(store)

	_, err := svc.Provision(context.Background(), "device-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
	assert.Equal(t, 0, store.count())
}

func TestProvision_TokenIssuer(t *testing.T) {
	svc := NewService(newMemStore(), WithTokenIssuer(func(a *Account) (string, error) {
		return "token-for-" + a.DeviceID, nil
	}))

	out, err := svc.Provision(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, "token-for-device-1", out.AccessToken)
}

func TestProvision_TokenFailureOmitsToken(t *testing.T) {
	svc := NewService(newMemStore(), WithTokenIssuer(func(*Account) (string, error) {
		return "", errors.New("signing failed")
	}))

	out, err := svc.Provision(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Empty(t, out.AccessToken)
}

func TestResolveByDeviceID(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.ResolveByDeviceID(ctx, "device-1")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)

	got, err := svc.ResolveByDeviceID(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, created.Account.ID, got.ID)

	store.getErr = errors.New("connection reset")
	_, err = svc.ResolveByDeviceID(ctx, "device-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile_NameLimit(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()
	_, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "device-1", ProfileUpdate{DisplayName: ptr("あいうえおかきくけこさ")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldUserName, verr.Field)
	assert.Equal(t, ViolationTooLong, verr.Violation)
	assert.Equal(t, 0, store.updates)

	got, err := svc.ResolveByDeviceID(ctx, "device-1")
	require.NoError(t, err)
	assert.Nil(t, got.UserName)

	// Ten multi-byte characters are within the limit.
	updated, err := svc.UpdateProfile(ctx, "device-1", ProfileUpdate{DisplayName: ptr("あいうえおかきくけこ")})
	require.NoError(t, err)
	assert.Equal(t, "あいうえおかきくけこ", *updated.UserName)
}

func TestUpdateProfile_ImageLimit(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()
	_, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "device-1", ProfileUpdate{Image: ptr(pngDataURL(t, MaxProfileImageBytes+1))})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldProfileImage, verr.Field)
	assert.Equal(t, ViolationTooLarge, verr.Violation)
	assert.Equal(t, 0, store.updates)

	img := pngDataURL(t, MaxProfileImageBytes)
	updated, err := svc.UpdateProfile(ctx, "device-1", ProfileUpdate{Image: &img})
	require.NoError(t, err)
	assert.Len(t, *updated.ProfileImage, MaxProfileImageBytes)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	_, err := svc.UpdateProfile(context.Background(), "ghost", ProfileUpdate{DisplayName: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.count())
}

func TestUpdateProfile_AbsentFieldsUnchanged(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()
	_, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "device-1", ProfileUpdate{DisplayName: ptr("haru"), Image: ptr("🌸")})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, "device-1", ProfileUpdate{DisplayName: ptr("natsu")})
	require.NoError(t, err)
	assert.Equal(t, "natsu", *updated.UserName)
	assert.Equal(t, "🌸", *updated.ProfileImage)
	assert.Equal(t, updated.ID, *updated.UpdatedBy)
}

func TestUpdateProfile_AvatarMirror(t *testing.T) {
	store := newMemStore()
	mirror := &recordingMirror{}
	svc := NewService(store, WithAvatarMirror(mirror))
	ctx := context.Background()
	out, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)

	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG(t))
	_, err = svc.UpdateProfile(ctx, "device-1", ProfileUpdate{Image: &img})
	require.NoError(t, err)
	assert.Equal(t, []string{out.Account.ID}, mirror.puts)
	assert.Equal(t, "image/png", mirror.mime)

	_, err = svc.UpdateProfile(ctx, "device-1", ProfileUpdate{Image: ptr("⛄")})
	require.NoError(t, err)
	assert.Equal(t, []string{out.Account.ID}, mirror.deletes)

	// Mirror failures never fail the update.
	mirror.err = errors.New("bucket unavailable")
	_, err = svc.UpdateProfile(ctx, "device-1", ProfileUpdate{Image: &img})
	assert.NoError(t, err)
}

func TestUpdateProfile_StoreFailure(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()
	_, err := svc.Provision(ctx, "device-1")
	require.NoError(t, err)

	store.updateErr = errors.New("deadlock detected")
	_, err = svc.UpdateProfile(ctx, "device-1", ProfileUpdate{DisplayName: ptr("aki")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
}
