package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seasnap/internal/app/account"
	"seasnap/internal/app/memstore"
	"seasnap/internal/app/season"
	"seasnap/internal/configs"
	"seasnap/internal/handler"
)

type harness struct {
	server string
	state  string
	store  *memstore.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memstore.New()

	srv := httptest.NewServer(handler.Router(&handler.AppDeps{
		Config:   &configs.AppConfig{Environment: "test", JWTSecret: "cli"},
		Accounts: account.NewService(store),
		Seasons:  season.NewService(store),
	}))
	t.Cleanup(srv.Close)

	return &harness{server: srv.URL, state: filepath.Join(t.TempDir(), "state.db"), store: store}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append(args, "--server", h.server, "--state", h.state, "--retries", "0")
	err := execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestCLI_LoginAndStatus(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:     anonymous")

	out, err = h.run(t, "", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as anonymous")

	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:     authenticated")
	assert.Contains(t, out, "Account:")
	assert.Equal(t, 1, h.store.Len())
}

func TestCLI_Profile(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "profile", "--name", "haru")
	assert.ErrorContains(t, err, "not signed in")

	_, err = h.run(t, "", "login")
	require.NoError(t, err)

	out, err := h.run(t, "", "profile", "--name", "haru", "--emoji", "🌸")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile updated: haru")

	_, err = h.run(t, "", "profile", "--name", "elevenchars")
	assert.ErrorContains(t, err, account.FieldUserName)

	_, err = h.run(t, "", "profile")
	assert.ErrorContains(t, err, "nothing to change")

	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:      haru")
	assert.Contains(t, out, "Picture:   🌸")
}

func TestCLI_ProfileImageFile(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "avatar.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	_, err = h.run(t, "", "profile", "--image-file", path)
	require.NoError(t, err)

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "image/png image")

	txt := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	_, err = h.run(t, "", "profile", "--image-file", txt)
	assert.ErrorContains(t, err, "unsupported image type")
}

func TestCLI_ResetProvisionsNewAccount(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "login")
	require.NoError(t, err)
	_, err = h.run(t, "", "reset")
	require.NoError(t, err)

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:     anonymous")

	_, err = h.run(t, "", "login")
	require.NoError(t, err)
	assert.Equal(t, 2, h.store.Len())
}

func TestCLI_Season(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "season", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "spring (month 4)")

	_, err = h.run(t, "", "season", "13")
	assert.Error(t, err)
}

func TestCLI_ShellLogoutLogin(t *testing.T) {
	h := newHarness(t)

	script := strings.Join([]string{
		"login",
		"name aki",
		"logout",
		"name fuyu",
		"login",
		"status",
		"bogus",
		"exit",
	}, "\n")

	out, err := h.run(t, script, "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "Signed out.")
	assert.Contains(t, out, "session is not authenticated")
	assert.Contains(t, out, "Signed in as aki")
	assert.Contains(t, out, "Unknown command: bogus")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, 1, h.store.Len())
}
