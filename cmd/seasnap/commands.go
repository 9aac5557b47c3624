package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seasnap/internal/app/account"
	"seasnap/internal/client/session"
)

func runLogin(ctx context.Context, a *app, _ []string) error {
	acc, err := a.session.Login(ctx)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", displayName(acc))
	return nil
}

func runStatus(ctx context.Context, a *app, _ []string) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}
	printSnapshot(a.out, a.session.Snapshot())
	return nil
}

func runReset(ctx context.Context, a *app, _ []string) error {
	if err := a.session.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Device identifier cleared. The next login creates a new account.")
	return nil
}

func runSeason(ctx context.Context, a *app, args []string) error {
	month := 0
	if len(args) == 1 {
		m, err := strconv.Atoi(args[0])
		if err != nil || m < 1 || m > 12 {
			return fmt.Errorf("month must be a number from 1 to 12, got %q", args[0])
		}
		month = m
	}

	ov, err := a.client.Season(ctx, month)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s %s (month %d)\n", ov.Icon, ov.Name, ov.Month)
	for _, k := range ov.Keywords {
		fmt.Fprintf(a.out, "  - %s\n", k.KeywordName)
	}
	return nil
}

type profileFlags struct {
	name      string
	emoji     string
	imageFile string
}

func (c *cli) profileCmd() *cobra.Command {
	var f profileFlags

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change the display name or profile picture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := f.update(cmd)
			if err != nil {
				return err
			}
			return runProfile(cmd.Context(), c.app, u)
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "display name (at most 10 characters, empty clears)")
	cmd.Flags().StringVar(&f.emoji, "emoji", "", "emoji profile picture (empty clears)")
	cmd.Flags().StringVar(&f.imageFile, "image-file", "", "png, jpeg, gif or webp profile picture")
	cmd.MarkFlagsMutuallyExclusive("emoji", "image-file")

	return cmd
}

// update builds the profile update from the flags that were set on cmd.
func (f *profileFlags) update(cmd *cobra.Command) (account.ProfileUpdate, error) {
	var u account.ProfileUpdate

	if cmd.Flags().Changed("name") {
		name := f.name
		u.DisplayName = &name
	}
	if cmd.Flags().Changed("emoji") {
		emoji := f.emoji
		u.Image = &emoji
	}
	if f.imageFile != "" {
		img, err := readImageFile(f.imageFile)
		if err != nil {
			return u, err
		}
		u.Image = &img
	}

	if u.Empty() {
		return u, errors.New("nothing to change: pass --name, --emoji or --image-file")
	}
	return u, nil
}

func runProfile(ctx context.Context, a *app, u account.ProfileUpdate) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}

	acc, err := a.session.UpdateProfile(ctx, u)
	if errors.Is(err, session.ErrNotAuthenticated) {
		return errors.New("not signed in: run `seasnap login` first")
	}
	if err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	fmt.Fprintf(a.out, "Profile updated: %s\n", displayName(acc))
	return nil
}

// readImageFile encodes an image file as a data URL. The server enforces the size limit
// on the encoded value; oversized files are rejected here first.
func readImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if _, ok := account.AllowedImageTypes[mimeType]; !ok {
		return "", fmt.Errorf("unsupported image type %s", mimeType)
	}

	v := account.EncodeDataURL(mimeType, data)
	if len(v) > account.MaxProfileImageBytes {
		return "", fmt.Errorf("encoded image is %d bytes, limit is %d", len(v), account.MaxProfileImageBytes)
	}
	return v, nil
}

func displayName(acc *account.Account) string {
	if acc.UserName != nil && *acc.UserName != "" {
		return *acc.UserName
	}
	return "anonymous (" + acc.ID + ")"
}

func printSnapshot(w io.Writer, s session.Snapshot) {
	fmt.Fprintf(w, "State:     %s\n", s.State)
	if s.DeviceID != "" {
		fmt.Fprintf(w, "Device ID: %s\n", s.DeviceID)
	}
	if s.Account == nil {
		return
	}

	fmt.Fprintf(w, "Account:   %s\n", s.Account.ID)
	if s.Account.UserName != nil {
		fmt.Fprintf(w, "Name:      %s\n", *s.Account.UserName)
	}
	if s.Account.ProfileImage != nil {
		img := *s.Account.ProfileImage
		if account.IsDataURL(img) {
			mimeType, _, _ := strings.Cut(strings.TrimPrefix(img, "data:"), ";")
			img = fmt.Sprintf("%s image, %d bytes", mimeType, len(*s.Account.ProfileImage))
		}
		fmt.Fprintf(w, "Picture:   %s\n", img)
	}
}
