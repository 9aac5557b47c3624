package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"seasnap/internal/app/account"
	"seasnap/internal/pkg/logx"
)

const shellHelp = `Commands:
  login                 sign in (provisions an account if needed)
  logout                sign out, keeping the device identifier
  status                show the session
  name <text>           set the display name ("name" alone clears it)
  emoji <emoji>         set an emoji profile picture
  image <file>          set an image profile picture
  season [month]        show the season
  reset                 forget the device identifier
  exit | quit           leave the shell`

// runShell reads commands line by line and runs them against one session, so state
// such as a logout survives between commands. Command errors are printed and the loop
// continues; it ends on EOF, exit or context cancellation.
func runShell(ctx context.Context, a *app, in io.Reader) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(a.out, "seasnap [%s]> ", a.session.Snapshot().State)
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		var err error
		switch cmd {
		case "help":
			fmt.Fprintln(a.out, shellHelp)
		case "login":
			err = runLogin(ctx, a, nil)
		case "logout":
			if err = a.session.Logout(); err == nil {
				fmt.Fprintln(a.out, "Signed out.")
			}
		case "status":
			printSnapshot(a.out, a.session.Snapshot())
		case "name":
			err = shellProfile(ctx, a, account.ProfileUpdate{DisplayName: &arg})
		case "emoji":
			err = shellProfile(ctx, a, account.ProfileUpdate{Image: &arg})
		case "image":
			var img string
			if img, err = readImageFile(arg); err == nil {
				err = shellProfile(ctx, a, account.ProfileUpdate{Image: &img})
			}
		case "season":
			var args []string
			if arg != "" {
				args = []string{arg}
			}
			err = runSeason(ctx, a, args)
		case "reset":
			err = runReset(ctx, a, nil)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return nil
		default:
			fmt.Fprintf(a.out, "Unknown command: %s (type help)\n", cmd)
		}

		if err != nil {
			logx.Debug("Shell command failed", "command", cmd, "error", err.Error())
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
	}
}

// shellProfile updates the profile without restarting the session.
func shellProfile(ctx context.Context, a *app, u account.ProfileUpdate) error {
	acc, err := a.session.UpdateProfile(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s\n", displayName(acc))
	return nil
}
