/*
Package main is the seasnap command-line client.

It keeps the installation's device identifier in a local SQLite state file, talks to the
SeaSnap server over HTTP and drives one session per invocation (or per shell).
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"seasnap/internal/client/api"
	"seasnap/internal/client/device"
	"seasnap/internal/client/session"
	"seasnap/internal/pkg/logx"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server  string
	state   string
	timeout time.Duration
	retries uint64
	verbose bool
}

// app is the wiring shared by all subcommands.
type app struct {
	kv      *device.SQLiteKV
	ids     *device.Store
	client  *api.Client
	session *session.Controller
	out     io.Writer
}

func (a *app) close() {
	if a != nil && a.kv != nil {
		_ = a.kv.Close()
	}
}

func defaultStatePath() string {
	if p := os.Getenv("SEASNAP_STATE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "seasnap.db"
	}
	return filepath.Join(dir, "seasnap", "state.db")
}

func defaultServerURL() string {
	if s := os.Getenv("SEASNAP_SERVER"); s != "" {
		return s
	}
	return defaultServer
}

func openApp(ctx context.Context, opts *options, out io.Writer) (*app, error) {
	if dir := filepath.Dir(opts.state); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	kv, err := device.OpenSQLite(ctx, opts.state)
	if err != nil {
		return nil, err
	}

	client, err := api.New(opts.server, api.WithTimeout(opts.timeout), api.WithRetries(opts.retries))
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	ids := device.NewStore(kv)
	logx.Debug("Client initialized", "server", opts.server, "state", opts.state)

	return &app{
		kv:      kv,
		ids:     ids,
		client:  client,
		session: session.NewController(ids, client),
		out:     out,
	}, nil
}

// cli owns the flag values and the app opened for the running subcommand.
type cli struct {
	opts options
	app  *app
}

func (c *cli) close() {
	c.app.close()
}

// run adapts an app-level action to a cobra RunE.
func (c *cli) run(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return fn(cmd.Context(), c.app, args)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seasnap",
		Short:         "SeaSnap client: anonymous device sign-in and profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.InitCLILogger(cmd.ErrOrStderr(), c.opts.verbose)

			a, err := openApp(cmd.Context(), &c.opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.server, "server", defaultServerURL(), "SeaSnap server URL (env SEASNAP_SERVER)")
	flags.StringVar(&c.opts.state, "state", defaultStatePath(), "path of the local state database (env SEASNAP_STATE)")
	flags.DurationVar(&c.opts.timeout, "timeout", api.DefaultTimeout, "per-attempt request timeout")
	flags.Uint64Var(&c.opts.retries, "retries", api.DefaultMaxRetries, "retries for transient failures")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Sign in, provisioning an anonymous account if needed",
			Args:  cobra.NoArgs,
			RunE:  c.run(runLogin),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current session",
			Args:  cobra.NoArgs,
			RunE:  c.run(runStatus),
		},
		c.profileCmd(),
		&cobra.Command{
			Use:   "reset",
			Short: "Forget this installation's device identifier",
			Args:  cobra.NoArgs,
			RunE:  c.run(runReset),
		},
		&cobra.Command{
			Use:   "season [month]",
			Short: "Show the season and its keywords",
			Args:  cobra.MaximumNArgs(1),
			RunE:  c.run(runSeason),
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Interactive session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runShell(cmd.Context(), c.app, cmd.InOrStdin())
			},
		},
	)

	return root
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c := &cli{}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
