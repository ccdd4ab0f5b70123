package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/internal/server"
	"github.com/matzehuels/chartmotion/pkg/session"
)

type serveOpts struct {
	addr       string
	sessionDir string
	sessionTTL time.Duration
	noCache    bool
}

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve exposes rendering, stacking and animation sessions over HTTP.

Sessions are kept in memory unless --session-dir is set, in which case they
are also written to disk and survive restarts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadedConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				opts.addr = cfg.Serve.Addr
			}
			if !cmd.Flags().Changed("session-dir") {
				opts.sessionDir = cfg.Serve.SessionDir
			}
			if !cmd.Flags().Changed("session-ttl") {
				opts.sessionTTL = time.Duration(cfg.Serve.SessionTTL)
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var store session.Store = session.NewMemoryStore()
			if opts.sessionDir != "" {
				fs, err := session.NewFileStore(opts.sessionDir)
				if err != nil {
					return err
				}
				fs.SetLogger(c.Logger)
				c.Logger.Infof("Persisting sessions to %s", fs.Path())
				store = fs
			}

			srv := server.New(server.Config{
				Addr:       opts.addr,
				Runner:     runner,
				Sessions:   store,
				SessionTTL: opts.sessionTTL,
				Logger:     c.Logger,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&opts.sessionDir, "session-dir", "", "persist sessions in this directory")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", session.DefaultTTL, "idle time before a session expires")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
