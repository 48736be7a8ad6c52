package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout, gutter and split operations over HTTP",
		Long: `Serve layout, gutter and split operations over HTTP.

  GET  /healthz
  GET  /v1/grid/layout?count=N&width=W&height=H
  GET  /v1/gutter/{inset|outset}?width=W&height=H
  POST /v1/split?chunk=C&gutter=G   (body: image bytes)

The server stops gracefully on interrupt.`,
		Example: `  boardtex serve --addr :9000
  BOARDTEX_CACHE_BACKEND=redis boardtex serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			store := c.newCache(cmd.Context(), false)
			defer store.Close()

			srv := server.New(server.Options{
				Cache:          store,
				Logger:         c.Logger,
				MaxUploadBytes: cfg.Serve.MaxUploadBytes,
				Concurrency:    cfg.Render.Concurrency,
				TTL:            cfg.Cache.TTL,
			})
			c.Logger.Info("starting server", "addr", cfg.Serve.Addr, "cache", cfg.Cache.Backend)
			return srv.ListenAndServe(cmd.Context(), cfg.Serve.Addr, cfg.Serve.ReadTimeout, cfg.Serve.WriteTimeout)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().Int64("max-upload", 0, "largest accepted image upload in bytes")
	c.bind("serve.addr", cmd.Flags().Lookup("addr"))
	c.bind("serve.max_upload_bytes", cmd.Flags().Lookup("max-upload"))

	return cmd
}
