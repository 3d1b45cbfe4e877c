package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fabricshift/fabricshift/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion API server",
		Long: `Start an HTTP server exposing the conversion pipeline:

  POST /api/convert     convert a query
  GET  /api/mappings    list the function mapping table
  GET  /api/history     list recorded conversions (when history is enabled)
  GET  /healthz         health check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if port == 0 {
				port = cc.Cfg.GetServerConfig().Port
			}

			srv := server.NewServer(server.Config{
				Converter: cc.Converter,
				Table:     cc.Table,
				Store:     cc.Store,
				Port:      port,
				Logger:    cc.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}
