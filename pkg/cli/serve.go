package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acidwave/acidwave-bench/pkg/mcpserver"
	"github.com/acidwave/acidwave-bench/pkg/task"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve <catalog-file>",
		Short: "Serve the task catalog and validator over MCP",
		Long: `Start an MCP server with the list_tasks, get_task and validate_snapshot
tools. The server speaks over stdin/stdout unless --http is set.

Example:
  acidwave-bench serve tasks/test.raw.json
  acidwave-bench serve tasks/test.raw.json --http localhost:8080`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := task.LoadCatalog(args[0])
			if err != nil {
				return err
			}

			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			server, err := mcpserver.New(catalog, validate.New(validate.WithLogger(logger)),
				mcpserver.WithVersion(Version), mcpserver.WithLogger(logger))
			if err != nil {
				return err
			}

			if httpAddr == "" {
				return mcpserver.ServeStdio(cmd.Context(), server)
			}

			return mcpserver.ServeHTTP(cmd.Context(), server, httpAddr, func(url string) {
				logger.Info("mcp server listening", zap.String("url", url))
				fmt.Fprintf(cmd.ErrOrStderr(), "Serving %d tasks at %s\n", catalog.Len(), url)
			})
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio")

	return cmd
}
