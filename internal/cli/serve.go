package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docstage/config"
	"docstage/internal/adapter/devserver"
	"docstage/internal/adapter/memstore"
	"docstage/internal/adapter/store"
	"docstage/internal/logger"
)

var (
	serveAddr     string
	serveDataDir  string
	serveInMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local reference processing service",
	Long: `Run a local implementation of the processing service for development and
offline use. Uploads are read as UTF-8 text; form feeds separate PDF pages.
Artifacts are kept in <data-dir>/artifacts.db unless --in-memory is set.

Examples:
  docstage serve
  docstage serve --addr :9000 --in-memory`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "artifact directory (default from config)")
	serveCmd.Flags().BoolVar(&serveInMemory, "in-memory", false, "keep artifacts in memory only")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.DevServer.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	dataDir := cfg.DevServer.DataDir
	if serveDataDir != "" {
		dataDir = serveDataDir
	}

	var st devserver.Store
	if serveInMemory {
		st = memstore.NewMemoryStore()
	} else {
		if err := config.EnsureDataDir(dataDir); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		bolt, err := store.NewBoltStore(config.StorePath(dataDir))
		if err != nil {
			return fmt.Errorf("failed to open artifact store: %w", err)
		}
		st = bolt
	}
	defer st.Close()

	return devserver.New(st, logger.Named("devserver")).ListenAndServe(cmd.Context(), addr)
}
