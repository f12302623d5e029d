package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"docstage/config"
	"docstage/internal/adapter/remote"
	"docstage/internal/logger"
	"docstage/internal/usecase"
)

var (
	cfgFile   string
	serverURL string
	logLevel  string
	jsonOut   bool
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docstage",
	Short: "Drive the load, chunk and parse stages of a document processing service",
	Long: `docstage is a client for a three stage document ingestion service.
Files are loaded into page maps, loaded documents are chunked with one of six
strategies, and files can be parsed into typed sections. Every stage result is
stored by the service and can be listed, viewed and deleted.

Example usage:
  docstage load report.pdf --method pymupdf
  docstage chunk report --method fixed_size --param chunk_size=500
  docstage parse guide.md --method by_sections
  docstage docs list chunked
  docstage serve --in-memory                # local reference service`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			dir, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(dir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if serverURL != "" {
			cfg.Server.BaseURL = serverURL
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if jsonOut {
			cfg.Output.Format = "json"
		}

		if errs := cfg.Validate(); len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			return fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
		}

		return logger.Init(cfg.Logging.Level, cfg.Logging.Development)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command. An interrupt cancels the command context,
// which stops "serve"; requests already issued still run to completion.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// requestContext detaches stage requests from interrupts: once issued, a
// request runs to completion or failure.
func requestContext(cmd *cobra.Command) context.Context {
	return context.WithoutCancel(cmd.Context())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docstage.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "processing service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
}

func newClient() (*remote.Client, error) {
	return remote.New(cfg.Server.BaseURL,
		remote.WithTimeout(cfg.Server.Timeout),
		remote.WithLogger(logger.Named("remote")),
	)
}

// stageDefaults maps the stage sections of the configuration onto the
// controller defaults. chunk_size and chunk_overlap only apply to methods
// that declare them.
func stageDefaults(c *config.Config) usecase.Defaults {
	chunkParams := map[string]string{}
	for k, v := range c.Chunk.Params {
		chunkParams[k] = v
	}
	if c.Chunk.ChunkSize > 0 {
		chunkParams["chunk_size"] = fmt.Sprint(c.Chunk.ChunkSize)
	}
	chunkParams["chunk_overlap"] = fmt.Sprint(c.Chunk.ChunkOverlap)

	return usecase.Defaults{
		PDFMethod:   c.Load.PDFMethod,
		LoadParams:  c.Load.Params,
		ChunkMethod: c.Chunk.Method,
		ChunkParams: declared(c.Chunk.Method, chunkParams),
		ParseMethod: c.Parse.Method,
	}
}

func newWorkbench() (*usecase.Workbench, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	return usecase.NewWorkbench(client, client, stageDefaults(cfg), logger.Named("stage"))
}
