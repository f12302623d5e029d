package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docstage/internal/domain"
	"docstage/internal/logger"
	"docstage/internal/usecase"
)

var docsFull bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List, view and delete stored documents",
	Long: `Browse the artifacts the processing service keeps. Kinds are loaded,
chunked and parsed; deleting one kind never touches the others.

Examples:
  docstage docs list loaded
  docstage docs view chunked report --full
  docstage docs delete parsed guide notes`,
}

var docsListCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List documents of a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, view, err := registryArgs(args[0])
		if err != nil {
			return err
		}
		docs, err := view.Refresh(requestContext(cmd), kind)
		if err != nil {
			return err
		}
		return printSummaries(cmd.OutOrStdout(), kind, docs)
	},
}

var docsViewCmd = &cobra.Command{
	Use:   "view <kind> <name>",
	Short: "Show a stored document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, view, err := registryArgs(args[0])
		if err != nil {
			return err
		}
		doc, err := view.Detail(requestContext(cmd), args[1], kind)
		if err != nil {
			return err
		}
		limit := cfg.Output.PreviewChars
		if docsFull {
			limit = 0
		}
		return printResult(cmd.OutOrStdout(), doc.Result, limit)
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <kind> <name>...",
	Short: "Delete documents of a kind",
	Long: `Delete documents of a kind. Deleting a document that does not exist
succeeds, so a repeated delete is harmless.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, view, err := registryArgs(args[0])
		if err != nil {
			return err
		}
		ctx := requestContext(cmd)
		out := cmd.OutOrStdout()
		for _, name := range args[1:] {
			if err := view.Delete(ctx, name, kind); err != nil {
				return fmt.Errorf("delete %s: %w", name, err)
			}
			fmt.Fprintf(out, "%s %s\n", green("deleted"), name)
		}
		return printSummaries(out, kind, view.Last(kind))
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd, docsViewCmd, docsDeleteCmd)
	docsViewCmd.Flags().BoolVar(&docsFull, "full", false, "print segment bodies untruncated")
}

func registryArgs(kindArg string) (domain.Kind, *usecase.RegistryView, error) {
	kind, err := domain.ParseKind(kindArg)
	if err != nil {
		return "", nil, err
	}
	if kind == domain.KindRaw {
		return "", nil, fmt.Errorf("the service keeps no registry of raw uploads")
	}
	client, err := newClient()
	if err != nil {
		return "", nil, err
	}
	return kind, usecase.NewRegistryView(client, logger.Named("registry")), nil
}
