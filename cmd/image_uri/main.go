// Command image_uri resolves training and inference
// container image URIs from the packaged configuration
// tables and substitutes image-uri references in
// Kubernetes manifests.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/byte4ever/image_uris/imageuris"
)

// rootOptions holds the flags shared by every
// subcommand.
type rootOptions struct {
	configDirs []string
	verbose    bool
}

// loadCatalog builds the catalog from the packaged
// tables and any --config-dir overrides.
func (o *rootOptions) loadCatalog() (*imageuris.Catalog, error) {
	return imageuris.NewCatalog(o.configDirs...)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "image_uri",
		Short:         "Resolve container image URIs for training jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(
				cmd.ErrOrStderr(),
				&slog.HandlerOptions{Level: level},
			)))
		},
	}

	cmd.PersistentFlags().StringSliceVar(
		&opts.configDirs, "config-dir", nil,
		"directory of framework config files overriding the packaged ones (repeatable)",
	)
	cmd.PersistentFlags().BoolVarP(
		&opts.verbose, "verbose", "v", false,
		"enable debug logging",
	)

	cmd.AddCommand(
		newRetrieveCmd(opts),
		newTrainingCmd(opts),
		newManifestCmd(opts),
	)

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
