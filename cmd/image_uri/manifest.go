package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/byte4ever/image_uris/manifest"
)

func newManifestCmd(opts *rootOptions) *cobra.Command {
	var (
		inFile   string
		outFile  string
		defaults manifest.Defaults
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Substitute image-uri references in Kubernetes manifests",
		Example: `  image_uri manifest --region us-west-2 \
    --instance-type ml.p4d.24xlarge --infile job.yaml --outfile job.resolved.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			const errCtx = "manifest"

			ca, err := opts.loadCatalog()
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			var inReader io.Reader = cmd.InOrStdin()

			if inFile != "" {
				fi, err := os.Open(inFile) //nolint:gosec // path from CLI flag
				if err != nil {
					return fmt.Errorf(
						"%s: opening input: %w",
						errCtx, err,
					)
				}

				defer fi.Close() //nolint:errcheck // best-effort close

				inReader = fi
			}

			var outWriter io.Writer = cmd.OutOrStdout()

			if outFile != "" {
				fo, err := os.Create(outFile) //nolint:gosec // path from CLI flag
				if err != nil {
					return fmt.Errorf(
						"%s: creating output: %w",
						errCtx, err,
					)
				}

				defer fo.Close() //nolint:errcheck // best-effort close

				outWriter = fo
			}

			if err := manifest.ResolveImages(
				inReader, outWriter, ca, defaults,
			); err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			return nil
		},
	}

	fl := cmd.Flags()

	fl.StringVar(&inFile, "infile", "", "input YAML file path (stdin if empty)")
	fl.StringVar(&outFile, "outfile", "", "output YAML file path (stdout if empty)")
	fl.StringVar(&defaults.Region, "region", "", "default region for references")
	fl.StringVar(&defaults.InstanceType, "instance-type", "", "default instance type for references")
	fl.StringVar(&defaults.PyVersion, "py-version", "", "default Python version for references")
	fl.StringVar(&defaults.Scope, "scope", "", "default image scope for references")

	return cmd
}
