package main

import (
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/byte4ever/image_uris/imageuris"
)

func newTrainingCmd(opts *rootOptions) *cobra.Command {
	var (
		params           imageuris.TrainingParams
		distribution     string
		distributionFile string
	)

	cmd := &cobra.Command{
		Use:   "training",
		Short: "Print the training image URI for a job",
		Example: `  image_uri training --framework pytorch --version 2.0.1 \
    --region us-west-2 --py-version py310 --instance-type ml.p5.48xlarge \
    --distribution '{"torch_distributed":{},"smdistributed":{"modelparallel":{}}}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			const errCtx = "training"

			dist, err := loadDistribution(distribution, distributionFile)
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			ca, err := opts.loadCatalog()
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			params.Distribution = dist

			uri, err := ca.TrainingImageURI(params)
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)

			return err
		},
	}

	fl := cmd.Flags()

	fl.StringVar(&params.Framework, "framework", "", "framework name")
	fl.StringVar(&params.FrameworkVersion, "version", "", "framework version or alias")
	fl.StringVar(&params.Region, "region", "", "AWS region")
	fl.StringVar(&params.PyVersion, "py-version", "", "Python version (e.g. py310)")
	fl.StringVar(&params.InstanceType, "instance-type", "", "training instance type")
	fl.StringVar(&params.ImageURI, "image-uri", "", "explicit image URI, returned unchanged")
	fl.StringVar(&distribution, "distribution", "", "distribution config as JSON")
	fl.StringVar(&distributionFile, "distribution-file", "", "distribution config file (YAML or JSON)")

	cmd.MarkFlagsMutuallyExclusive("distribution", "distribution-file")

	for _, name := range []string{"framework", "version", "region"} {
		_ = cmd.MarkFlagRequired(name) //nolint:errcheck // flag defined above
	}

	return cmd
}

// loadDistribution decodes the distribution config from
// an inline JSON document or a YAML file. It returns nil
// when neither is given.
func loadDistribution(
	inline string,
	path string,
) (map[string]any, error) {
	const errCtx = "loading distribution"

	var dist map[string]any

	switch {
	case inline != "" && path != "":
		return nil, errors.New(
			errCtx + ": only one of --distribution or" +
				" --distribution-file may be specified",
		)
	case inline != "":
		if err := json.Unmarshal([]byte(inline), &dist); err != nil {
			return nil, fmt.Errorf(
				"%s: decoding json: %w", errCtx, err,
			)
		}
	case path != "":
		raw, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		if err := yaml.Unmarshal(raw, &dist); err != nil {
			return nil, fmt.Errorf(
				"%s: decoding yaml: %w", errCtx, err,
			)
		}
	}

	return dist, nil
}
