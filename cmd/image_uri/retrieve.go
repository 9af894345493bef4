package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/byte4ever/image_uris/imageuris"
)

func newRetrieveCmd(opts *rootOptions) *cobra.Command {
	var params imageuris.Params

	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Print the image URI for explicit parameters",
		Example: `  image_uri retrieve --framework pytorch --version 2.0 \
    --region us-west-2 --py-version py310 --instance-type ml.g5.xlarge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			const errCtx = "retrieve"

			ca, err := opts.loadCatalog()
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			uri, err := ca.Retrieve(params)
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)

			return err
		},
	}

	fl := cmd.Flags()

	fl.StringVar(&params.Framework, "framework", "", "framework config name")
	fl.StringVar(&params.Version, "version", "", "framework version or alias")
	fl.StringVar(&params.Region, "region", "", "AWS region")
	fl.StringVar(&params.PyVersion, "py-version", "", "Python version (e.g. py310)")
	fl.StringVar(&params.InstanceType, "instance-type", "", "instance type (e.g. ml.p4d.24xlarge)")
	fl.StringVar(&params.Scope, "scope", imageuris.ScopeTraining, "image scope")
	fl.StringVar(&params.ContainerVersion, "container-version", "", "container build suffix override")

	for _, name := range []string{"framework", "version", "region"} {
		_ = cmd.MarkFlagRequired(name) //nolint:errcheck // flag defined above
	}

	return cmd
}
