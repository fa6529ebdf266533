// Command tenantd serves the tenant-aware HTTP API and ships the operator
// tooling around it: migrations, slug helpers and a resolver dry run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:           "tenantd",
		Short:         "Tenant resolution service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv(envFiles...)
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "extra dotenv files to load, .env in the working directory is always read")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSlugCmd(),
		newResolveCmd(),
	)
	return root
}
