package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			if cc.Flags.JSON {
				return printJSON(cc.Out, map[string]string{
					"version": version,
					"os":      runtime.GOOS,
					"arch":    runtime.GOARCH,
				})
			}

			fmt.Fprintf(cc.Out, "codetester %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)

			return nil
		},
	}
}
