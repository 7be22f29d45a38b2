package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X".
var Version, BuildDate, GitRevision string

var VersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"ver"},
	Short:   "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		version := Version
		if version == "" {
			version = "dev"
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Build Version:    ", version)
		fmt.Fprintln(cmd.OutOrStdout(), "Build date:       ", BuildDate)
		fmt.Fprintln(cmd.OutOrStdout(), "Git commit:       ", GitRevision)
	},
}
