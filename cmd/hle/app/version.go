package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, overridable at build time via -ldflags.
var (
	// Version is the hle release version.
	Version = "0.1.0"

	// BuildTime is the binary build timestamp.
	BuildTime = "unknown"

	// GitCommit is the source revision the binary was built from.
	GitCommit = "dev"
)

// NewVersionCommand creates the version command.
//
// Usage:
//
//	hle version
func NewVersionCommand(globalOpts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Version:    %s\n", Version)
			fmt.Printf("Build Time: %s\n", BuildTime)
			fmt.Printf("Git Commit: %s\n", GitCommit)
			return nil
		},
	}

	return cmd
}
