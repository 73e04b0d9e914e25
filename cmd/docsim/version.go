package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/docsim/internal/version"
	"github.com/ludo-technologies/docsim/service"
)

// VersionCommand represents the version command
type VersionCommand struct {
	short bool
	json  bool
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

// CreateCobraCommand creates the cobra command for version display
func (v *VersionCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display detailed version information for docsim.

Shows version number, build commit, build date, Go version, and platform information.
Use --short to display only the version number.

Examples:
  # Show full version information
  docsim version

  # Show only version number (useful for scripts)
  docsim version --short`,
		RunE: v.runVersion,
	}

	cmd.Flags().BoolVarP(&v.short, "short", "s", false, "Show only version number")
	cmd.Flags().BoolVar(&v.json, "json", false, "Show version information as JSON")

	return cmd
}

// runVersion executes the version command
func (v *VersionCommand) runVersion(cmd *cobra.Command, args []string) error {
	switch {
	case v.json:
		return service.WriteJSON(cmd.OutOrStdout(), version.Get())
	case v.short:
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.Short())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.Info())
	}
	return nil
}

// NewVersionCmd creates and returns the version cobra command
func NewVersionCmd() *cobra.Command {
	versionCommand := NewVersionCommand()
	return versionCommand.CreateCobraCommand()
}
