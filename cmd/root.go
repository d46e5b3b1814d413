package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the haircut-mcp application
var rootCmd = &cobra.Command{
	Use:   "haircut-mcp",
	Short: "MCP server reporting available haircut appointments from BokaDirekt",
	Long: `haircut-mcp is a Model Context Protocol (MCP) server with one tool,
get-haircut-times, which reads the open appointment slots of a configured
salon, service and staff member from BokaDirekt.

It can run as:
  - An MCP server for AI assistants (default, stdio transport)
  - A one-shot CLI printing the current availability (times)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "haircut-mcp version %s\n" .Version}}`)

	// MCP hosts launch the binary without arguments, so serve is the default.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTimesCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
