package main

import (
	"os"

	"github.com/aotfits/aot/internal/commands"
	"github.com/aotfits/aot/internal/output"
)

func main() {
	rootCmd := commands.RootCmd()

	// Registry
	rootCmd.AddCommand(commands.TablesCmd())
	rootCmd.AddCommand(commands.FieldsCmd())
	rootCmd.AddCommand(commands.SchemaCmd())
	rootCmd.AddCommand(commands.MapTypeCmd())
	rootCmd.AddCommand(commands.ExploreCmd())

	// Documents
	rootCmd.AddCommand(commands.ValidateCmd())
	rootCmd.AddCommand(commands.LayoutCmd())

	if err := rootCmd.Execute(); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}
