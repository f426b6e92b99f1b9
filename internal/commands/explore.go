package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aotfits/aot/internal/explore"
	"github.com/aotfits/aot/internal/schema"
)

// ExploreCmd opens the interactive schema browser
func ExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse the AOT tables and fields interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(
				explore.New(schema.Default()),
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
}
