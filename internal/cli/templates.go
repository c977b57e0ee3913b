package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluginforge/create-plugin/internal/config"
	"github.com/pluginforge/create-plugin/internal/templates"
)

func init() {
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the starter templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		mirror := config.Mirror()
		for _, t := range templates.All() {
			fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(fmt.Sprintf("%-10s", t.Kind)), t.DisplayName)
			fmt.Fprintf(w, "            %s\n", SubtitleStyle.Render(t.ArchiveURL(mirror)))
		}
		return nil
	},
}
