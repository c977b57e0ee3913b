package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pluginforge/create-plugin/internal/manifest"
)

// errInvalidManifest is returned after the issues have been printed.
var errInvalidManifest = errors.New("manifest is invalid")

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a plugin manifest",
	Long: `Validate manifest.json against the manifest schema and version rules.

The path may point at the manifest itself or at the project directory
containing it. It defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, manifest.FileName)
		}

		result, err := manifest.ValidateFile(path)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if result.Valid {
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("Valid:"), path)
			return nil
		}

		fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Invalid:"), path)
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
		return errInvalidManifest
	},
}
