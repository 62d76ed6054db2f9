package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
)

var restoreMappingFile string

var restoreCmd = &cobra.Command{
	Use:   "restore [text]",
	Short: "Restore original text from redacted text and a mapping file",
	Long: `Replaces placeholder tokens in the given text (or stdin when the
argument is "-" or absent) with their original values from the mapping file
and prints the restored text on stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "restore")
		defer span.End()

		text, err := readTextArg(args)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(restoreMappingFile)
		if err != nil {
			return fmt.Errorf("reading mapping file: %w", err)
		}
		var mapping map[string]string
		if err := json.Unmarshal(data, &mapping); err != nil {
			return fmt.Errorf("parsing mapping file: %w", err)
		}

		fmt.Println(anonymize.Restore(text, mapping))
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVarP(&restoreMappingFile, "mapping", "m", "", "JSON file with placeholder to original mapping (required)")
	_ = restoreCmd.MarkFlagRequired("mapping")
	rootCmd.AddCommand(restoreCmd)
}
