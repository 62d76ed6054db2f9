package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AutmateStudio/Anonimiser/internal/detect"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate recognizer patterns",
	Long:  "Parses a recognizer YAML file and compiles every regex, reporting the first error.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "validate")
		defer span.End()

		var recognizers []detect.RecognizerConfig
		source := "built-in"
		if validateFile != "" {
			source = validateFile
			data, err := os.ReadFile(validateFile)
			if err != nil {
				return fmt.Errorf("reading %s: %w", validateFile, err)
			}
			file, err := detect.ParseRecognizerFile(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "✗ Validation failed: %s\n", validateFile)
				return fmt.Errorf("parsing %s: %w", validateFile, err)
			}
			recognizers = file.Recognizers
		} else {
			defaults, err := detect.DefaultRecognizers()
			if err != nil {
				return fmt.Errorf("loading built-in recognizers: %w", err)
			}
			recognizers = defaults
		}

		patterns, err := detect.CompilePatterns(recognizers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ Compilation failed: %s\n", source)
			return fmt.Errorf("compiling patterns: %w", err)
		}

		log.Info().
			Str("source", source).
			Int("recognizers", len(recognizers)).
			Int("patterns", len(patterns)).
			Msg("patterns_validated")

		fmt.Printf("✓ Patterns valid: %s\n", source)
		fmt.Printf("  Recognizers: %d\n", len(recognizers))
		fmt.Printf("  Patterns:    %d\n", len(patterns))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "patterns", "p", "", "recognizer YAML to validate (default: built-in set)")
	rootCmd.AddCommand(validateCmd)
}
