package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
	"github.com/AutmateStudio/Anonimiser/internal/config"
)

var redactCmd = &cobra.Command{
	Use:   "redact [text]",
	Short: "Redact PII from a text and print the result as JSON",
	Long: `Redacts personal data from the given text (or stdin when the argument
is "-" or absent) and prints the redacted text, the placeholder mapping, and
the processing time as JSON on stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "redact")
		defer span.End()

		text, err := readTextArg(args)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		anonymizer, err := buildAnonymizer(cfg)
		if err != nil {
			return err
		}

		res := anonymizer.Redact(ctx, text)

		out := struct {
			RedactedText   string            `json:"redacted_text"`
			Mapping        anonymize.Mapping `json:"mapping"`
			ProcessingTime float64           `json:"processing_time"`
		}{res.RedactedText, res.Mapping, res.ProcessingTime}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// readTextArg returns the positional text argument, reading stdin when it is
// absent or "-".
func readTextArg(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no input text")
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(redactCmd)
}
