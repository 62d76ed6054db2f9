package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
	"github.com/AutmateStudio/Anonimiser/internal/audit"
	"github.com/AutmateStudio/Anonimiser/internal/config"
	"github.com/AutmateStudio/Anonimiser/internal/ingest"
)

var (
	batchOutput  string
	batchNoAudit bool
)

// batchResult is one JSON line of batch output.
type batchResult struct {
	Sender         string            `json:"sender"`
	Original       string            `json:"original"`
	Redacted       string            `json:"redacted"`
	Mapping        anonymize.Mapping `json:"mapping"`
	ProcessingTime float64           `json:"processing_time"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <transcript>",
	Short: "Redact a conversation transcript message by message",
	Long: `Reads a transcript file (or stdin when the argument is "-"), splits it
into messages on the Компания:/Клиент: speaker markers, redacts each message
independently, and writes one JSON line per message. Placeholder numbering
restarts for every message.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "batch")
		defer span.End()

		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}

		messages := ingest.ParseMessages(string(data))
		if len(messages) == 0 {
			return fmt.Errorf("no messages found; expected Компания:/Клиент: markers")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		anonymizer, err := buildAnonymizer(cfg)
		if err != nil {
			return err
		}

		var auditGen *audit.Generator
		if !batchNoAudit {
			if err := cfg.EnsureDataDir(); err != nil {
				return fmt.Errorf("creating data directory: %w", err)
			}
			store, err := audit.NewStore(cfg.AuditDBPath(), cfg.SigningKey)
			if err != nil {
				return fmt.Errorf("initializing audit store: %w", err)
			}
			defer store.Close()
			auditGen = audit.NewGenerator(store)
		}

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)

		for _, msg := range messages {
			res := anonymizer.Redact(ctx, msg.Text)

			if auditGen != nil {
				_, err := auditGen.Generate(ctx, audit.GenerateParams{
					Caller:     "cli",
					Operation:  "batch",
					InputText:  msg.Text,
					OutputText: res.RedactedText,
					Counts:     res.Counts,
					SpanCount:  res.SpanCount,
					DurationMS: int64(res.ProcessingTime * 1000),
				})
				if err != nil {
					log.Error().Err(err).Msg("audit_record_failed")
				}
			}

			if err := enc.Encode(batchResult{
				Sender:         msg.Sender,
				Original:       msg.Text,
				Redacted:       res.RedactedText,
				Mapping:        res.Mapping,
				ProcessingTime: res.ProcessingTime,
			}); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
		}

		log.Info().Int("messages", len(messages)).Msg("batch_completed")
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write JSON lines to a file instead of stdout")
	batchCmd.Flags().BoolVar(&batchNoAudit, "no-audit", false, "disable the signed audit trail")
	rootCmd.AddCommand(batchCmd)
}
