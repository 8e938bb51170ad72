package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/hitcard/internal/config"
	"github.com/five82/hitcard/internal/scan"
)

type classifyResult struct {
	Kind        string `json:"kind"`
	URL         string `json:"url,omitempty"`
	ReferenceID string `json:"referenceId,omitempty"`
	Reason      string `json:"reason,omitempty"`
	// Manual is the manual-entry rejection, empty when the text would be
	// accepted as typed input.
	Manual string `json:"manualRejection,omitempty"`
}

func newClassifyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Show how scanned text would be interpreted",
		Example: `  hitcard classify https://cards.example/qr/am/00001
  hitcard classify "https://audio.example/preview.m4a"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c := scan.Classifier{Prefixes: cfg.Scanner.Prefixes}
			res := c.Classify(args[0])
			_, rejection := c.CheckManual(args[0])

			out := classifyResult{
				Kind:        res.Kind.String(),
				URL:         res.URL,
				ReferenceID: res.ReferenceID,
				Reason:      reasonName(res.Reason),
				Manual:      string(rejection),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func reasonName(r scan.Reason) string {
	switch r {
	case scan.ReasonNotURL:
		return "notUrl"
	case scan.ReasonNotAudio:
		return "notAudio"
	default:
		return ""
	}
}
