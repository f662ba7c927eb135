package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

// NewCompactCmd constructs the `webfetch compact` command, which reduces a
// packet or chunk set to a structured summary within a token budget.
func NewCompactCmd() *cobra.Command {
	var (
		chunkSetFile string
		maxTokens    int
		mode         string
		question     string
		preserve     []string
	)

	cmd := &cobra.Command{
		Use:   "compact <packet.json>",
		Short: "Compact a packet (or --chunk-set) into a token-budgeted summary",
		Long: `Compact reduces a packet's content to --max-tokens, preserving the
requested classes of detail (numbers, dates, names, definitions, procedures).

Examples:
  webfetch compact packet.json --max-tokens 500
  webfetch compact --chunk-set chunks.json --mode question_focused --question "what changed?"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := driven.CompactInput{}
			if len(args) == 1 {
				packet, err := readPacket(args[0])
				if err != nil {
					return err
				}
				input.Packet = packet
			}
			if chunkSetFile != "" {
				set, err := readChunkSet(chunkSetFile)
				if err != nil {
					return err
				}
				input.ChunkSet = set
			}
			if input.Packet == nil && input.ChunkSet == nil {
				return fmt.Errorf("compact requires a packet argument or --chunk-set")
			}

			preserveClasses := domain.DefaultPreserveClasses()
			if len(preserve) > 0 {
				preserveClasses = make([]domain.PreserveClass, len(preserve))
				for i, p := range preserve {
					preserveClasses[i] = domain.PreserveClass(p)
				}
			}

			p := buildPipeline(slog.Default())
			if maxTokens <= 0 {
				maxTokens = p.cfg.DefaultMaxTokens
			}

			out, err := p.compact.Compact(cmd.Context(), input, driven.CompactOptions{
				MaxTokens: maxTokens,
				Mode:      domain.CompactMode(mode),
				Question:  question,
				Preserve:  preserveClasses,
			})
			if err != nil {
				return describeFetchError(err)
			}
			return printJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&chunkSetFile, "chunk-set", "", "path to a chunk set JSON file (as an alternative to a packet)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "token budget (default DEFAULT_MAX_TOKENS)")
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeStructural), "structural|salience|map_reduce|question_focused")
	cmd.Flags().StringVar(&question, "question", "", "question to focus on, for --mode question_focused")
	cmd.Flags().StringSliceVar(&preserve, "preserve", nil, "comma-separated preserve classes (default numbers,dates,names)")

	return cmd
}

func readChunkSet(path string) (*domain.ChunkSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var set domain.ChunkSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parsing %s as a chunk set: %w", path, err)
	}
	return &set, nil
}
