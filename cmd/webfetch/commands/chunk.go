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

// NewChunkCmd constructs the `webfetch chunk` command, which splits a
// previously fetched packet (as saved by `webfetch fetch > packet.json`)
// into token-budgeted chunks.
func NewChunkCmd() *cobra.Command {
	var (
		maxTokens   int
		marginRatio float64
		strategy    string
	)

	cmd := &cobra.Command{
		Use:   "chunk <packet.json>",
		Short: "Split a packet's key blocks into token-budgeted chunks",
		Long: `Chunk reads a packet JSON file (the "packet" field of a prior fetch/extract
output) and splits its key blocks into chunks no larger than --max-tokens.

Examples:
  webfetch fetch https://example.com/ | jq .packet > packet.json
  webfetch chunk packet.json --max-tokens 1000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packet, err := readPacket(args[0])
			if err != nil {
				return err
			}

			p := buildPipeline(slog.Default())
			if maxTokens <= 0 {
				maxTokens = p.cfg.DefaultMaxTokens
			}
			if marginRatio <= 0 {
				marginRatio = p.cfg.ChunkMarginRatio
			}

			set, err := p.chunk.Chunk(cmd.Context(), packet, driven.ChunkOptions{
				MaxTokens:   maxTokens,
				MarginRatio: marginRatio,
				Strategy:    driven.ChunkStrategy(strategy),
			})
			if err != nil {
				return describeFetchError(err)
			}
			return printJSON(cmd, set)
		},
	}

	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "max tokens per chunk (default DEFAULT_MAX_TOKENS)")
	cmd.Flags().Float64Var(&marginRatio, "margin-ratio", 0, "chunk margin ratio (default CHUNK_MARGIN_RATIO)")
	cmd.Flags().StringVar(&strategy, "strategy", string(driven.StrategyHeadingsFirst), "headings_first|balanced")

	return cmd
}

func readPacket(path string) (*domain.Packet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var packet domain.Packet
	if err := json.Unmarshal(raw, &packet); err != nil {
		return nil, fmt.Errorf("parsing %s as a packet: %w", path, err)
	}
	return &packet, nil
}
