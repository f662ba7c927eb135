package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
)

// NewExtractCmd constructs the `webfetch extract` command, which normalizes
// either a fetched URL or a local file's raw bytes into a content packet.
func NewExtractCmd() *cobra.Command {
	var (
		file         string
		contentType  string
		canonicalURL string
	)

	cmd := &cobra.Command{
		Use:   "extract [url]",
		Short: "Extract a normalized packet from a URL or local file",
		Long: `Extract runs the same normalization pipeline as fetch, but can also take
raw bytes from a local file instead of fetching a URL.

Examples:
  webfetch extract https://example.com/article
  webfetch extract --file report.pdf --content-type application/pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var url string
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" && file == "" {
				return fmt.Errorf("extract requires a url argument or --file")
			}

			input := driving.ExtractInput{
				URL:          url,
				ContentType:  contentType,
				CanonicalURL: canonicalURL,
			}
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				input.RawBytes = raw
				if input.CanonicalURL == "" {
					input.CanonicalURL = file
				}
			}

			p := buildPipeline(slog.Default())
			out, err := p.extract.Extract(cmd.Context(), input, defaultFetchOptions(p.cfg))
			if err != nil {
				return describeFetchError(err)
			}
			return printJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a local file to extract instead of fetching a URL")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type of --file, when it cannot be sniffed")
	cmd.Flags().StringVar(&canonicalURL, "canonical-url", "", "canonical URL to record for --file input")

	return cmd
}
