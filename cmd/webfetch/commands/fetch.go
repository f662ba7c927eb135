package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// NewFetchCmd constructs the `webfetch fetch` command, which performs a
// single bounded, SSRF-checked fetch and prints the resulting packet as
// JSON (with a raw_excerpt of the decoded body when --raw-excerpt is set).
func NewFetchCmd() *cobra.Command {
	var (
		maxBytes       int64
		timeoutMS      int
		maxRedirects   int
		userAgent      string
		noRobots       bool
		allowPrivateIP bool
		rawExcerpt     bool
		headers        []string
		allowlist      []string
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a URL and print its normalized packet",
		Long: `Fetch a URL through the SSRF guard, robots check, and rate limiter, then
normalize the response into a content packet.

Examples:
  webfetch fetch https://example.com/
  webfetch fetch --raw-excerpt --max-bytes 524288 https://example.com/report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := buildPipeline(slog.Default())
			opts := defaultFetchOptions(p.cfg)

			if maxBytes > 0 {
				opts.MaxBytes = maxBytes
			}
			if timeoutMS > 0 {
				opts.TimeoutMS = timeoutMS
			}
			if maxRedirects >= 0 {
				opts.MaxRedirects = maxRedirects
			}
			if userAgent != "" {
				opts.UserAgent = userAgent
			}
			if noRobots {
				opts.RespectRobots = false
			}
			if allowPrivateIP {
				opts.BlockPrivateIP = false
			}
			if len(allowlist) > 0 {
				opts.AllowlistDomains = allowlist
			}
			opts.RawExcerpt = rawExcerpt
			if h, err := parseHeaders(headers); err != nil {
				return err
			} else if len(h) > 0 {
				opts.Headers = h
			}

			out, err := p.fetch.Fetch(cmd.Context(), args[0], opts)
			if err != nil {
				return describeFetchError(err)
			}
			return printJSON(cmd, out)
		},
	}

	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "override MAX_BYTES for this request")
	cmd.Flags().IntVar(&timeoutMS, "timeout-ms", 0, "override TIMEOUT_MS for this request")
	cmd.Flags().IntVar(&maxRedirects, "max-redirects", -1, "override MAX_REDIRECTS for this request")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "override USER_AGENT for this request")
	cmd.Flags().BoolVar(&noRobots, "no-robots", false, "ignore robots.txt for this request")
	cmd.Flags().BoolVar(&allowPrivateIP, "allow-private-ip", false, "disable the SSRF private-IP guard for this request")
	cmd.Flags().BoolVar(&rawExcerpt, "raw-excerpt", false, "include a raw_excerpt of the decoded body in the packet")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "extra request header as Key=Value (repeatable)")
	cmd.Flags().StringSliceVar(&allowlist, "allowlist-domains", nil, "comma-separated domain allowlist override")

	return cmd
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid --header %q, expected Key=Value", kv)
		}
		headers[parts[0]] = parts[1]
	}
	return headers, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeFetchError surfaces the FetchError code alongside its message so
// CLI output matches the tool surface's {code, message} error shape.
func describeFetchError(err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fmt.Errorf("%s: %s", fe.Code, fe.Message)
	}
	return err
}
