package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
	"github.com/custodia-labs/web-fetch-core/internal/resourcestore"
)

// @Summary      Health check
// @Tags         system
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// @Summary      Get server version
// @Tags         system
// @Success      200  {object}  map[string]string
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// fetchRequest is the `fetch(url, opts)` request body (spec §6).
type fetchRequest struct {
	URL  string      `json:"url"`
	Opts optionsWire `json:"opts"`
}

// optionsWire is the JSON wire shape for domain.FetchOptions. Every bool/int
// field is a pointer so the handler can tell "omitted" from "explicit zero"
// and materialize spec §6 defaults only for the omitted ones.
type optionsWire struct {
	Headers          map[string]string `json:"headers"`
	MaxBytes         *int64            `json:"max_bytes"`
	TimeoutMS        *int              `json:"timeout_ms"`
	MaxRedirects     *int              `json:"max_redirects"`
	UserAgent        *string           `json:"user_agent"`
	RespectRobots    *bool             `json:"respect_robots"`
	BlockPrivateIP   *bool             `json:"block_private_ip"`
	AllowlistDomains []string          `json:"allowlist_domains"`
	RawExcerpt       *bool             `json:"raw_excerpt"`
}

func (o optionsWire) toDomain() domain.FetchOptions {
	opts := domain.FetchOptions{
		Headers:          o.Headers,
		AllowlistDomains: o.AllowlistDomains,
		RespectRobots:    true,
		BlockPrivateIP:   true,
		MaxRedirects:     5,
	}
	if o.MaxBytes != nil {
		opts.MaxBytes = *o.MaxBytes
	}
	if o.TimeoutMS != nil {
		opts.TimeoutMS = *o.TimeoutMS
	}
	if o.MaxRedirects != nil {
		opts.MaxRedirects = *o.MaxRedirects
	}
	if o.UserAgent != nil {
		opts.UserAgent = *o.UserAgent
	}
	if o.RespectRobots != nil {
		opts.RespectRobots = *o.RespectRobots
	}
	if o.BlockPrivateIP != nil {
		opts.BlockPrivateIP = *o.BlockPrivateIP
	}
	if o.RawExcerpt != nil {
		opts.RawExcerpt = *o.RawExcerpt
	}
	return opts
}

// @Summary      Fetch a URL
// @Tags         fetch
// @Accept       json
// @Produce      json
// @Param        request  body      fetchRequest  true  "URL and fetch options"
// @Success      200      {object}  driving.FetchOutput
// @Failure      400      {object}  map[string]any
// @Router       /fetch [post]
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), "url is required")
		return
	}

	out, err := s.fetchService.Fetch(r.Context(), req.URL, req.Opts.toDomain())
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// extractRequest is the `extract({url?|raw_bytes?, content_type?,
// canonical_url?}, opts)` request body (spec §6). raw_bytes travels as
// base64 over the wire, matching encoding/json's []byte convention.
type extractRequest struct {
	URL          string      `json:"url"`
	RawBytes     []byte      `json:"raw_bytes"`
	ContentType  string      `json:"content_type"`
	CanonicalURL string      `json:"canonical_url"`
	Opts         optionsWire `json:"opts"`
}

// @Summary      Extract content from a URL or raw bytes
// @Tags         extract
// @Accept       json
// @Produce      json
// @Param        request  body      extractRequest  true  "Extract input and options"
// @Success      200      {object}  driving.FetchOutput
// @Router       /extract [post]
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), "invalid request body")
		return
	}

	input := driving.ExtractInput{
		URL:          req.URL,
		RawBytes:     req.RawBytes,
		ContentType:  req.ContentType,
		CanonicalURL: req.CanonicalURL,
	}

	out, err := s.extractService.Extract(r.Context(), input, req.Opts.toDomain())
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// chunkRequest is the `chunk(packet, {max_tokens, margin_ratio?,
// strategy?})` request body (spec §6).
type chunkRequest struct {
	Packet      *domain.Packet       `json:"packet"`
	MaxTokens   int                  `json:"max_tokens"`
	MarginRatio float64              `json:"margin_ratio"`
	Strategy    driven.ChunkStrategy `json:"strategy"`
}

// @Summary      Chunk a packet
// @Tags         chunk
// @Accept       json
// @Produce      json
// @Param        request  body      chunkRequest  true  "Packet and chunk options"
// @Success      200      {object}  map[string]any
// @Router       /chunk [post]
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), "invalid request body")
		return
	}
	if req.Packet == nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), "packet is required")
		return
	}

	set, err := s.chunkService.Chunk(r.Context(), req.Packet, driven.ChunkOptions{
		MaxTokens:   req.MaxTokens,
		MarginRatio: req.MarginRatio,
		Strategy:    req.Strategy,
	})
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": set})
}

// compactRequest is the `compact({packet|chunk_set}, {max_tokens, mode?,
// question?, preserve?})` request body (spec §6).
type compactRequest struct {
	Packet    *domain.Packet         `json:"packet"`
	ChunkSet  *domain.ChunkSet       `json:"chunk_set"`
	MaxTokens int                    `json:"max_tokens"`
	Mode      domain.CompactMode     `json:"mode"`
	Question  string                 `json:"question"`
	Preserve  []domain.PreserveClass `json:"preserve"`
}

// @Summary      Compact a packet or chunk set
// @Tags         compact
// @Accept       json
// @Produce      json
// @Param        request  body      compactRequest  true  "Input and compaction options"
// @Success      200      {object}  map[string]any
// @Router       /compact [post]
func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	var req compactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), "invalid request body")
		return
	}
	if req.Packet == nil && req.ChunkSet == nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), "packet or chunk_set is required")
		return
	}

	out, err := s.compactService.Compact(r.Context(), driven.CompactInput{
		Packet:   req.Packet,
		ChunkSet: req.ChunkSet,
	}, driven.CompactOptions{
		MaxTokens: req.MaxTokens,
		Mode:      req.Mode,
		Question:  req.Question,
		Preserve:  req.Preserve,
	})
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"compacted": out})
}

// @Summary      Get a stored resource by URI
// @Tags         resources
// @Produce      json
// @Param        kind      path  string  true  "packet|content|normalized|screenshot"
// @Param        sourceID  path  string  true  "source id"
// @Success      200  {object}  any
// @Failure      404  {object}  map[string]any
// @Router       /resources/{kind}/{sourceID} [get]
func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	sourceID := r.PathValue("sourceID")
	uri := resourcestore.BuildResourceURI(domain.ResourceKind(kind), sourceID)

	view, err := s.resourceService.Get(r.Context(), uri)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrResourceNotFound):
			writeError(w, http.StatusNotFound, string(domain.CodeResourceNotFound), "resource not found")
		case errors.Is(err, domain.ErrInvalidResourceURI):
			writeError(w, http.StatusBadRequest, string(domain.CodeResourceNotFound), "invalid resource uri")
		default:
			writeFetchError(w, err)
		}
		return
	}

	switch {
	case view.Markdown != "":
		w.Header().Set("Content-Type", view.MimeType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(view.Markdown))
	case view.PNGBase64 != "":
		writeJSON(w, http.StatusOK, map[string]string{"png_base64": view.PNGBase64})
	default:
		writeJSON(w, http.StatusOK, view.JSON)
	}
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	entries, err := s.resourceService.List(r.Context())
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": entries})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// writeFetchError maps a domain.FetchError's code to an HTTP status; any
// other error is an unexpected server-side failure.
func writeFetchError(w http.ResponseWriter, err error) {
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		writeError(w, http.StatusInternalServerError, string(domain.CodeUnexpectedError), err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch {
	case fe.Code == domain.CodeInvalidProtocol, fe.Code == domain.CodeInvalidURL,
		fe.Code == domain.CodeInvalidInput, fe.Code == domain.CodeInvalidRedirect,
		fe.Code == domain.CodeUnsupportedEncoding:
		status = http.StatusBadRequest
	case fe.Code == domain.CodeSSRFBlocked, fe.Code == domain.CodeRobotsBlocked:
		status = http.StatusForbidden
	case fe.Code == domain.CodeRateLimited:
		status = http.StatusTooManyRequests
	case fe.Code == domain.CodeResourceNotFound:
		status = http.StatusNotFound
	case fe.Code == domain.CodeRedirectLoop, fe.Code == domain.CodeTooManyRedirects,
		fe.Code == domain.CodeContentTooLarge, fe.Code == domain.CodeDecompressionFailed,
		fe.Code == domain.CodeExtractionFailed:
		status = http.StatusUnprocessableEntity
	case strings.HasPrefix(string(fe.Code), "HTTP_"):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    fe.Code,
			"message": fe.Message,
			"details": fe.Details,
		},
	})
}
