// Package server exposes the tokenizer contract as a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-tokenkit/internal/config"
	"github.com/example/go-tokenkit/internal/tokenizer"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   1 << 20,
		workers:        4,
		requestTimeout: 30 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes per request.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent tokenization calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	codecs        map[string]tokenizer.Tokenizer
	defaultScheme string
	opts          options
	sem           chan struct{} // semaphore for worker pool
	log           *slog.Logger
}

// NewHandler returns an http.Handler serving /healthz, /v1/info, and the
// POST endpoints /v1/encode, /v1/decode, /v1/offsets over the given codecs.
// defaultScheme selects the codec used when a request names none.
func NewHandler(codecs map[string]tokenizer.Tokenizer, defaultScheme string, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		codecs:        codecs,
		defaultScheme: defaultScheme,
		opts:          opts,
		log:           opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/v1/info", h.handleInfo)
	mux.HandleFunc("/v1/encode", h.handleEncode)
	mux.HandleFunc("/v1/decode", h.handleDecode)
	mux.HandleFunc("/v1/offsets", h.handleOffsets)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

// codecInfo is the public metadata of one codec.
type codecInfo struct {
	Scheme     string `json:"scheme"`
	NWords     int    `json:"n_words"`
	BOSID      int    `json:"bos_id"`
	EOSID      int    `json:"eos_id"`
	PadID      *int   `json:"pad_id,omitempty"`
	OffsetUnit string `json:"offset_unit"`
}

// offsetUnits documents the unit of TokenOffsets results per scheme. The
// distinction is load-bearing for callers and is never silently normalized.
var offsetUnits = map[string]string{
	tokenizer.SchemeBytes:         "byte",
	tokenizer.SchemeSubwordPiece:  "byte",
	tokenizer.SchemeBytePair:      "rune",
	tokenizer.SchemeFixedAlphabet: "ordinal",
	tokenizer.SchemeMock:          "none",
}

func describeCodec(scheme string, tok tokenizer.Tokenizer) codecInfo {
	info := codecInfo{
		Scheme:     scheme,
		NWords:     tok.VocabSize(),
		BOSID:      tok.BOSID(),
		EOSID:      tok.EOSID(),
		OffsetUnit: offsetUnits[scheme],
	}
	if p, ok := tok.(interface{ PadID() int }); ok {
		pad := p.PadID()
		info.PadID = &pad
	}
	return info
}

func (h *handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	scheme := r.URL.Query().Get("scheme")

	tok, scheme, err := h.resolve(scheme)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, describeCodec(scheme, tok))
}

type encodeRequest struct {
	Text   string `json:"text"`
	BOS    bool   `json:"bos"`
	EOS    bool   `json:"eos"`
	Scheme string `json:"scheme,omitempty"`
}

type encodeResponse struct {
	Tokens []int  `json:"tokens"`
	Count  int    `json:"count"`
	Scheme string `json:"scheme"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	tok, scheme, err := h.resolve(req.Scheme)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	release, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	start := time.Now()
	tokens, err := tok.Encode(req.Text, req.BOS, req.EOS)
	if err != nil {
		h.logFailure(r, "encode", scheme, len(req.Text), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "encode complete",
		slog.String("scheme", scheme),
		slog.Int("text_len", len(req.Text)),
		slog.Int("token_count", len(tokens)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if tokens == nil {
		tokens = []int{}
	}
	writeJSON(w, http.StatusOK, encodeResponse{Tokens: tokens, Count: len(tokens), Scheme: scheme})
}

type decodeRequest struct {
	Tokens []int  `json:"tokens"`
	Scheme string `json:"scheme,omitempty"`
}

type decodeResponse struct {
	Text   string `json:"text"`
	Scheme string `json:"scheme"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	tok, scheme, err := h.resolve(req.Scheme)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	release, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	text, err := tok.Decode(req.Tokens)
	if err != nil {
		if errors.Is(err, tokenizer.ErrTokenOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logFailure(r, "decode", scheme, len(req.Tokens), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, decodeResponse{Text: text, Scheme: scheme})
}

type offsetsRequest struct {
	Text   string `json:"text"`
	Tokens []int  `json:"tokens,omitempty"`
	Scheme string `json:"scheme,omitempty"`
}

type offsetsResponse struct {
	Substrings []string `json:"substrings"`
	Offsets    []int    `json:"offsets"`
	Unit       string   `json:"unit"`
	Scheme     string   `json:"scheme"`
}

func (h *handler) handleOffsets(w http.ResponseWriter, r *http.Request) {
	var req offsetsRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	tok, scheme, err := h.resolve(req.Scheme)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	release, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	substrs, offsets, err := tok.TokenOffsets(req.Text, req.Tokens)
	if err != nil {
		if errors.Is(err, tokenizer.ErrTokenOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logFailure(r, "offsets", scheme, len(req.Text), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if substrs == nil {
		substrs = []string{}
	}
	if offsets == nil {
		offsets = []int{}
	}
	writeJSON(w, http.StatusOK, offsetsResponse{
		Substrings: substrs,
		Offsets:    offsets,
		Unit:       offsetUnits[scheme],
		Scheme:     scheme,
	})
}

// readRequest decodes a POST JSON body into dst, writing the error response
// itself when the request is unusable.
func (h *handler) readRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}

	return true
}

// resolve returns the codec for scheme, or the default codec when scheme is
// empty.
func (h *handler) resolve(scheme string) (tokenizer.Tokenizer, string, error) {
	if scheme == "" {
		scheme = h.defaultScheme
	}

	tok, ok := h.codecs[scheme]
	if !ok {
		return nil, "", fmt.Errorf("scheme %q is not configured on this server", scheme)
	}
	return tok, scheme, nil
}

// acquire claims a worker slot, honouring context cancellation and the
// request deadline while waiting. The returned release func must be called
// when ok.
func (h *handler) acquire(w http.ResponseWriter, r *http.Request) (func(), bool) {
	if h.sem == nil {
		return func() {}, true
	}

	var timeout <-chan time.Time
	if h.opts.requestTimeout > 0 {
		timer := time.NewTimer(h.opts.requestTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case h.sem <- struct{}{}:
		return func() { <-h.sem }, true
	case <-timeout:
		writeError(w, http.StatusServiceUnavailable, "timed out waiting for worker")
		return nil, false
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return nil, false
	}
}

func (h *handler) logFailure(r *http.Request, op, scheme string, inputLen int, err error) {
	h.log.ErrorContext(r.Context(), op+" failed",
		slog.String("scheme", scheme),
		slog.Int("input_len", inputLen),
		slog.String("error", err.Error()),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	codecs          map[string]tokenizer.Tokenizer
	defaultScheme   string
	shutdownTimeout time.Duration
}

// New builds a Server over pre-constructed codecs. defaultScheme must be a
// key of codecs.
func New(cfg config.Config, codecs map[string]tokenizer.Tokenizer, defaultScheme string) *Server {
	return &Server{
		cfg:             cfg,
		codecs:          codecs,
		defaultScheme:   defaultScheme,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	if _, ok := s.codecs[s.defaultScheme]; !ok {
		return fmt.Errorf("default scheme %q has no constructed codec", s.defaultScheme)
	}

	h := NewHandler(s.codecs, s.defaultScheme,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.RequestTimeout+5) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}
