package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/leofalp/toonboard/core/recovery"
	"github.com/leofalp/toonboard/providers/observability"
	"github.com/leofalp/toonboard/storyboard"
	"github.com/leofalp/toonboard/storyboard/render"
)

type errorResponse struct {
	Error string `json:"error"`
}

type generateResponse struct {
	Success     bool             `json:"success"`
	Storyboard  *recovery.Object `json:"storyboard"`
	TextContent string           `json:"text_content"`
	Filename    string           `json:"filename"`
}

type docxRequest struct {
	Storyboard json.RawMessage `json:"storyboard"`
}

type healthResponse struct {
	Status    string `json:"status"`
	GPTClient bool   `json:"gpt_client"`
	Timestamp string `json:"timestamp"`
}

// generated is what concurrent identical requests share.
type generated struct {
	record   *recovery.Object
	text     string
	filename string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var in storyboard.Input
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, statusForBodyError(err), err.Error())
		return
	}

	// Reject bad input before joining a shared call.
	if err := in.Validate(s.generator.Source != nil); err != nil {
		s.writeGenerateError(w, r, err)
		return
	}

	// The shared call must not be canceled by whichever caller started it.
	ctx := context.WithoutCancel(r.Context())
	v, err, shared := s.flight.Do(in.Key(), func() (any, error) {
		return s.generate(ctx, in)
	})
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}
	if shared {
		s.logger.DebugContext(r.Context(), "generate request joined an in-flight call",
			slog.String(observability.AttrRequestID, r.Header.Get(RequestIDHeader)),
		)
	}

	res := v.(*generated)
	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		Storyboard:  res.record,
		TextContent: res.text,
		Filename:    res.filename,
	})
}

func (s *Server) generate(ctx context.Context, in storyboard.Input) (*generated, error) {
	result, err := s.generator.Generate(ctx, in)
	if err != nil {
		return nil, err
	}

	data, err := storyboard.MarshalIndent(result.Record)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	name, err := s.results.save(s.clock(), data)
	if err != nil {
		// The result is still downloadable from memory.
		s.logger.WarnContext(ctx, "result not persisted", slog.String("file", name), slog.Any("error", err))
	}

	return &generated{
		record:   result.Record,
		text:     render.Text(result.Storyboard),
		filename: name,
	}, nil
}

// writeGenerateError maps generation errors to a status and a message that
// never includes model output or internals.
func (s *Server) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		inputErr *storyboard.InputError
		genErr   *storyboard.GenerationError
	)
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.As(err, &inputErr):
		status, msg = http.StatusBadRequest, inputErr.Message
	case errors.As(err, &genErr):
		status, msg = http.StatusBadGateway, genErr.UserMessage()
	case errors.Is(err, storyboard.ErrUpstream):
		status, msg = http.StatusBadGateway, "The model service could not be reached. Please try again."
	case errors.Is(err, storyboard.ErrPlotSource):
		status, msg = http.StatusBadGateway, "The plot URL could not be fetched."
	case errors.Is(err, storyboard.ErrNoClient):
		msg = "The model client is not configured. Check the API key."
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "generate failed",
		slog.String(observability.AttrRequestID, r.Header.Get(RequestIDHeader)),
		slog.Int(observability.AttrHTTPStatusCode, status),
		slog.Any("error", err),
	)
	writeError(w, status, msg)
}

func (s *Server) handleDownloadDOCX(w http.ResponseWriter, r *http.Request) {
	var req docxRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, statusForBodyError(err), err.Error())
		return
	}
	raw := bytes.TrimSpace(req.Storyboard)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		writeError(w, http.StatusBadRequest, "storyboard data is missing")
		return
	}
	sb, err := storyboard.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "storyboard data is not a JSON object")
		return
	}

	data, err := render.DOCXBytes(sb)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "docx render failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not create the DOCX file")
		return
	}
	filename := "storyboard_" + s.clock().Format(fileTimeLayout) + ".docx"
	writeAttachment(w, render.DOCXContentType, filename, data)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	data, err := s.results.load(name)
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "download failed", slog.String("file", name), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not read the file")
		return
	}
	writeAttachment(w, "application/json", name, data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		GPTClient: s.generator.Ready(),
		Timestamp: s.clock().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "page not found")
}

var errEmptyBody = errors.New("request body is empty")

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return maxErr
		case errors.Is(err, io.EOF):
			return errEmptyBody
		default:
			return errors.New("request body is not valid JSON")
		}
	}
	return nil
}

func statusForBodyError(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := storyboard.MarshalIndent(payload)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
