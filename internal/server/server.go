package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/esop-forecast/internal/config"
	"github.com/iwvelando/esop-forecast/internal/forecast"
	"github.com/iwvelando/esop-forecast/pkg/constants"
	"github.com/iwvelando/esop-forecast/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger      *zap.Logger
	base        config.Configuration
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the dashboard and forecast API.
// The grant constants of base apply to every request; requests only vary the selection.
func NewHandler(logger *zap.Logger, base config.Configuration, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, base: base, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Forecast API endpoint, inputs from the query string or a JSON body
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// PDF rendering of the same forecast
	mux.HandleFunc("/api/report.pdf", h.handleReport)

	// Grant constants and widget limits for the dashboard
	mux.HandleFunc("/api/config", h.handleConfig)

	// Config serialization endpoint for downloads
	mux.HandleFunc("/api/config/export", h.handleConfigExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (dashboard)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type forecastResponse struct {
	output.Report
	CSV      string   `json:"csv"`
	Warnings []string `json:"warnings,omitempty"`
	Duration string   `json:"duration"`
}

// selectionRequest mirrors config.Selection with every field optional so
// unspecified inputs fall back to the configured selection.
type selectionRequest struct {
	Mode     *string  `json:"mode"`
	Percent  *float64 `json:"percent"`
	Count    *float64 `json:"count"`
	Multiple *int     `json:"multiple"`
}

func (s selectionRequest) apply(sel config.Selection) config.Selection {
	if s.Mode != nil {
		sel.Mode = *s.Mode
	}
	if s.Percent != nil {
		sel.Percent = *s.Percent
	}
	if s.Count != nil {
		sel.Count = *s.Count
	}
	if s.Multiple != nil {
		sel.Multiple = *s.Multiple
	}
	return sel
}

type configResponse struct {
	Grant       config.Grant     `json:"grant"`
	Selection   config.Selection `json:"selection"`
	PercentStep int              `json:"percentStep"`
	CountStep   int              `json:"countStep"`
	Version     string           `json:"version"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	conf, err := h.requestConfiguration(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	result, err := forecast.GetForecast(h.logger, conf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	response := forecastResponse{
		Report:   output.NewReport(result),
		CSV:      output.CsvString(result),
		Warnings: conf.ValidateConfiguration(),
		Duration: elapsed.String(),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.Float64("options", result.Options),
		zap.Int("multiple", result.Selected),
		zap.Int("rows", len(response.Rows)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	conf, err := h.requestConfiguration(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	result, err := forecast.GetForecast(h.logger, conf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	data, err := output.PDFReport(result)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="esop-forecast-%dB.pdf"`, result.Selected))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write PDF report",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, configResponse{
		Grant:       h.base.Grant,
		Selection:   h.base.Selection,
		PercentStep: constants.PercentStep,
		CountStep:   constants.CountStep,
		Version:     h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	conf, err := h.requestConfiguration(w, r)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	if err := conf.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	yamlBytes, err := marshalOrderedConfigYAML(conf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// errRequestTooLarge marks bodies over the configured limit.
var errRequestTooLarge = errors.New("request body too large")

// requestConfiguration overlays the request's selection on the base configuration.
func (h *handler) requestConfiguration(w http.ResponseWriter, r *http.Request) (config.Configuration, error) {
	conf := h.base

	req, err := selectionFromQuery(r.URL.Query())
	if err != nil {
		return conf, err
	}
	conf.Selection = req.apply(conf.Selection)

	if r.Method != http.MethodPost || r.Body == nil {
		return conf, nil
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var payload selectionRequest
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return conf, nil
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return conf, fmt.Errorf("%w: limit is %d bytes", errRequestTooLarge, h.maxBodySize)
		}
		return conf, fmt.Errorf("failed to decode selection: %v", err)
	}
	conf.Selection = payload.apply(conf.Selection)
	return conf, nil
}

func selectionFromQuery(q url.Values) (selectionRequest, error) {
	var req selectionRequest
	if v := strings.TrimSpace(q.Get("mode")); v != "" {
		req.Mode = &v
	}
	if v := strings.TrimSpace(q.Get("percent")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid percent %q: %v", v, err)
		}
		req.Percent = &f
	}
	if v := strings.TrimSpace(q.Get("count")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid count %q: %v", v, err)
		}
		req.Count = &f
	}
	if v := strings.TrimSpace(q.Get("multiple")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("invalid multiple %q: %v", v, err)
		}
		req.Multiple = &n
	}
	return req, nil
}

func statusFor(err error) int {
	if errors.Is(err, errRequestTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func marshalOrderedConfigYAML(conf config.Configuration) ([]byte, error) {
	ordered := orderedConfig{items: []orderedItem{
		{key: "grant", value: conf.Grant},
		{key: "selection", value: conf.Selection},
	}}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("forecast request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
