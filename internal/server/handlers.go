package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/graph"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/render"
	"github.com/vanshika/wealthnet/internal/repository"
	"github.com/vanshika/wealthnet/internal/service"
)

const maxBodyBytes = 1 << 20

var errMalformedQuery = errors.New("malformed query")

// NetworkAPI is the service surface the handlers depend on.
type NetworkAPI interface {
	FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error)
	LayoutNetwork(ctx context.Context, q domain.NetworkQuery, algorithm layout.Algorithm, width, height float64) (domain.Network, error)
	FindIntroPath(ctx context.Context, q domain.IntroPathQuery) (domain.IntroPathResult, error)
	UpsertNodeInput(ctx context.Context, in service.NodeInput) (domain.Node, error)
	UpsertEdgeInput(ctx context.Context, in service.EdgeInput) (domain.Edge, error)
}

// LayoutDefaults apply when a layout request omits algorithm or canvas size.
type LayoutDefaults struct {
	Algorithm layout.Algorithm
	Width     float64
	Height    float64
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	service  NetworkAPI
	defaults LayoutDefaults
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc NetworkAPI, defaults LayoutDefaults) *APIHandlers {
	if defaults.Algorithm == "" {
		defaults.Algorithm = layout.ForceDirected
	}
	if defaults.Width <= 0 {
		defaults.Width = 1200
	}
	if defaults.Height <= 0 {
		defaults.Height = 800
	}
	return &APIHandlers{
		logger:   logger,
		service:  svc,
		defaults: defaults,
	}
}

// Routes registers the API endpoints on r.
func (h *APIHandlers) Routes(r chi.Router) {
	r.Get("/network", h.getNetwork)
	r.Get("/network/layout", h.getLayout)
	r.Get("/network/svg", h.getSVG)
	r.Get("/network/intro-path", h.getIntroPath)
	r.Post("/nodes", h.upsertNode)
	r.Post("/edges", h.upsertEdge)
}

type layoutResponse struct {
	Algorithm layout.Algorithm    `json:"algorithm"`
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Nodes     []domain.Node       `json:"nodes"`
	Edges     []domain.Edge       `json:"edges"`
	Stats     domain.NetworkStats `json:"stats"`
}

func (h *APIHandlers) getNetwork(w http.ResponseWriter, r *http.Request) {
	q, err := parseNetworkQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	network, err := h.service.FetchNetwork(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, network)
}

func (h *APIHandlers) getLayout(w http.ResponseWriter, r *http.Request) {
	q, algorithm, width, height, err := h.parseLayoutQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	network, err := h.service.LayoutNetwork(r.Context(), q, algorithm, width, height)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, layoutResponse{
		Algorithm: algorithm,
		Width:     width,
		Height:    height,
		Nodes:     network.Nodes,
		Edges:     network.Edges,
		Stats:     network.Stats,
	})
}

func (h *APIHandlers) getSVG(w http.ResponseWriter, r *http.Request) {
	q, algorithm, width, height, err := h.parseLayoutQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	network, err := h.service.LayoutNetwork(r.Context(), q, algorithm, width, height)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = render.SVG(&buf, network, render.Options{
		Width:     int(math.Round(width)),
		Height:    int(math.Round(height)),
		Title:     q.OwnerID + " network",
		Highlight: splitCSV(r.URL.Query().Get("highlight")),
		Labels:    true,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *APIHandlers) getIntroPath(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := domain.IntroPathQuery{
		OwnerID:        values.Get("ownerId"),
		TargetPersonID: values.Get("targetPersonId"),
	}
	if raw := values.Get("maxHops"); raw != "" {
		hops, err := strconv.Atoi(raw)
		if err != nil {
			h.writeServiceError(w, r, fmt.Errorf("%w: maxHops %q is not an integer", errMalformedQuery, raw))
			return
		}
		q.MaxHops = hops
	}

	result, err := h.service.FindIntroPath(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *APIHandlers) upsertNode(w http.ResponseWriter, r *http.Request) {
	var in service.NodeInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	node, err := h.service.UpsertNodeInput(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, node)
}

func (h *APIHandlers) upsertEdge(w http.ResponseWriter, r *http.Request) {
	var in service.EdgeInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	edge, err := h.service.UpsertEdgeInput(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, edge)
}

func parseNetworkQuery(r *http.Request) (domain.NetworkQuery, error) {
	values := r.URL.Query()
	q := domain.NetworkQuery{OwnerID: values.Get("ownerId")}
	for _, t := range splitCSV(values.Get("nodeTypes")) {
		q.Filters.NodeTypes = append(q.Filters.NodeTypes, domain.NodeType(t))
	}
	q.Filters.Sectors = splitCSV(values.Get("sectors"))
	if raw := values.Get("onlyClients"); raw != "" {
		only, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.NetworkQuery{}, fmt.Errorf("%w: onlyClients %q is not a boolean", errMalformedQuery, raw)
		}
		q.Filters.OnlyClients = only
	}
	return q, nil
}

func (h *APIHandlers) parseLayoutQuery(r *http.Request) (domain.NetworkQuery, layout.Algorithm, float64, float64, error) {
	q, err := parseNetworkQuery(r)
	if err != nil {
		return q, "", 0, 0, err
	}
	values := r.URL.Query()

	algorithm := h.defaults.Algorithm
	if raw := values.Get("algorithm"); raw != "" {
		if algorithm, err = layout.ParseAlgorithm(raw); err != nil {
			return q, "", 0, 0, fmt.Errorf("%w: %w", errMalformedQuery, err)
		}
	}
	width, err := parseDimension(values.Get("width"), h.defaults.Width)
	if err != nil {
		return q, "", 0, 0, err
	}
	height, err := parseDimension(values.Get("height"), h.defaults.Height)
	if err != nil {
		return q, "", 0, 0, err
	}
	return q, algorithm, width, height, nil
}

func parseDimension(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: canvas dimension %q must be a positive number", errMalformedQuery, raw)
	}
	return v, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", errMalformedQuery)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errMalformedQuery, err)
	}
	return nil
}

// writeServiceError maps service errors onto status codes.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrPathNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"status": "not_found"})
		return
	case errors.Is(err, domain.ErrInvalidPathRequest):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errMalformedQuery),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, render.ErrInvalidSize):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, graph.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "graph backend unavailable")
	case domain.IsRetryable(err):
		writeError(w, http.StatusBadGateway, "network data fetch failed")
	case errors.Is(err, repository.ErrMissingEndpoint),
		errors.Is(err, domain.ErrInvalidNetwork):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled):
		h.logger.Debug("request cancelled", "path", r.URL.Path)
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	h.logger.Warn("request failed", "path", r.URL.Path, "error", err)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
