package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
)

// MaxPageSize caps the count a client may request.
const MaxPageSize = 1000

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps browse errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrNotBrowsable):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// ProvidersHandler serves the provider list and one-page browses.
type ProvidersHandler struct {
	catalog  Catalog
	pageSize int
	timeout  time.Duration
}

// NewProvidersHandler creates a handler. pageSize is the count used when a request omits one.
func NewProvidersHandler(catalog Catalog, pageSize int, timeout time.Duration) *ProvidersHandler {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = 100
	}
	return &ProvidersHandler{catalog: catalog, pageSize: pageSize, timeout: timeout}
}

// Routes implements [Handler].
func (h *ProvidersHandler) Routes() []string {
	return []string{"GET /providers", "GET /providers/{name}/browse"}
}

// ServeHTTP implements [http.Handler].
func (h *ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if name := r.PathValue("name"); name != "" {
		h.browse(w, r, name)
		return
	}
	h.list(w)
}

func (h *ProvidersHandler) list(w http.ResponseWriter) {
	providers := h.catalog.List()
	infos := make([]services.ProviderInfo, len(providers))
	for i, p := range providers {
		infos[i] = services.NewProviderInfo(p)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *ProvidersHandler) browse(w http.ResponseWriter, r *http.Request, name string) {
	backend, ok := h.catalog.Backend(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", shared.ErrProviderNotFound, name))
		return
	}
	if !backend.Provider().Capabilities.Has(models.CanBrowse) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", shared.ErrNotBrowsable, name))
		return
	}

	page, err := h.page(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var container *models.Container
	if id := r.URL.Query().Get("container"); id != "" {
		c := models.NewContainer(name, id, "")
		container = &c
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	nodes, more, err := services.Collect(ctx, backend, container, page)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := services.BrowseResponse{Count: len(nodes), More: more, Nodes: make([]services.WireNode, 0, len(nodes))}
	for _, n := range nodes {
		wn, err := services.ToWire(n)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.Nodes = append(resp.Nodes, wn)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProvidersHandler) page(r *http.Request) (models.Page, error) {
	page := models.Page{Count: h.pageSize}
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fmt.Errorf("%w: offset %q", shared.ErrInvalidArgument, v)
		}
		page.Offset = n
	}
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxPageSize {
			return page, fmt.Errorf("%w: count %q", shared.ErrInvalidArgument, v)
		}
		page.Count = n
	}
	return page, nil
}

type health struct {
	Status    string `json:"status"`
	Providers int    `json:"providers"`
}

// HealthHandler reports liveness and the number of registered providers.
func HealthHandler(catalog Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, health{Status: "ok", Providers: len(catalog.List())})
	})
}
