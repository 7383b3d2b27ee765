package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_listing/internal/adapters/observability"
	"hotel_listing/internal/domain"
)

// Lister computes a hotel listing; app.ListingService implements it.
type Lister interface {
	List(ctx context.Context, f domain.FilterArgs) ([]domain.Hotel, error)
}

type Handlers struct{ L Lister }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.With(ServerTiming).Get("/v1/hotels", h.listHotels)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	f, err := domain.ParseFilter(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	hotels, err := h.L.List(r.Context(), f)
	if st := observability.ServerTimingFrom(r.Context()); st != nil {
		if v := st.Header(); v != "" {
			w.Header().Set("Server-Timing", v)
		}
	}
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("listing failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "listing could not be computed")
		return
	}

	etag, body, err := calcETagAndBody(hotels)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal listing")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "listing could not be encoded")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listing body")
	}
}
