// Package api exposes the valuation and listing lookup HTTP surface.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/lookup"
	"estate-valuation/internal/market"
	"estate-valuation/internal/storage"
	"estate-valuation/internal/valuation"
)

// Handler serves the public valuation endpoints.
type Handler struct {
	resolver   *lookup.Resolver
	valuations *valuation.Service
	markets    *market.Reporter // nil when price observations are disabled
	logger     *log.Logger
}

// NewHandler creates a new Handler.
func NewHandler(resolver *lookup.Resolver, valuations *valuation.Service, markets *market.Reporter, logger *log.Logger) *Handler {
	return &Handler{
		resolver:   resolver,
		valuations: valuations,
		markets:    markets,
		logger:     logger,
	}
}

// Register attaches the handler's routes to a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /valuation/{id}/fair-price", h.handleFairPrice)
	mux.HandleFunc("GET /listings/search", h.handleListingSearch)
	mux.HandleFunc("GET /complexes/{id}/market", h.handleComplexMarket)
}

// handleFairPrice resolves the subject from the raw path id and returns its
// valuation report.
func (h *Handler) handleFairPrice(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	source := domain.SourceType(r.URL.Query().Get("source"))

	listing, err := h.resolver.Resolve(r.Context(), raw, source)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.valuations.GetFairPrice(r.Context(), listing.ListingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// listingJSON is the public shape of a listing in search responses.
type listingJSON struct {
	ListingID   string   `json:"listing_id"`
	SourceType  string   `json:"source_type"`
	SourceID    int64    `json:"source_id"`
	ExternalURL string   `json:"external_url"`
	Platform    string   `json:"platform"`
	DealType    string   `json:"deal_type"`
	City        string   `json:"city"`
	ComplexID   *string  `json:"complex_id,omitempty"`
	StreetID    *string  `json:"street_id,omitempty"`
	PriceUSD    *float64 `json:"price_usd,omitempty"`
	AreaM2      *float64 `json:"area_m2,omitempty"`
}

func toListingJSON(l *domain.UnifiedListing) listingJSON {
	return listingJSON{
		ListingID:   l.ListingID,
		SourceType:  string(l.SourceType),
		SourceID:    l.SourceID,
		ExternalURL: l.ExternalURL,
		Platform:    string(l.Platform),
		DealType:    string(l.DealType),
		City:        l.City,
		ComplexID:   l.ComplexID,
		StreetID:    l.StreetID,
		PriceUSD:    l.PriceUSD,
		AreaM2:      l.AreaM2,
	}
}

// handleListingSearch finds listings by external URL fragment or by the
// (source_type, source_id) pair.
func (h *Handler) handleListingSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if fragment := q.Get("external_url"); fragment != "" {
		found, err := h.resolver.SearchByURL(r.Context(), fragment)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		results := make([]listingJSON, 0, len(found))
		for _, l := range found {
			results = append(results, toListingJSON(l))
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	rawSourceID := q.Get("source_id")
	if rawSourceID == "" {
		writeErrorMessage(w, http.StatusBadRequest, "external_url or source_id is required")
		return
	}
	if _, err := strconv.ParseInt(rawSourceID, 10, 64); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "source_id must be numeric")
		return
	}

	listing, err := h.resolver.Resolve(r.Context(), rawSourceID, domain.SourceType(q.Get("source_type")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": []listingJSON{toListingJSON(listing)}})
}

// handleComplexMarket returns the aggregated price observation summary for
// one complex over a trailing window of days.
func (h *Handler) handleComplexMarket(w http.ResponseWriter, r *http.Request) {
	if h.markets == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "price observations are not enabled")
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = parsed
	}

	summary, err := h.markets.Summary(r.Context(), r.PathValue("id"), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// writeError maps domain and storage errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, market.ErrNoObservations):
		writeErrorMessage(w, http.StatusNotFound, "no price observations for complex")
	case errors.Is(err, storage.ErrInvalidInput):
		writeErrorMessage(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, valuation.ErrMalformedSubject):
		writeErrorMessage(w, http.StatusUnprocessableEntity, "listing has no usable price or area")
	default:
		h.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
