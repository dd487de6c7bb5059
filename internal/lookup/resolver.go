// Package lookup resolves raw listing identifiers to stored listings.
// Callers pass whatever they have: an internal UUID, a source-local
// numeric id, or a listing URL.
package lookup

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// Resolver disambiguates raw identifiers against the listing store.
type Resolver struct {
	listings storage.ListingStore
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(listings storage.ListingStore) *Resolver {
	return &Resolver{listings: listings}
}

// Resolve finds the listing a raw identifier refers to. UUIDs resolve as
// internal listing ids, plain integers as source-local ids in the given
// namespace, and everything else as a URL. An empty source defaults to
// the vector namespace.
func (r *Resolver) Resolve(ctx context.Context, raw string, source domain.SourceType) (*domain.UnifiedListing, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, storage.ErrInvalidInput
	}
	if source == "" {
		source = domain.SourceVector
	}
	if !source.Valid() {
		return nil, storage.ErrInvalidInput
	}

	if _, err := uuid.Parse(raw); err == nil {
		return r.listings.GetByID(ctx, raw)
	}

	if sourceID, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return r.listings.GetBySourceID(ctx, source, sourceID)
	}

	return r.resolveURL(ctx, raw)
}

// resolveURL finds the listing behind a URL: first an exact match on the
// stored URL, then a match on the normalized form.
func (r *Resolver) resolveURL(ctx context.Context, raw string) (*domain.UnifiedListing, error) {
	if l, err := r.listings.GetByExternalURL(ctx, raw); err == nil {
		return l, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	normalized := NormalizeURL(raw)
	if normalized == "" {
		return nil, storage.ErrNotFound
	}

	candidates, err := r.listings.SearchByURLSubstring(ctx, normalized)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if NormalizeURL(c.ExternalURL) == normalized {
			return c, nil
		}
	}
	return nil, storage.ErrNotFound
}

// SearchByURL returns the listings whose URL contains the fragment,
// matched case-insensitively on the normalized form. Listings whose
// whole normalized URL equals the fragment sort before substring
// matches. Returns ErrNotFound when nothing matches.
func (r *Resolver) SearchByURL(ctx context.Context, fragment string) ([]*domain.UnifiedListing, error) {
	fragment = NormalizeURL(fragment)
	if fragment == "" {
		return nil, storage.ErrInvalidInput
	}

	candidates, err := r.listings.SearchByURLSubstring(ctx, fragment)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, storage.ErrNotFound
	}

	exact := make([]*domain.UnifiedListing, 0, len(candidates))
	partial := make([]*domain.UnifiedListing, 0, len(candidates))
	for _, c := range candidates {
		if NormalizeURL(c.ExternalURL) == fragment {
			exact = append(exact, c)
		} else {
			partial = append(partial, c)
		}
	}
	return append(exact, partial...), nil
}

// NormalizeURL strips the scheme, a leading www., and any trailing
// slashes, and lowercases the rest. Two URLs naming the same listing
// normalize to the same string.
func NormalizeURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(s, scheme) {
			s = s[len(scheme):]
			break
		}
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimRight(s, "/")
}
