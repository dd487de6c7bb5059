package idhash

import (
	"fmt"

	"github.com/google/uuid"

	"estate-valuation/internal/domain"
)

// listingNamespace seeds deterministic listing UUIDs. Fixed forever:
// changing it would re-key every listing.
var listingNamespace = uuid.MustParse("9b2c3f64-1d05-4a8e-b7a2-5c1e9f0d4a11")

// ComputeListingID computes a deterministic listing id from the source
// namespace and source-local id. The same source record always maps to
// the same UUID, so repeated imports are idempotent.
func ComputeListingID(source domain.SourceType, sourceID int64) string {
	data := fmt.Sprintf("%s|%d", source, sourceID)
	return uuid.NewSHA1(listingNamespace, []byte(data)).String()
}
