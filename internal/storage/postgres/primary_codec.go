package postgres

import (
	"encoding/json"
	"fmt"

	"estate-valuation/internal/domain"
)

// marshalPrimary serializes platform payloads for the primary_data JSONB
// column. A nil payload stores SQL NULL.
func marshalPrimary(p domain.PrimaryData) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal primary data: %w", err)
	}
	return data, nil
}

// unmarshalPrimary restores the platform payload from the stored column.
// The platform column disambiguates the concrete shape. Unknown platforms
// and empty payloads decode to nil rather than failing the row.
func unmarshalPrimary(platform domain.Platform, data []byte) (domain.PrimaryData, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch platform {
	case domain.PlatformOlx:
		var p domain.OlxPrimary
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal olx primary: %w", err)
		}
		return p, nil
	case domain.PlatformRieltor:
		var p domain.RieltorPrimary
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal rieltor primary: %w", err)
		}
		return p, nil
	case domain.PlatformDomRia:
		var p domain.DomRiaPrimary
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal dom_ria primary: %w", err)
		}
		return p, nil
	case domain.PlatformFlatfy:
		var p domain.FlatfyPrimary
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal flatfy primary: %w", err)
		}
		return p, nil
	case domain.PlatformRealtUA:
		var p domain.RealtUAPrimary
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal realt_ua primary: %w", err)
		}
		return p, nil
	default:
		return nil, nil
	}
}
