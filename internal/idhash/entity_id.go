package idhash

import (
	"fmt"

	"github.com/google/uuid"
)

// entityNamespace seeds deterministic street and complex UUIDs.
var entityNamespace = uuid.MustParse("e4d1a8c2-7b30-4f6d-9c55-0a2b8e3f7d60")

// ComputeEntityID computes a deterministic id for a reference entity
// (street or residential complex) from its kind, city, and canonical
// name. Reference data loads stay idempotent across reruns.
func ComputeEntityID(kind, city, canonicalName string) string {
	data := fmt.Sprintf("%s|%s|%s", kind, city, canonicalName)
	return uuid.NewSHA1(entityNamespace, []byte(data)).String()
}
