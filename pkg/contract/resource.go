// Package contract defines the payload shapes exchanged with the synthfhir
// generation backend and the closed vocabulary of FHIR resource kinds.
package contract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownResource is returned when a string does not name a supported
// resource kind.
var ErrUnknownResource = errors.New("unknown resource kind")

// ResourceKind is one of the FHIR resources the backend can generate.
type ResourceKind string

const (
	ResourcePatient     ResourceKind = "patient"
	ResourceCoverage    ResourceKind = "coverage"
	ResourceClaim       ResourceKind = "claim"
	ResourceObservation ResourceKind = "observation"
)

// IndexAllResource is the resource name the backend reports for a reindex of
// every resource. It is not a ResourceKind.
const IndexAllResource = "all"

var resourceKinds = []ResourceKind{
	ResourcePatient,
	ResourceCoverage,
	ResourceClaim,
	ResourceObservation,
}

var defaultDisplayNames = map[ResourceKind]string{
	ResourcePatient:     "Patient",
	ResourceCoverage:    "Coverage",
	ResourceClaim:       "Claim",
	ResourceObservation: "Observation",
}

// AllResourceKinds returns every resource kind in canonical order.
func AllResourceKinds() []ResourceKind {
	out := make([]ResourceKind, len(resourceKinds))
	copy(out, resourceKinds)
	return out
}

// ParseResourceKind converts s (case-insensitive) into a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	k := ResourceKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
	}
	return k, nil
}

// Valid reports whether k belongs to the closed set of resource kinds.
func (k ResourceKind) Valid() bool {
	_, ok := defaultDisplayNames[k]
	return ok
}

// DisplayName returns the built-in display label. Prefer
// AppConfig.DisplayNameFor when a backend configuration is available.
func (k ResourceKind) DisplayName() string {
	if name, ok := defaultDisplayNames[k]; ok {
		return name
	}
	return string(k)
}

func (k ResourceKind) String() string { return string(k) }

// Order returns the canonical position of k, or len(AllResourceKinds()) for
// an unknown kind so that unknown keys sort last.
func (k ResourceKind) Order() int {
	for i, rk := range resourceKinds {
		if rk == k {
			return i
		}
	}
	return len(resourceKinds)
}

// ---------------------------------------------------------------------------
// Upload target
// ---------------------------------------------------------------------------

const globalTarget = "global"

// UploadTarget selects where an uploaded document is indexed: either one
// concrete resource kind or every resource (the "global" sentinel).
type UploadTarget struct {
	kind ResourceKind
}

// GlobalTarget returns the sentinel target meaning "apply to all resources".
func GlobalTarget() UploadTarget { return UploadTarget{} }

// TargetFor returns a target bound to a single resource kind.
func TargetFor(kind ResourceKind) UploadTarget { return UploadTarget{kind: kind} }

// ParseUploadTarget accepts "global" or any resource kind.
func ParseUploadTarget(s string) (UploadTarget, error) {
	if strings.EqualFold(strings.TrimSpace(s), globalTarget) {
		return GlobalTarget(), nil
	}
	k, err := ParseResourceKind(s)
	if err != nil {
		return UploadTarget{}, err
	}
	return TargetFor(k), nil
}

// IsGlobal reports whether t is the "all resources" sentinel.
func (t UploadTarget) IsGlobal() bool { return t.kind == "" }

// Resource returns the concrete kind and false for the global sentinel.
func (t UploadTarget) Resource() (ResourceKind, bool) {
	return t.kind, !t.IsGlobal()
}

// String returns the wire value sent as target_resource.
func (t UploadTarget) String() string {
	if t.IsGlobal() {
		return globalTarget
	}
	return string(t.kind)
}
