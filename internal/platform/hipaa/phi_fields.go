// Package hipaa lists the generated columns that carry direct identifiers
// and pseudonymises them with MD5 before data leaves the generator.
package hipaa

import "github.com/synthfhir/synthfhir/pkg/contract"

// PHIFieldConfig maps a resource kind to the generated columns that hold
// HIPAA Safe Harbor identifiers (45 CFR 164.514(b)(2)).
type PHIFieldConfig struct {
	Resource contract.ResourceKind
	// Fields are flat column names as produced by the resource DDL.
	Fields []string
}

// DefaultPHIFields returns the identifier columns hashed for each resource
// kind. Observation rows only reference a patient by id and carry no direct
// identifiers of their own.
func DefaultPHIFields() []PHIFieldConfig {
	return []PHIFieldConfig{
		{
			Resource: contract.ResourcePatient,
			Fields: []string{
				"ssn",
				"medical_record_number",
				"phone",
				"email",
				"address_line",
			},
		},
		{
			Resource: contract.ResourceCoverage,
			Fields: []string{
				"subscriber_id",
				"member_id",
			},
		},
		{
			Resource: contract.ResourceClaim,
			Fields: []string{
				"patient_account_number",
			},
		},
	}
}

// FieldsFor returns the PHI columns of kind, or nil when it has none.
func FieldsFor(kind contract.ResourceKind) []string {
	for _, c := range DefaultPHIFields() {
		if c.Resource == kind {
			out := make([]string, len(c.Fields))
			copy(out, c.Fields)
			return out
		}
	}
	return nil
}
