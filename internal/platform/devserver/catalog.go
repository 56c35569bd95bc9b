package devserver

import (
	"github.com/synthfhir/synthfhir/internal/platform/hipaa"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

// DefaultCatalog returns the resource configuration served on /api/config.
// Observation is described but disabled, so a request that names it fails
// on its own while the other resources still generate.
func DefaultCatalog() *contract.AppConfig {
	resources := map[contract.ResourceKind]contract.ResourceConfig{
		contract.ResourcePatient: {
			Enabled:      true,
			DisplayName:  "Patient",
			Description:  "Demographics and identifiers",
			DDLFile:      "ddl/patient.sql",
			KnowledgeDir: "knowledge/patient",
			TemplateFile: "templates/patient.txt",
		},
		contract.ResourceCoverage: {
			Enabled:        true,
			DisplayName:    "Coverage",
			Description:    "Insurance coverage linked to a patient",
			DDLFile:        "ddl/coverage.sql",
			KnowledgeDir:   "knowledge/coverage",
			TemplateFile:   "templates/coverage.txt",
			ExcludeColumns: []string{"created_at"},
			Relationships:  []contract.Relationship{{Column: "patient_id", References: "patient.id"}},
		},
		contract.ResourceClaim: {
			Enabled:        true,
			DisplayName:    "Claim",
			Description:    "Billing claims against a coverage",
			DDLFile:        "ddl/claim.sql",
			KnowledgeDir:   "knowledge/claim",
			TemplateFile:   "templates/claim.txt",
			ExcludeColumns: []string{"created_at"},
			Relationships: []contract.Relationship{
				{Column: "patient_id", References: "patient.id"},
				{Column: "coverage_id", References: "coverage.id"},
			},
		},
		contract.ResourceObservation: {
			Enabled:       false,
			DisplayName:   "Observation",
			Description:   "Vital signs and lab results",
			DDLFile:       "ddl/observation.sql",
			KnowledgeDir:  "knowledge/observation",
			TemplateFile:  "templates/observation.txt",
			Relationships: []contract.Relationship{{Column: "patient_id", References: "patient.id"}},
		},
	}

	cfg := &contract.AppConfig{
		Resources:    make(map[contract.ResourceKind]contract.ResourceConfig, len(resources)),
		DisplayNames: make(map[contract.ResourceKind]string, len(resources)),
		QuickInputs: contract.QuickInputOptions{
			Gender:         []string{contract.AnyFilter, "Male", "Female", "Other"},
			States:         []string{contract.AnyFilter, "CA", "FL", "IL", "NY", "TX", "WA"},
			InsuranceTypes: []string{contract.AnyFilter, "Commercial", "Medicaid", "Medicare", "Self-Pay"},
			AgeRange:       contract.AgeRange{Min: contract.MinAge, Max: contract.MaxAge, DefaultMin: 18, DefaultMax: 65},
		},
		LLMSettings: contract.LLMSettings{
			DefaultTemperature: 0.7,
			DefaultMaxTokens:   4000,
			TimeoutSeconds:     120,
		},
	}
	for _, kind := range contract.AllResourceKinds() {
		rc := resources[kind]
		rc.MD5Fields = hipaa.FieldsFor(kind)
		if rc.MD5Fields == nil {
			rc.MD5Fields = []string{}
		}
		if rc.ExcludeColumns == nil {
			rc.ExcludeColumns = []string{}
		}
		if rc.Relationships == nil {
			rc.Relationships = []contract.Relationship{}
		}
		cfg.Resources[kind] = rc
		cfg.DisplayNames[kind] = rc.DisplayName
		if rc.Enabled {
			cfg.EnabledResources = append(cfg.EnabledResources, kind)
		}
	}
	return cfg
}
