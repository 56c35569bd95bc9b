package generation

import (
	"strings"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

const (
	DefaultRecordCount = 5
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
	DefaultAgeMin      = 18
	DefaultAgeMax      = 65
)

// Form is the user input of the generation screen.
type Form struct {
	Prompt        string
	Resources     []contract.ResourceKind
	RecordCount   int
	AgeMin        int
	AgeMax        int
	Gender        string
	State         string
	InsuranceType string
	Temperature   float64
	MaxTokens     int
}

// DefaultForm returns the initial form for cfg. cfg may be nil while the
// configuration is still loading.
func DefaultForm(cfg *contract.AppConfig) Form {
	f := Form{
		RecordCount:   DefaultRecordCount,
		AgeMin:        DefaultAgeMin,
		AgeMax:        DefaultAgeMax,
		Gender:        contract.AnyFilter,
		State:         contract.AnyFilter,
		InsuranceType: contract.AnyFilter,
		Temperature:   DefaultTemperature,
		MaxTokens:     DefaultMaxTokens,
	}
	if cfg == nil {
		return f
	}

	if len(cfg.EnabledResources) > 0 {
		f.Resources = []contract.ResourceKind{cfg.EnabledResources[0]}
	}
	if cfg.LLMSettings.DefaultTemperature > 0 {
		f.Temperature = cfg.LLMSettings.DefaultTemperature
	}
	if cfg.LLMSettings.DefaultMaxTokens > 0 {
		f.MaxTokens = cfg.LLMSettings.DefaultMaxTokens
	}
	if ar := cfg.QuickInputs.AgeRange; ar.DefaultMin != 0 || ar.DefaultMax != 0 {
		f.AgeMin, f.AgeMax = ar.DefaultMin, ar.DefaultMax
	}
	return f
}

// Normalize clamps numeric fields to the input bounds and maps empty filter
// values to "Any".
func (f *Form) Normalize() {
	f.RecordCount = contract.ClampRecordCount(f.RecordCount)
	f.Temperature = contract.ClampTemperature(f.Temperature)
	f.MaxTokens = contract.ClampMaxTokens(f.MaxTokens)
	f.AgeMin = clampAge(f.AgeMin)
	f.AgeMax = clampAge(f.AgeMax)
	for _, s := range []*string{&f.Gender, &f.State, &f.InsuranceType} {
		if strings.TrimSpace(*s) == "" {
			*s = contract.AnyFilter
		}
	}
}

func clampAge(n int) int {
	if n < contract.MinAge {
		return contract.MinAge
	}
	if n > contract.MaxAge {
		return contract.MaxAge
	}
	return n
}

// BuildRequest assembles the wire request. The age pair is sent only when it
// differs from the full 0 to 120 range; each text filter only when it is not
// "Any"; quick_inputs is omitted when nothing is set. Temperature and max
// tokens are always sent.
func BuildRequest(f Form) contract.GenerationRequest {
	q := &contract.QuickInputs{}
	if f.AgeMin != contract.MinAge || f.AgeMax != contract.MaxAge {
		ageMin, ageMax := f.AgeMin, f.AgeMax
		q.AgeMin = &ageMin
		q.AgeMax = &ageMax
	}
	if f.Gender != contract.AnyFilter {
		q.Gender = f.Gender
	}
	if f.State != contract.AnyFilter {
		q.State = f.State
	}
	if f.InsuranceType != contract.AnyFilter {
		q.InsuranceType = f.InsuranceType
	}
	if q.Empty() {
		q = nil
	}

	temperature, maxTokens := f.Temperature, f.MaxTokens
	resources := make([]contract.ResourceKind, len(f.Resources))
	copy(resources, f.Resources)

	return contract.GenerationRequest{
		UserPrompt:  f.Prompt,
		Resources:   resources,
		RecordCount: f.RecordCount,
		QuickInputs: q,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
}

// ValidationError is a client-side rejection of the form. No request is
// sent when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate requires a non-blank prompt and at least one resource.
func Validate(f Form) error {
	if strings.TrimSpace(f.Prompt) == "" || len(f.Resources) == 0 {
		return &ValidationError{Message: "Please enter a prompt and select at least one resource"}
	}
	for _, k := range f.Resources {
		if !k.Valid() {
			return &ValidationError{Message: "Unknown resource: " + string(k)}
		}
	}
	return nil
}
