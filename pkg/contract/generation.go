package contract

// Record is one generated row. Its shape is defined by the backend's DDL and
// differs per resource kind, so it stays an open map.
type Record = map[string]any

// RecordSet is the list of records produced for one resource kind.
type RecordSet = []Record

// GeneratedData carries record sets keyed by resource kind.
type GeneratedData map[ResourceKind]RecordSet

// GenerationRequest is the body of POST /api/generate.
type GenerationRequest struct {
	UserPrompt  string         `json:"user_prompt"`
	Resources   []ResourceKind `json:"resources"`
	RecordCount int            `json:"record_count"`
	QuickInputs *QuickInputs   `json:"quick_inputs,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   *int           `json:"max_tokens,omitempty"`
}

// QuickInputs holds the quick filters that differ from their "no filter"
// value. Absent fields let the backend apply its own defaults.
type QuickInputs struct {
	AgeMin        *int   `json:"age_min,omitempty"`
	AgeMax        *int   `json:"age_max,omitempty"`
	Gender        string `json:"gender,omitempty"`
	State         string `json:"state,omitempty"`
	InsuranceType string `json:"insurance_type,omitempty"`
}

// Empty reports whether no filter is set.
func (q *QuickInputs) Empty() bool {
	return q == nil || (q.AgeMin == nil && q.AgeMax == nil && q.Gender == "" && q.State == "" && q.InsuranceType == "")
}

// GenerationResult is the outcome for a single resource kind.
type GenerationResult struct {
	Success          bool      `json:"success"`
	Data             RecordSet `json:"data,omitempty"`
	Error            string    `json:"error,omitempty"`
	ValidationErrors []string  `json:"validation_errors,omitempty"`
}

// GenerationResponse is returned by POST /api/generate.
type GenerationResponse struct {
	Results   map[ResourceKind]GenerationResult `json:"results"`
	Timestamp string                            `json:"timestamp"`
}

// SuccessfulData extracts the record sets of every successful result.
// Failed resources are left out; they never roll back the others.
func (r *GenerationResponse) SuccessfulData() GeneratedData {
	out := GeneratedData{}
	if r == nil {
		return out
	}
	for kind, res := range r.Results {
		if res.Success && res.Data != nil {
			out[kind] = res.Data
		}
	}
	return out
}
