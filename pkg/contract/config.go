package contract

// AppConfig describes what the backend currently supports. The client never
// mutates it; a refetch replaces it wholesale.
type AppConfig struct {
	Resources        map[ResourceKind]ResourceConfig `json:"resources"`
	EnabledResources []ResourceKind                  `json:"enabled_resources"`
	DisplayNames     map[ResourceKind]string         `json:"display_names"`
	QuickInputs      QuickInputOptions               `json:"quick_inputs"`
	LLMSettings      LLMSettings                     `json:"llm_settings"`
}

// ResourceConfig is the backend's per-resource generation setup.
type ResourceConfig struct {
	Enabled        bool           `json:"enabled"`
	DisplayName    string         `json:"display_name"`
	Description    string         `json:"description"`
	DDLFile        string         `json:"ddl_file"`
	KnowledgeDir   string         `json:"knowledge_dir"`
	TemplateFile   string         `json:"template_file"`
	ExcludeColumns []string       `json:"exclude_columns"`
	MD5Fields      []string       `json:"md5_fields"`
	Relationships  []Relationship `json:"relationships"`
}

// Relationship links a generated column to another resource.
type Relationship struct {
	Column     string `json:"column"`
	References string `json:"references"`
}

// QuickInputOptions lists the vocabularies offered by the quick filters.
type QuickInputOptions struct {
	Gender         []string `json:"gender"`
	States         []string `json:"states"`
	InsuranceTypes []string `json:"insurance_types"`
	AgeRange       AgeRange `json:"age_range"`
}

// AgeRange bounds the age quick filter.
type AgeRange struct {
	Min        int `json:"min"`
	Max        int `json:"max"`
	DefaultMin int `json:"default_min"`
	DefaultMax int `json:"default_max"`
}

// LLMSettings are the backend's default sampling parameters.
type LLMSettings struct {
	DefaultTemperature float64 `json:"default_temperature"`
	DefaultMaxTokens   int     `json:"default_max_tokens"`
	TimeoutSeconds     int     `json:"timeout_seconds"`
}

// DisplayNameFor returns the configured display name for kind, falling back
// to the built-in label.
func (c *AppConfig) DisplayNameFor(kind ResourceKind) string {
	if c != nil {
		if name := c.DisplayNames[kind]; name != "" {
			return name
		}
		if rc, ok := c.Resources[kind]; ok && rc.DisplayName != "" {
			return rc.DisplayName
		}
	}
	return kind.DisplayName()
}

// IsEnabled reports whether kind is listed in EnabledResources.
func (c *AppConfig) IsEnabled(kind ResourceKind) bool {
	if c == nil {
		return false
	}
	for _, k := range c.EnabledResources {
		if k == kind {
			return true
		}
	}
	return false
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service,omitempty"`
}

// ErrorBody is the JSON error envelope produced by the backend.
type ErrorBody struct {
	Detail string `json:"detail"`
}
