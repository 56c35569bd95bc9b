package contract

// ConnectionStatus is the backend's view of its LLM connection.
type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionDisconnected ConnectionStatus = "disconnected"
	ConnectionError        ConnectionStatus = "error"
)

// LLMStatus is returned by GET /api/llm/status.
type LLMStatus struct {
	ActiveLLM            string            `json:"active_llm"`
	EnterpriseConfigured bool              `json:"enterprise_configured"`
	EnterpriseConfig     *EnterpriseConfig `json:"enterprise_config,omitempty"`
	ConnectionStatus     ConnectionStatus  `json:"connection_status"`
}

// EnterpriseConfig reports which OAuth2 credentials are present without
// exposing their values.
type EnterpriseConfig struct {
	BaseURL         string `json:"base_url"`
	HasClientID     bool   `json:"has_client_id"`
	HasClientSecret bool   `json:"has_client_secret"`
}
