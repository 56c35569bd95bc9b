package llmstatus

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// SettingsAPI is what the settings screen needs from the backend.
type SettingsAPI interface {
	StatusAPI
	GetConfig(ctx context.Context) (*contract.AppConfig, error)
}

// EnabledResource pairs an enabled resource with its display name.
type EnabledResource struct {
	Kind        contract.ResourceKind `json:"kind"`
	DisplayName string                `json:"display_name"`
}

// Settings is the read-only settings view. Credential values are never
// included, only whether they are present.
type Settings struct {
	ActiveLLM            string                     `json:"active_llm"`
	EnterpriseConfigured bool                       `json:"enterprise_configured"`
	Enterprise           *contract.EnterpriseConfig `json:"enterprise_config,omitempty"`
	ConnectionStatus     contract.ConnectionStatus  `json:"connection_status"`
	DefaultTemperature   float64                    `json:"default_temperature"`
	DefaultMaxTokens     int                        `json:"default_max_tokens"`
	TimeoutSeconds       int                        `json:"timeout_seconds"`
	EnabledResources     []EnabledResource          `json:"enabled_resources"`
}

// LoadSettings fetches the LLM status and configuration concurrently and
// fails if either call fails.
func LoadSettings(ctx context.Context, api SettingsAPI) (*Settings, error) {
	var (
		status *contract.LLMStatus
		cfg    *contract.AppConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := api.GetLLMStatus(gctx)
		if err != nil {
			return fmt.Errorf("load LLM status: %w", err)
		}
		status = s
		return nil
	})
	g.Go(func() error {
		c, err := api.GetConfig(gctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Settings{
		ActiveLLM:            status.ActiveLLM,
		EnterpriseConfigured: status.EnterpriseConfigured,
		Enterprise:           status.EnterpriseConfig,
		ConnectionStatus:     status.ConnectionStatus,
		DefaultTemperature:   cfg.LLMSettings.DefaultTemperature,
		DefaultMaxTokens:     cfg.LLMSettings.DefaultMaxTokens,
		TimeoutSeconds:       cfg.LLMSettings.TimeoutSeconds,
	}
	for _, kind := range cfg.EnabledResources {
		s.EnabledResources = append(s.EnabledResources, EnabledResource{
			Kind:        kind,
			DisplayName: cfg.DisplayNameFor(kind),
		})
	}
	return s, nil
}
