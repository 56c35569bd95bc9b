package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synthfhir/synthfhir/internal/domain/generation"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

type generateFlags struct {
	prompt        string
	resources     []string
	count         int
	ageMin        int
	ageMax        int
	gender        string
	state         string
	insuranceType string
	temperature   float64
	maxTokens     int
	noHandoff     bool
}

func generateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate synthetic records and hand them off to the results view",
		Long: `Generate synthetic FHIR records for one or more resources.

Unset flags fall back to the backend configuration. Successful record sets are
published to the result bridge session unless --no-handoff is given; failed
resources are reported without affecting the others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && f.prompt == "" {
				f.prompt = args[0]
			}
			return a.runGenerate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.prompt, "prompt", "p", "", "Description of the data to generate")
	flags.StringSliceVarP(&f.resources, "resource", "r", nil, "Resources to generate (repeatable; default: first enabled resource)")
	flags.IntVarP(&f.count, "count", "n", generation.DefaultRecordCount, "Records per resource (1-100)")
	flags.IntVar(&f.ageMin, "age-min", generation.DefaultAgeMin, "Minimum patient age")
	flags.IntVar(&f.ageMax, "age-max", generation.DefaultAgeMax, "Maximum patient age")
	flags.StringVar(&f.gender, "gender", contract.AnyFilter, "Gender filter")
	flags.StringVar(&f.state, "state", contract.AnyFilter, "State filter")
	flags.StringVar(&f.insuranceType, "insurance-type", contract.AnyFilter, "Insurance type filter")
	flags.Float64Var(&f.temperature, "temperature", generation.DefaultTemperature, "LLM temperature (0-1)")
	flags.IntVar(&f.maxTokens, "max-tokens", generation.DefaultMaxTokens, "LLM max tokens (500-8000)")
	flags.BoolVar(&f.noHandoff, "no-handoff", false, "Do not publish results to the bridge session")
	return cmd
}

// buildForm starts from the backend defaults and applies only the flags the
// user set.
func buildForm(cmd *cobra.Command, cfg *contract.AppConfig, f generateFlags) (generation.Form, error) {
	form := generation.DefaultForm(cfg)
	form.Prompt = f.prompt

	flags := cmd.Flags()
	if flags.Changed("resource") {
		form.Resources = form.Resources[:0]
		for _, r := range f.resources {
			kind, err := contract.ParseResourceKind(r)
			if err != nil {
				return form, err
			}
			form.Resources = append(form.Resources, kind)
		}
	}
	if flags.Changed("count") {
		form.RecordCount = f.count
	}
	if flags.Changed("age-min") {
		form.AgeMin = f.ageMin
	}
	if flags.Changed("age-max") {
		form.AgeMax = f.ageMax
	}
	if flags.Changed("gender") {
		form.Gender = f.gender
	}
	if flags.Changed("state") {
		form.State = f.state
	}
	if flags.Changed("insurance-type") {
		form.InsuranceType = f.insuranceType
	}
	if flags.Changed("temperature") {
		form.Temperature = f.temperature
	}
	if flags.Changed("max-tokens") {
		form.MaxTokens = f.maxTokens
	}
	form.Normalize()
	return form, nil
}

func (a *app) runGenerate(cmd *cobra.Command, f generateFlags) error {
	ctx := cmd.Context()
	ctl := generation.NewController(a.client(), a.logger)

	cfg, err := ctl.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	form, err := buildForm(cmd, cfg, f)
	if err != nil {
		return err
	}
	resp, err := ctl.Submit(ctx, form)
	if err != nil {
		return err
	}

	var handedOff contract.GeneratedData
	if !f.noHandoff {
		b, closeFn, err := a.openBridge(ctx)
		defer closeFn()
		if err != nil {
			return err
		}
		if handedOff, err = ctl.Handoff(ctx, b); err != nil {
			return fmt.Errorf("hand off results: %w", err)
		}
	}

	if a.structured() {
		return a.printOutput(resp)
	}

	rows := [][]string{}
	for _, s := range ctl.Summaries() {
		status, detail := "ok", ""
		if !s.Success {
			status, detail = "failed", s.Error
		} else if s.Warnings() > 0 {
			detail = strings.Join(s.ValidationErrors, "; ")
		}
		rows = append(rows, []string{
			s.DisplayName,
			status,
			strconv.Itoa(s.RecordCount),
			strconv.Itoa(s.Warnings()),
			truncate(detail, 60),
		})
	}
	a.printTable([]string{"Resource", "Status", "Records", "Warnings", "Detail"}, rows)
	if !f.noHandoff {
		a.printf("\nHanded off %d resource(s) to session %q. Run 'synthfhir results show' to view them.\n", len(handedOff), a.cfg.BridgeSession)
	}
	return nil
}
