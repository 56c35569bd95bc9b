package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

func healthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client().Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend unreachable: %w", err)
			}
			if a.structured() {
				return a.printOutput(resp)
			}
			a.printTable([]string{"Check", "Value"}, [][]string{
				{"Backend", a.cfg.APIURL},
				{"Status", resp.Status},
				{"Service", resp.Service},
				{"Timestamp", resp.Timestamp},
			})
			return nil
		},
	}
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resources and defaults the backend supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.client().GetConfig(cmd.Context())
			if err != nil {
				return err
			}
			if a.structured() {
				return a.printOutput(cfg)
			}

			rows := make([][]string, 0, len(cfg.Resources))
			for _, kind := range contract.AllResourceKinds() {
				rc, ok := cfg.Resources[kind]
				if !ok {
					continue
				}
				rows = append(rows, []string{
					string(kind),
					cfg.DisplayNameFor(kind),
					yesNo(cfg.IsEnabled(kind)),
					strings.Join(rc.MD5Fields, ","),
					truncate(rc.Description, 40),
				})
			}
			a.printTable([]string{"Resource", "Name", "Enabled", "MD5 Fields", "Description"}, rows)
			return nil
		},
	}
}
