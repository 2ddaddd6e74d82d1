package main

import (
	"fmt"
	"os"

	"facility-api/internal/facility"
	"facility-api/internal/location"
	"facility-api/internal/report"
	"facility-api/internal/tabular"

	"github.com/spf13/cobra"
)

func addLocationFlags(cmd *cobra.Command, nf *location.NameFilter) {
	cmd.Flags().StringVar(&nf.District, "district", "", "district code or name")
	cmd.Flags().StringVar(&nf.Subcounty, "subcounty", "", "subcounty code or name")
	cmd.Flags().StringVar(&nf.Parish, "parish", "", "parish code or name")
	cmd.Flags().StringVar(&nf.Village, "village", "", "village code or name")
}

func newMetricsCmd(opts *options) *cobra.Command {
	var (
		nf        location.NameFilter
		breakdown bool
	)
	cmd := &cobra.Command{
		Use:   "metrics <health|education>",
		Short: "Aggregate metrics and benchmark gaps for a location scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := facility.ParseCategory(args[0])
			if err != nil {
				return err
			}
			rep, err := opts.service().Run(cmd.Context(), report.Request{Category: c, Location: nf, Breakdown: breakdown})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), rep)
		},
	}
	addLocationFlags(cmd, &nf)
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "include the per-subcounty breakdown")
	return cmd
}

func newBreakdownCmd(opts *options) *cobra.Command {
	var nf location.NameFilter
	cmd := &cobra.Command{
		Use:   "breakdown <health|education>",
		Short: "Per-subcounty metrics ranked by facility count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := facility.ParseCategory(args[0])
			if err != nil {
				return err
			}
			rep, err := opts.service().Run(cmd.Context(), report.Request{Category: c, Location: nf, Breakdown: true})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), rep.Breakdown)
		},
	}
	addLocationFlags(cmd, &nf)
	return cmd
}

func newSchemaCmd(opts *options) *cobra.Command {
	var district string
	cmd := &cobra.Command{
		Use:   "schema <health|education>",
		Short: "Describe the columns present in a category's data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := facility.ParseCategory(args[0])
			if err != nil {
				return err
			}
			s, err := opts.service().Schema(cmd.Context(), c, district)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().StringVar(&district, "district", "", "district code")
	return cmd
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code>",
		Short: "Resolve a location code to its entity and ancestors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.service().Locate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), e)
		},
	}
}

// validateResult：单文件校验输出
type validateResult struct {
	Path     string            `json:"path"`
	Category facility.Category `json:"category"`
	Records  int               `json:"records"`
	Header   []string          `json:"header"`
	Resolved map[string]string `json:"resolved"`
	Warnings []tabular.Warning `json:"warnings"`
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <health|education> <file.csv>",
		Short: "Parse a file and report row warnings and recognised columns",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := facility.ParseCategory(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			tbl, err := tabular.ParseReader(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			warnings := tbl.Warnings
			if warnings == nil {
				warnings = []tabular.Warning{}
			}
			return opts.print(cmd.OutOrStdout(), validateResult{
				Path:     args[1],
				Category: c,
				Records:  len(tbl.Records),
				Header:   tbl.Header,
				Resolved: facility.ResolveColumns(tbl.Header, c),
				Warnings: warnings,
			})
		},
	}
}
