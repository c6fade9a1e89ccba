package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Inspect the schema, options, and use cases",
	}

	cmd.AddCommand(newListValuesCommand())
	cmd.AddCommand(newListOptionsCommand())
	cmd.AddCommand(newListUseCasesCommand())

	return cmd
}

func newListValuesCommand() *cobra.Command {
	var sources catalogPaths
	cmd := &cobra.Command{
		Use:   "values <variable>",
		Short: "Show a variable's type and valid values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, _, _, err := sources.load()
			if err != nil {
				return err
			}
			d, err := sc.Descriptor(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s (group %s, type %s)\n", d.Name, d.Group, d.Type)
			if d.Description != "" {
				fmt.Printf("  %s\n", d.Description)
			}
			switch {
			case len(d.Allowed) > 0:
				fmt.Printf("  valid values: %s\n", strings.Join(d.Allowed, ", "))
			case d.Pattern != "":
				fmt.Printf("  valid values match: %s\n", d.Pattern)
			default:
				fmt.Printf("  any %s value\n", d.Type)
			}
			return nil
		},
	}
	sources.register(cmd)
	return cmd
}

// settableOptions maps the single-purpose generate settings to the
// variables they override.
var settableOptions = []struct {
	flag     string
	variable string
}{
	{"--res", "res"},
	{"--mask", "mask"},
	{"--bgc", "bgc_mode"},
	{"--rcp", "rcp"},
	{"--glc-nec", "maxpatch_glcmec"},
	{"--sim-year", "sim_year"},
	{"--co2-ppmv", "co2_ppmv"},
	{"--co2-type", "co2_type"},
	{"--restart-file", "nrevsn"},
}

func newListOptionsCommand() *cobra.Command {
	var sources catalogPaths
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the settable generate options and their valid values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, _, _, err := sources.load()
			if err != nil {
				return err
			}
			for _, opt := range settableOptions {
				d, err := sc.Descriptor(opt.variable)
				if err != nil {
					return err
				}
				valid := string(d.Type)
				if len(d.Allowed) > 0 {
					valid = strings.Join(d.Allowed, ", ")
				}
				fmt.Printf("%-16s %-18s %s\n", opt.flag, d.Name, valid)
			}
			return nil
		},
	}
	sources.register(cmd)
	return cmd
}

func newListUseCasesCommand() *cobra.Command {
	var sources catalogPaths
	cmd := &cobra.Command{
		Use:   "use-cases",
		Short: "Show the available use-case bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, ucs, err := sources.load()
			if err != nil {
				return err
			}
			for _, uc := range ucs.List() {
				fmt.Printf("%-20s %s\n", uc.Name, uc.Description)
			}
			return nil
		},
	}
	sources.register(cmd)
	return cmd
}
