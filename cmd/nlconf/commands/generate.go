package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openlsm/nlconf/pkg/emit"
	"github.com/openlsm/nlconf/pkg/report"
	"github.com/openlsm/nlconf/pkg/resolver"
	"github.com/openlsm/nlconf/pkg/validate"
)

func newGenerateCommand() *cobra.Command {
	settings := resolver.DefaultSettings()
	var (
		sources        catalogPaths
		demandCSV      string
		output         string
		checkInputData bool
		dumpInputPaths string
		dumpReals      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve and write a validated namelist",
		Long: `Resolve the configuration from the given sources, run the resolution
pipeline, validate the result, and write the namelist file.

The generated file is only written after every schema and consistency
check has passed.`,
		Example: `  # A present-day satellite-phenology run
  nlconf generate --res 0.9x1.25 --sim-year 2000

  # A biogeochemistry run from a use case, with override text
  nlconf generate --use-case 2000_control --bgc bgc --namelist "&clm_inparm hist_nhtfrq = -24 /"

  # A transient 20th-century run with input staging paths dumped
  nlconf generate --use-case 20thC_transient --sim-year 1850-2000 --dump-input-paths inputs.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := report.New(report.Options{Verbose: verbose, Silent: silent, Strict: strict})
			ctx := rep.WithContext(cmd.Context())
			log := rep.Component("generate")

			if demandCSV != "" {
				settings.Demand = strings.Split(demandCSV, ",")
			}
			settings.Env = environMap()

			sc, dc, ucs, err := sources.load()
			if err != nil {
				return err
			}

			doc, flags, err := resolver.New(sc, dc, ucs, settings).Run(ctx)
			if err != nil {
				return err
			}
			if err := validate.Schema(sc, doc); err != nil {
				return err
			}
			if err := validate.Consistency(ctx, doc, flags); err != nil {
				return err
			}

			if checkInputData {
				emit.AuditInputs(sc, doc, settings.InputDataRoot, rep)
			}
			if err := rep.CheckStrict(); err != nil {
				return err
			}

			if dumpInputPaths != "" {
				if err := dumpToFile(dumpInputPaths, func(f *os.File) error {
					return emit.DumpInputPaths(f, sc, doc, settings.InputDataRoot)
				}); err != nil {
					return err
				}
			}
			if dumpReals != "" {
				if err := dumpToFile(dumpReals, func(f *os.File) error {
					return emit.DumpReals(f, sc, doc)
				}); err != nil {
					return err
				}
			}

			w := emit.NewWriter(sc)
			w.Header = []string{"generated by: " + strings.Join(os.Args, " ")}
			if err := w.WriteFile(output, doc); err != nil {
				return err
			}

			log.Info().
				Str("output", output).
				Int("variables", doc.Len()).
				Int("warnings", len(rep.Warnings())).
				Msg("Namelist generated successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Resolution, "res", "", "horizontal grid resolution")
	cmd.Flags().StringVar(&settings.Mask, "mask", "", "land/ocean mask")
	cmd.Flags().StringVar(&settings.BGCMode, "bgc", "", "biogeochemistry mode (sp, cn, bgc, fates)")
	cmd.Flags().StringVar(&settings.RCP, "rcp", "", "representative concentration pathway")
	cmd.Flags().IntVar(&settings.GlcNec, "glc-nec", -1, "glacier elevation class count")
	cmd.Flags().StringVar(&settings.SimYear, "sim-year", "", "simulation year, or YYYY-YYYY for a transient run")
	cmd.Flags().StringVar(&settings.StartType, "clm-start-type", "", "run start mode (cold, startup, continue, branch)")
	cmd.Flags().StringVar(&settings.RestartFile, "restart-file", "", "restart source for a branch run")
	cmd.Flags().Float64Var(&settings.CO2PPMV, "co2-ppmv", 0, "atmospheric CO2 concentration in ppmv")
	cmd.Flags().StringVar(&settings.CO2Type, "co2-type", "", "CO2 treatment (constant, diagnostic, prognostic)")
	cmd.Flags().IntVar(&settings.CouplingsPerDay, "coupling-freq", 0, "land/atmosphere couplings per day")
	cmd.Flags().StringVar(&demandCSV, "demand", "", "comma-separated variables that must resolve")
	cmd.Flags().StringVar(&settings.UseCase, "use-case", "", "use-case bundle to merge")
	cmd.Flags().StringVar(&settings.InlineText, "namelist", "", "inline override text in namelist syntax")
	cmd.Flags().StringSliceVar(&settings.OverrideFiles, "infile", nil, "override file, merged in order (repeatable)")
	cmd.Flags().StringVar(&settings.InputDataRoot, "input-data-root", "", "directory input pathnames resolve against")
	cmd.Flags().StringVarP(&output, "output", "o", "lnd_in", "output namelist file path")
	cmd.Flags().BoolVar(&checkInputData, "check-input-data", false, "warn about input datasets missing on disk")
	cmd.Flags().StringVar(&dumpInputPaths, "dump-input-paths", "", "write resolved input pathnames to a file")
	cmd.Flags().StringVar(&dumpReals, "dump-reals", "", "write real-valued variables to a file")
	sources.register(cmd)

	return cmd
}

// environMap turns the process environment into the expansion map used for
// ${VAR} references in string values.
func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func dumpToFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create dump file %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}
