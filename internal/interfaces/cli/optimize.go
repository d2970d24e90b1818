package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
)

// newOptimizeCmd builds the "optimize" subcommand: refine a single geometry
// with the configured engine, optionally over its conformer ensemble.
func newOptimizeCmd() *cobra.Command {
	in := &inputOptions{}
	var methodName string
	var viaConformers bool
	var singlePoint bool

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimise a structure's geometry",
		Long:  "optimize bootstraps a molecule from --smiles or --xyz and refines it with\nthe built-in engine, writing the optimised geometry as an XYZ file and\nrecording the run in the ledger when configured.  With --via-conformers the\nunique conformer ensemble is generated first and every conformer refined;\nthe lowest-energy one becomes the final geometry.  With --single-point the\nenergy is evaluated at the input geometry and nothing is written.",
		Example: `  chemconf optimize --smiles 'O' --name water
  chemconf optimize --xyz input.xyz --via-conformers`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			mol, err := buildMolecule(cliCtx, *in)
			if err != nil {
				return err
			}
			method := molecule.Method{Name: methodName}

			if singlePoint {
				energy, err := cliCtx.Service.SinglePoint(cmd.Context(), mol, method)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: single-point with %s, E = %.8f\n",
					mol.Name(), method.Name, energy)
				return nil
			}

			if viaConformers {
				if _, err := cliCtx.Generator.Generate(cmd.Context(), mol,
					cliCtx.Config.Sampling.MaxEmbedAttempts,
					cliCtx.Config.Sampling.MaxAnnealAttempts); err != nil {
					return err
				}
				if err := cliCtx.Service.OptimiseConformers(cmd.Context(), mol, method); err != nil {
					return err
				}
			}

			if err := cliCtx.Service.Optimise(cmd.Context(), mol, method); err != nil {
				return err
			}

			energy, _ := mol.Energy()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: optimised with %s, E = %.8f (%s/%s_optimised_%s.xyz)\n",
				mol.Name(), method.Name, energy, cliCtx.Writer.Dir(), mol.Name(), method.Name)
			return nil
		},
	}

	registerInputFlags(cmd, in)
	cmd.Flags().StringVarP(&methodName, "method", "m", "simanl", "refinement method label")
	cmd.Flags().BoolVar(&viaConformers, "via-conformers", false, "generate conformers first and adopt the lowest-energy one")
	cmd.Flags().BoolVar(&singlePoint, "single-point", false, "evaluate the energy at the current geometry without optimising")
	return cmd
}
