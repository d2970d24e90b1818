package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newGenerateCmd builds the "generate" subcommand: bootstrap a structure,
// produce its unique conformer ensemble, and write one XYZ file per accepted
// conformer.
func newGenerateCmd() *cobra.Command {
	in := &inputOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the unique conformer ensemble of a structure",
		Long:  "generate bootstraps a molecule from --smiles or --xyz, samples candidate\nconformations by embedding or simulated annealing, filters them down to the\nRMSD-unique set, and writes one XYZ file per accepted conformer.",
		Example: `  chemconf generate --smiles 'CCO' --name ethanol
  chemconf generate --xyz input.xyz -o ./conformers`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			mol, err := buildMolecule(cliCtx, *in)
			if err != nil {
				return err
			}

			confs, err := cliCtx.Generator.Generate(cmd.Context(), mol,
				cliCtx.Config.Sampling.MaxEmbedAttempts,
				cliCtx.Config.Sampling.MaxAnnealAttempts)
			if err != nil {
				return err
			}

			for _, conf := range confs {
				if err := cliCtx.Writer.WriteXYZ(conf.Name(), conf.Atoms(), ""); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d unique conformers written to %s\n",
				mol.Name(), len(confs), cliCtx.Writer.Dir())
			return nil
		},
	}

	registerInputFlags(cmd, in)
	return cmd
}
