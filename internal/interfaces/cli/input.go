package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/storage/xyz"
	"github.com/turtacn/ChemConformer/internal/intelligence/smiles"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// inputOptions are the structure-input flags shared by generate and optimize.
type inputOptions struct {
	SMILES  string
	XYZPath string
	Name    string
	Charge  int
	Mult    int
	Solvent string
}

// buildMolecule constructs the molecule from either a SMILES notation or an
// XYZ file.  Exactly one input source must be given.
func buildMolecule(cliCtx *CLIContext, in inputOptions) (*molecule.Molecule, error) {
	if (in.SMILES == "") == (in.XYZPath == "") {
		return nil, errors.InvalidParam("exactly one of --smiles and --xyz is required")
	}

	opts := []molecule.Option{
		molecule.WithLogger(cliCtx.Logger),
		molecule.WithCharge(in.Charge),
		molecule.WithSolvent(in.Solvent),
	}
	if in.Mult > 0 {
		opts = append(opts, molecule.WithMult(in.Mult))
	}

	if in.SMILES != "" {
		name := in.Name
		if name == "" {
			name = "molecule"
		}
		opts = append(opts,
			molecule.WithName(name),
			molecule.WithNotation(in.SMILES),
			molecule.WithInitializers(
				smiles.NewOrganic(cliCtx.Logger),
				smiles.NewMetal(cliCtx.Logger),
			),
		)
		return molecule.NewMolecule(opts...)
	}

	atoms, _, err := xyz.ReadFile(in.XYZPath)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		base := filepath.Base(in.XYZPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	opts = append(opts, molecule.WithName(name), molecule.WithAtoms(atoms))
	return molecule.NewMolecule(opts...)
}

// registerInputFlags wires the shared structure-input flags onto a command.
func registerInputFlags(cmd *cobra.Command, in *inputOptions) {
	f := cmd.Flags()
	f.StringVarP(&in.SMILES, "smiles", "s", "", "SMILES notation of the structure")
	f.StringVarP(&in.XYZPath, "xyz", "x", "", "path to an XYZ geometry file")
	f.StringVarP(&in.Name, "name", "n", "", "molecule name (default: derived from input)")
	f.IntVar(&in.Charge, "charge", 0, "total molecular charge (ignored when SMILES implies one)")
	f.IntVar(&in.Mult, "mult", 0, "spin multiplicity (ignored when SMILES implies one)")
	f.StringVar(&in.Solvent, "solvent", "", "implicit solvent name")
}
