// Package xyz persists geometries in the plain XYZ interchange format: an
// atom-count line, a free-text comment line, then one "label x y z" row per
// atom in angstroms.
package xyz

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// Writer implements molecule.GeometryWriter against a flat output directory.
type Writer struct {
	dir string
	log logging.Logger
}

// NewWriter creates the output directory if needed and returns a Writer.
func NewWriter(dir string, log logging.Logger) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "creating geometry output directory").
			WithDetail("dir=" + dir)
	}
	return &Writer{dir: dir, log: log.Named("xyz")}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteXYZ writes the geometry to "<name>.xyz" under the output directory,
// replacing any previous file of the same name.
func (w *Writer) WriteXYZ(name string, atoms []molecule.Atom, comment string) error {
	if name == "" {
		return errors.InvalidParam("geometry file name must not be empty")
	}
	if len(atoms) == 0 {
		return errors.InvalidParam("refusing to write an empty geometry").
			WithDetail("name=" + name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(atoms))
	fmt.Fprintf(&b, "%s\n", strings.ReplaceAll(comment, "\n", " "))
	for _, a := range atoms {
		fmt.Fprintf(&b, "%-3s %14.8f %14.8f %14.8f\n", a.Label, a.X, a.Y, a.Z)
	}

	path := filepath.Join(w.dir, name+".xyz")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "writing geometry file").
			WithDetail("path=" + path)
	}

	w.log.Debug("geometry written",
		logging.String("path", path),
		logging.Int("n_atoms", len(atoms)))
	return nil
}

// ReadFile parses an XYZ file and returns its geometry and comment line.
func ReadFile(path string) ([]molecule.Atom, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeInternal, "opening geometry file").
			WithDetail("path=" + path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, "", errors.InvalidParam("geometry file is empty").WithDetail("path=" + path)
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || n < 1 {
		return nil, "", errors.InvalidParam("malformed atom-count line").WithDetail("path=" + path)
	}
	if !sc.Scan() {
		return nil, "", errors.InvalidParam("geometry file truncated before comment line").WithDetail("path=" + path)
	}
	comment := sc.Text()

	// The count line is untrusted input; cap the pre-allocation and let the
	// slice grow if the file really is that large.
	capHint := n
	if capHint > 4096 {
		capHint = 4096
	}
	atoms := make([]molecule.Atom, 0, capHint)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, "", errors.InvalidParam("geometry file truncated").
				WithDetail(fmt.Sprintf("path=%s want=%d got=%d", path, n, i))
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			return nil, "", errors.InvalidParam("malformed atom line").
				WithDetail(fmt.Sprintf("path=%s line=%d", path, i+3))
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		z, errZ := strconv.ParseFloat(fields[3], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, "", errors.InvalidParam("malformed coordinate").
				WithDetail(fmt.Sprintf("path=%s line=%d", path, i+3))
		}
		atoms = append(atoms, molecule.NewAtom(fields[0], x, y, z))
	}
	return atoms, comment, nil
}
