package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK           ErrorCode = "OK"
	CodeUnknown      ErrorCode = "COMMON_000"
	CodeInternal     ErrorCode = "COMMON_001"
	CodeInvalidParam ErrorCode = "COMMON_002"
	CodeNotFound     ErrorCode = "COMMON_003"
	CodeTimeout      ErrorCode = "COMMON_004"
	CodeStorageError ErrorCode = "COMMON_005"
	CodeConfigError  ErrorCode = "COMMON_006"
)

// Pipeline error codes.  These map one-to-one onto the failure taxonomy of
// the conformer pipeline: construction, sampling, refinement and solvation
// failures are distinct, named conditions that callers can branch on.
const (
	// CodeNoAtoms — a molecule ended initialisation with an empty atom
	// sequence, or a sampling/optimisation operation was invoked on one.
	CodeNoAtoms ErrorCode = "CHEM_001"

	// CodeSamplingWorker — an annealing worker failed; the batch result is
	// discarded rather than silently shrunk.
	CodeSamplingWorker ErrorCode = "CHEM_002"

	// CodeRefinement — the external refinement engine errored or did not
	// converge; the molecule is left at its pre-call state.
	CodeRefinement ErrorCode = "CHEM_003"

	// CodeChargeCountMismatch — the per-atom partial charge array returned
	// by the engine does not match the atom count.
	CodeChargeCountMismatch ErrorCode = "CHEM_004"

	// CodeSolventSubsearch — the explicit-solvent QM/MM collaborator failed;
	// no partial solvent-atom fields are applied.
	CodeSolventSubsearch ErrorCode = "CHEM_005"

	// CodeEmbedding — the embedding collaborator failed or produced no
	// candidate geometries.
	CodeEmbedding ErrorCode = "CHEM_006"

	// CodeNotationInvalid — the symbolic notation could not be initialised.
	CodeNotationInvalid ErrorCode = "CHEM_007"
)

// errorCodeExitStatus maps ErrorCodes to CLI process exit statuses so that
// shell pipelines and schedulers can distinguish failure classes.
var errorCodeExitStatus = map[ErrorCode]int{
	CodeInternal:            1,
	CodeInvalidParam:        2,
	CodeNotFound:            2,
	CodeConfigError:         2,
	CodeNotationInvalid:     2,
	CodeNoAtoms:             3,
	CodeSamplingWorker:      4,
	CodeEmbedding:           4,
	CodeRefinement:          5,
	CodeChargeCountMismatch: 5,
	CodeSolventSubsearch:    6,
	CodeTimeout:             7,
	CodeStorageError:        8,
}

// errorCodeMessage maps ErrorCodes to default messages.
var errorCodeMessage = map[ErrorCode]string{
	CodeInternal:            "internal error",
	CodeInvalidParam:        "invalid parameter",
	CodeNotFound:            "resource not found",
	CodeTimeout:             "operation timed out",
	CodeStorageError:        "storage error",
	CodeConfigError:         "configuration error",
	CodeNoAtoms:             "molecule has no atoms",
	CodeSamplingWorker:      "conformer sampling worker failed",
	CodeRefinement:          "geometry refinement failed",
	CodeChargeCountMismatch: "atomic charge count does not match atom count",
	CodeSolventSubsearch:    "explicit-solvent sub-search failed",
	CodeEmbedding:           "conformer embedding failed",
	CodeNotationInvalid:     "invalid symbolic notation",
}

// ExitStatusForCode returns the process exit status for an ErrorCode.
func ExitStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeExitStatus[code]; ok {
		return status
	}
	return 1
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := errorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode ("CHEM", "COMMON").
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
