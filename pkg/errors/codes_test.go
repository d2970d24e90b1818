package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitStatusForCode(t *testing.T) {
	assert.Equal(t, 3, ExitStatusForCode(CodeNoAtoms))
	assert.Equal(t, 5, ExitStatusForCode(CodeRefinement))
	assert.Equal(t, 5, ExitStatusForCode(CodeChargeCountMismatch))
	assert.Equal(t, 1, ExitStatusForCode(ErrorCode("BOGUS")))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "geometry refinement failed", DefaultMessageForCode(CodeRefinement))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("BOGUS")))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "CHEM", ModuleForCode(CodeSamplingWorker))
	assert.Equal(t, "COMMON", ModuleForCode(CodeInternal))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}
