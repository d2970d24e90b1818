package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 7}, Int("n", 7))
	assert.Equal(t, Field{Key: "e", Value: -1.5}, Float64("e", -1.5))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))

	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
}

func TestZapLogger_EmitsFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.Info("conformer accepted", String("name", "water_conf0"), Int("ordinal", 0))

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "conformer accepted", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "water_conf0", fields["name"])
	assert.EqualValues(t, 0, fields["ordinal"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).Named("sampler").With(String("molecule", "ethane"))

	log.Debug("run started")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sampler", entries[0].LoggerName)
	assert.Equal(t, "ethane", entries[0].ContextMap()["molecule"])
}

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(Config{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.Debug("a")
		log.Info("b", String("k", "v"))
		log.Warn("c")
		log.Error("d", Err(errors.New("x")))
		log.With(Int("n", 1)).Named("child").Info("e")
	})
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	log := NewNopLogger()
	SetDefault(log)
	assert.Equal(t, log, Default())

	// nil is ignored.
	SetDefault(nil)
	assert.Equal(t, log, Default())
}

func TestSetLevel_AdjustsAtRuntime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemconf.log")
	log, err := NewLogger(Config{Level: "error", Output: path})
	require.NoError(t, err)

	log.Info("suppressed entry")

	setter, ok := log.(LevelSetter)
	require.True(t, ok, "NewLogger result must support runtime level changes")
	setter.SetLevel("info")

	// Derived children share the adjusted level.
	log.Named("sampler").Info("visible entry")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible entry")
	assert.NotContains(t, string(data), "suppressed entry")
}
