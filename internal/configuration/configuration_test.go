package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfigProvider struct {
	envMap map[string]string
	err    error
}

func (m *mockConfigProvider) Read(_ ...string) (map[string]string, error) {
	return m.envMap, m.err
}

// TestReadBootConfig_Success tests reading a full boot configuration.
func TestReadBootConfig_Success(t *testing.T) {
	t.Parallel()

	provider := &mockConfigProvider{
		envMap: map[string]string{
			KeyDiskImage:     "/tmp/gokern.img",
			KeyDiskSectors:   "2048",
			KeyFormatOnBoot:  "true",
			KeySchedQuantum:  "200",
			KeySchedAgeEvery: "400",
		},
	}

	config, err := NewHandler(provider).ReadBootConfig(BootConfig{})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gokern.img", config.DiskImage)
	assert.Equal(t, 2048, config.DiskSectors)
	assert.True(t, config.FormatOnBoot)
	assert.Equal(t, int64(200), config.SchedQuantum)
	assert.Equal(t, int64(400), config.SchedAgeEvery)
}

// TestReadBootConfig_Defaults_Success tests that absent or malformed keys
// leave the given defaults intact.
func TestReadBootConfig_Defaults_Success(t *testing.T) {
	t.Parallel()

	provider := &mockConfigProvider{
		envMap: map[string]string{
			KeyDiskSectors: "junk",
		},
	}

	defaults := BootConfig{
		DiskImage:     "disk.img",
		DiskSectors:   1024,
		SchedQuantum:  100,
		SchedAgeEvery: 300,
	}

	config, err := NewHandler(provider).ReadBootConfig(defaults)
	require.NoError(t, err)

	assert.Equal(t, "disk.img", config.DiskImage)
	assert.Equal(t, 1024, config.DiskSectors)
	assert.False(t, config.FormatOnBoot)
	assert.Equal(t, int64(100), config.SchedQuantum)
	assert.Equal(t, int64(300), config.SchedAgeEvery)
}

// TestReadBootConfig_ProviderFailure_Error tests that a failing provider is
// reported as an error.
func TestReadBootConfig_ProviderFailure_Error(t *testing.T) {
	t.Parallel()

	provider := &mockConfigProvider{err: assert.AnError}

	_, err := NewHandler(provider).ReadBootConfig(BootConfig{})
	require.Error(t, err)
}
