// Package configuration provides the boot configuration of the kernel: the
// disk image location, its geometry for formatting and the format-on-boot
// flag. Configuration files are plain Unix-type key=value files.
package configuration

import (
	"fmt"
	"strconv"
)

// Configuration keys as they appear in the boot configuration file.
const (
	KeyDiskImage     = "GOKERN_DISK_IMAGE"
	KeyDiskSectors   = "GOKERN_DISK_SECTORS"
	KeyFormatOnBoot  = "GOKERN_FORMAT_ON_BOOT"
	KeySchedQuantum  = "GOKERN_SCHED_QUANTUM"
	KeySchedAgeEvery = "GOKERN_SCHED_AGE_EVERY"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// BootConfig is the principal structure holding the boot configuration.
type BootConfig struct {
	DiskImage     string
	DiskSectors   int
	FormatOnBoot  bool
	SchedQuantum  int64
	SchedAgeEvery int64
}

// Handler is the principal implementation for configuration reading.
type Handler struct {
	configProvider genericConfigProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(configProvider genericConfigProvider) *Handler {
	return &Handler{
		configProvider: configProvider,
	}
}

// ReadBootConfig reads the given configuration files into a [BootConfig],
// applying defaults for absent keys.
func (h *Handler) ReadBootConfig(defaults BootConfig, filenames ...string) (*BootConfig, error) {
	envMap, err := h.configProvider.Read(filenames...)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	config := defaults

	if value := mapKeyToString(envMap, KeyDiskImage); value != "" {
		config.DiskImage = value
	}

	if value := mapKeyToInt(envMap, KeyDiskSectors); value > 0 {
		config.DiskSectors = value
	}

	if value := mapKeyToString(envMap, KeyFormatOnBoot); value != "" {
		config.FormatOnBoot = value == "1" || value == "true" || value == "yes"
	}

	if value := mapKeyToInt64(envMap, KeySchedQuantum); value > 0 {
		config.SchedQuantum = value
	}

	if value := mapKeyToInt64(envMap, KeySchedAgeEvery); value > 0 {
		config.SchedAgeEvery = value
	}

	return &config, nil
}

func mapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

func mapKeyToInt(envMap map[string]string, key string) int {
	value := mapKeyToString(envMap, key)
	if value == "" {
		return -1
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return intValue
}

func mapKeyToInt64(envMap map[string]string, key string) int64 {
	value := mapKeyToString(envMap, key)
	if value == "" {
		return -1
	}

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return -1
	}

	return intValue
}
