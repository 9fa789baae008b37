package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv
const (
	EnvFFProbe      = "BYTESWEEP_FFPROBE"
	EnvProbeTimeout = "BYTESWEEP_PROBE_TIMEOUT"
	EnvImageTimeout = "BYTESWEEP_IMAGE_TIMEOUT"
	EnvWorkers      = "BYTESWEEP_WORKERS"
	EnvLogLevel     = "BYTESWEEP_LOG_LEVEL"
	EnvLogFile      = "BYTESWEEP_LOG_FILE"
	EnvDryRun       = "BYTESWEEP_DRY_RUN"
)

var envKeys = []string{
	EnvFFProbe, EnvProbeTimeout, EnvImageTimeout, EnvWorkers, EnvLogLevel, EnvLogFile, EnvDryRun,
}

// ApplyEnv overrides configuration values from BYTESWEEP_* variables. When
// envFile is set its values are read first; the process environment wins
// over the file. The configuration is re-validated afterwards.
func (c *Config) ApplyEnv(envFile string) error {
	values := make(map[string]string)

	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("failed to read env file: %w", err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	if v, ok := values[EnvFFProbe]; ok && v != "" {
		c.Probe.FFProbePath = v
	}
	if v, ok := values[EnvProbeTimeout]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvProbeTimeout, err)
		}
		c.Probe.ProbeTimeout = d
	}
	if v, ok := values[EnvImageTimeout]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvImageTimeout, err)
		}
		c.Probe.ImageTimeout = d
	}
	if v, ok := values[EnvWorkers]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := values[EnvLogLevel]; ok {
		c.LogLevel = v
	}
	if v, ok := values[EnvLogFile]; ok {
		c.LogFile = v
	}
	if v, ok := values[EnvDryRun]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDryRun, err)
		}
		c.DryRun = b
	}

	return c.Validate()
}
