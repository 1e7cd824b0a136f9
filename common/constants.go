// Package common provides shared constants, types, and utilities
// used across the nordgen configuration generator.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "nordgen"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "nordgen"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	CredentialsFileName = ".credentials"
	LogFileName         = "nordgen.log"
	SummaryFileName     = "servers.json"
)

// Output directory layout.
const (
	// OutputDirPrefix is the prefix of the timestamped output directory.
	OutputDirPrefix = "nordvpn_configs_"
	// ConfigsDirName holds one profile per ranked server.
	ConfigsDirName = "configs"
	// BestConfigsDirName holds the top pick per country/city pair.
	BestConfigsDirName = "best_configs"
)

// Default timeouts and limits.
const (
	// APITimeout is the maximum time to wait for a single API call.
	APITimeout = 20 * time.Second
	// WriteTimeout is the per-job deadline during the final drain.
	WriteTimeout = 5 * time.Second
	// DefaultConcurrency is the write scheduler's in-flight ceiling.
	DefaultConcurrency = 200
)
