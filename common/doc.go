// Package common provides shared constants, errors, and utilities used
// throughout the nordgen configuration generator.
//
// This package is the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts, file names, and defaults
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Logger: Leveled logging with optional rotating file output
//   - Utils: Common helpers for config directories and file checks
//
// # Usage
//
//	import "nordgen/common"
//
//	common.LogInfo("Found %d servers", count)
//
//	if errors.Is(err, common.ErrAuthRejected) {
//	    // Token was not accepted by the API
//	}
package common
