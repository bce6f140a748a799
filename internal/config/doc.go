// Package config provides centralized configuration management for sheetpivot.
// It handles loading configuration from the environment and an optional YAML
// file, validation, and resolution of the directories the service uses.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SHEETPIVOT_<SECTION>_<KEY>:
//
//	SHEETPIVOT_SERVER_PORT=8080
//	SHEETPIVOT_STORE_DIR=data/store
//	SHEETPIVOT_STORE_IN_MEMORY=false
//	SHEETPIVOT_PIPELINE_THRESHOLD=0.7
//	SHEETPIVOT_PIPELINE_SENTINEL="no data"
//
// SHEETPIVOT_CONFIG points at a YAML file; otherwise config.yaml and
// configs/config.yaml are tried.
//
// # Paths
//
// Workbook paths in requests are resolved against Paths.DataDir unless they
// are absolute:
//
//	paths, _ := cfg.ResolvePaths()
//	file, err := paths.ResolveWorkbook("input/sales.xlsx")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default() and adjust fields directly.
package config
