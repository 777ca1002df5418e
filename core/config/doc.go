// Package config provides configuration management for the sync tooling.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all settings, divided
// into subsections:
//   - Log: logging level and format
//   - File: file-backed store (path, watching)
//   - Database: MySQL/SQLite connection details
//   - Storage: S3/MinIO credentials and bucket settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.File.Path)
package config
