// Package config loads and merges prbatch configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GITHUB_TOKEN, ANTHROPIC_API_KEY, PRBATCH_MODEL, etc.)
//  3. GitHub Action inputs (INPUT_*), GITHUB_REPOSITORY and the event payload
//  4. A .env file in the working directory
//  5. Repo config file (./.prbatch.toml)
//  6. Global config file ($XDG_CONFIG_HOME/prbatch/config.toml)
//  7. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [Config.Validate] to check it.
// Credentials are only ever taken from the environment, action inputs, or
// flags; [Save] never writes them.
package config
