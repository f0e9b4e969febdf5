// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads configuration for the webwx bot.
//
// Configuration comes from a single file named by:
//   - the WEBWX_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// Files ending in .json or .jsonc are read as JSON with comments
// (comments and trailing commas are stripped before decoding); every
// other extension is read as YAML. Durations are written as strings
// ("1s", "500ms"). ${VAR} and ${VAR:-default} references in the
// storage paths are expanded against the environment.
package config
