// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the runhistory-service configuration file.
//
// Configuration is loaded from a single file named by either the
// RUNHISTORY_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks and no automatic file
// search. Values the file leaves out keep the [Default] values.
//
// Files are YAML. A file ending in .json or .jsonc is JSON with
// comments and trailing commas allowed. Durations are Go duration
// strings ("10s", "168h").
//
// ${VAR} and ${VAR:-default} are expanded in log_directory,
// socket_path and gcs.credentials_file. No environment variable
// overrides a config value; the S3 keys are read from the variables
// the file names.
//
// This package depends on no other runhistory packages.
package config
