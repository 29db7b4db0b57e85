// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration of the service socket.
//
// JSON is for external interfaces (CLI --json output, event logs);
// CBOR is for the socket between runhistory and runhistory-service.
// The encoder uses Core Deterministic Encoding: sorted map keys and
// smallest integer encoding, so the same value always produces the
// same bytes.
//
// # Struct Tag Rules
//
//   - `cbor` tag: the type only ever travels over the socket
//     (request types).
//   - `json` tag: the type is serialized as both JSON and CBOR.
//     fxamacker/cbor falls back to `json` tags when `cbor` tags are
//     absent, so one tag names the field in both formats (records
//     and responses the CLI can print with --json).
//
// Never put both tags on one field.
package codec
