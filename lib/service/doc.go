// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the Unix socket protocol between
// runhistory-service and its clients.
//
// Every connection carries one request and one response, both CBOR.
// The request is a map with an "action" field naming the handler and
// any action-specific fields beside it. The response is a [Response]
// envelope: {ok: true, data: ...} or {ok: false, error: "..."}.
//
// Access control is the socket file's permissions. The protocol
// carries no credentials.
package service
