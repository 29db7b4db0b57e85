// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sampleRequest struct {
	Action    string `cbor:"action"`
	AttemptID string `cbor:"attempt_id,omitempty"`
	Limit     int    `cbor:"limit"`
}

type sampleRecord struct {
	AppID     string `json:"app_id"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"limit": 10, "action": "list-applications", "completed": true}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal of the same map produced different bytes")
		}
	}
}

func TestJSONTagFallback(t *testing.T) {
	data, err := Marshal(sampleRecord{AppID: "app-1", StartTime: 100, EndTime: -1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"app_id", "start_time", "end_time"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("encoded record lacks %q: %v", key, decoded)
		}
	}
}

func TestRequestMapDecodesIntoStruct(t *testing.T) {
	var buffer bytes.Buffer
	request := map[string]any{"action": "get-attempt", "attempt_id": "2", "unknown": []int{1}}
	if err := NewEncoder(&buffer).Encode(request); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var raw RawMessage
	if err := NewDecoder(&buffer).Decode(&raw); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var decoded sampleRequest
	if err := Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(sampleRequest{Action: "get-attempt", AttemptID: "2"}, decoded); diff != "" {
		t.Errorf("decoded request (-want +got):\n%s", diff)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var decoded sampleRequest
	if err := Unmarshal([]byte{0xff, 0x00}, &decoded); err == nil {
		t.Error("Unmarshal accepted invalid CBOR")
	}
}
