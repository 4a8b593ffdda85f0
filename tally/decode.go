// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/campus-vote/models"
)

var errEmptyPayload = errors.New("empty payload")

// Decoder turns a physical ballot record into its position -> candidate
// name choices.
type Decoder interface {
	Decode(rec models.PhysicalBallotRecord) (map[string]string, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(rec models.PhysicalBallotRecord) (map[string]string, error)

func (f DecoderFunc) Decode(rec models.PhysicalBallotRecord) (map[string]string, error) {
	return f(rec)
}

// JSONDecoder accepts a JSON object payload, or a JSON string whose content
// is such an object.
type JSONDecoder struct{}

func (JSONDecoder) Decode(rec models.PhysicalBallotRecord) (map[string]string, error) {
	payload := bytes.TrimSpace(rec.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, errEmptyPayload
	}

	// Double encoded: unwrap the string first
	if payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, fmt.Errorf("failed to unquote payload: %w", err)
		}
		payload = bytes.TrimSpace([]byte(inner))
		if len(payload) == 0 {
			return nil, errEmptyPayload
		}
	}

	var choices map[string]string
	if err := json.Unmarshal(payload, &choices); err != nil {
		return nil, fmt.Errorf("failed to decode choices: %w", err)
	}
	if choices == nil {
		return nil, errEmptyPayload
	}
	return choices, nil
}

// decodedRecord is the per-record outcome folded over by the counter.
type decodedRecord struct {
	id      string
	choices map[string]string
	err     error
}

func decodeAll(records []models.PhysicalBallotRecord, dec Decoder) []decodedRecord {
	out := make([]decodedRecord, len(records))
	for i, rec := range records {
		choices, err := safeDecode(dec, rec)
		if err != nil {
			err = &MalformedBallotError{RecordID: rec.ID, Err: err}
		}
		out[i] = decodedRecord{id: rec.ID, choices: choices, err: err}
	}
	return out
}

func safeDecode(dec Decoder, rec models.PhysicalBallotRecord) (choices map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			choices, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return dec.Decode(rec)
}
