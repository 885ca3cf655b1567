package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"wallet-credit-score/internal/domain"
)

// FileSource loads events from a JSON file: either one top-level array
// (indexer export) or JSON Lines, one event per line.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and decodes the whole file.
func (s *FileSource) Load(ctx context.Context) (*Batch, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := DecodeEvents(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return batch, nil
}

// DecodeEvents decodes a JSON array or JSON Lines payload.
// Records that are valid JSON but do not fit the event shape (for example a
// numeric userWallet) are rejected individually instead of failing the batch.
func DecodeEvents(data []byte) (*Batch, error) {
	sum := sha256.Sum256(data)
	batch := &Batch{Digest: hex.EncodeToString(sum[:])}

	raws, err := splitRecords(data)
	if err != nil {
		return nil, err
	}

	batch.Events = make([]*domain.RawEvent, 0, len(raws))
	for i, raw := range raws {
		var ev domain.RawEvent
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&ev); err != nil {
			batch.Rejected = append(batch.Rejected, &MalformedEventError{
				Index:  i,
				Field:  FieldRecord,
				Reason: err.Error(),
			})
			continue
		}
		batch.Events = append(batch.Events, &ev)
	}

	return batch, nil
}

// splitRecords returns the raw JSON of every record in input order.
func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("parse event array: %w", err)
		}
		return raws, nil
	}

	var raws []json.RawMessage
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		if !json.Valid(text) {
			return nil, fmt.Errorf("line %d: invalid JSON", line)
		}
		raws = append(raws, json.RawMessage(append([]byte(nil), text...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan event lines: %w", err)
	}
	return raws, nil
}
