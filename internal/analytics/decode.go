package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeEntries reads a JSON array of entry objects. Anything other than an
// array of objects is a contract violation; odd field values inside an
// object are left for Normalize to deal with.
func DecodeEntries(r io.Reader) ([]RawEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	return DecodeEntriesJSON(data)
}

// DecodeEntriesJSON is DecodeEntries over an in-memory document.
func DecodeEntriesJSON(data []byte) ([]RawEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewContractViolationError(-1, "expected a JSON array of entries")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, NewContractViolationError(-1, err.Error())
	}

	entries := make([]RawEntry, 0, len(items))
	for i, item := range items {
		entry, err := decodeEntryObject(i, item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DecodeEntryOrList accepts either a single entry object or an array of
// them, as the entry API does.
func DecodeEntryOrList(data []byte) ([]RawEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		entry, err := decodeEntryObject(0, trimmed)
		if err != nil {
			return nil, err
		}
		return []RawEntry{entry}, nil
	}
	return DecodeEntriesJSON(trimmed)
}

func decodeEntryObject(position int, item json.RawMessage) (RawEntry, error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return RawEntry{}, NewContractViolationError(position, "expected an object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var entry RawEntry
	if err := dec.Decode(&entry); err != nil {
		return RawEntry{}, NewContractViolationError(position, err.Error())
	}
	return entry, nil
}
