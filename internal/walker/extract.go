package walker

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// Outcome classifies an identifier discovery attempt.
type Outcome string

const (
	OutcomeFound       Outcome = "found"
	OutcomeEmpty       Outcome = "empty"       // well-formed list with no elements
	OutcomeMalformed   Outcome = "malformed"   // body is not JSON or has no list
	OutcomeNoID        Outcome = "no_id"       // first element has no usable identifier
	OutcomeUnavailable Outcome = "unavailable" // non-200 or no response at all
)

// ExtractList returns the record list carried by a response body. It
// accepts a bare JSON array, an array under "data", or an array under
// "data.items" (or "items" when "data" is absent). Unparseable bodies,
// other shapes and empty lists all yield ok == false.
func ExtractList(body []byte) (list []any, ok bool) {
	list, outcome := extractList(body)
	return list, outcome == OutcomeFound
}

func extractList(body []byte) ([]any, Outcome) {
	payload, err := decodeJSON(body)
	if err != nil {
		return nil, OutcomeMalformed
	}

	if obj, isObj := payload.(map[string]any); isObj {
		if data, has := obj["data"]; has && data != nil {
			payload = data
		}
	}

	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		nested, isList := v["items"].([]any)
		if !isList {
			return nil, OutcomeMalformed
		}
		items = nested
	default:
		return nil, OutcomeMalformed
	}

	if len(items) == 0 {
		return nil, OutcomeEmpty
	}
	return items, OutcomeFound
}

func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return payload, nil
}

// FirstID returns the identifier of the first record in list, read from
// the primary field, or from the secondary field when the primary one is
// absent or null. Empty strings, zero, false, and non-scalar values do
// not count as identifiers.
func FirstID(list []any, primary, secondary string) (string, bool) {
	if len(list) == 0 {
		return "", false
	}
	record, ok := list[0].(map[string]any)
	if !ok {
		return "", false
	}

	value, has := record[primary]
	if !has || value == nil {
		value = record[secondary]
	}
	return idString(value)
}

func idString(value any) (string, bool) {
	switch id := value.(type) {
	case string:
		return id, id != ""
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return strconv.FormatInt(n, 10), n != 0
		}
		f, err := id.Float64()
		if err != nil || f == 0 {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case bool:
		return "true", id
	default:
		return "", false
	}
}
