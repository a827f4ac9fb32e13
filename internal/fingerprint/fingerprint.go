// Package fingerprint computes content-stable hashes for provider payloads.
//
// Two payloads that agree on the stable projection for an endpoint hash
// identically regardless of JSON key order or volatile field values, which
// is what the store's dedup rule keys on.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/rentfold/propsnap/schema"
)

// ErrMalformedPayload indicates the payload lacks the structure the
// endpoint's projection rule requires.
var ErrMalformedPayload = errors.New("malformed payload")

// volatileKeys are provider fields that change between otherwise
// identical responses and are stripped before hashing.
var volatileKeys = map[string]struct{}{
	"process_time": {},
	"url":          {},
	"status":       {},
}

// projection selects the stable substructure of a payload.
type projection int

const (
	// wholePayload hashes the full document minus volatile keys.
	wholePayload projection = iota
	// dataBlock hashes the top-level "data" object, which must exist.
	dataBlock
	// longLetBlock hashes "long_let", falling back to "data".
	longLetBlock
)

// projectionFor dispatches the closed set of per-endpoint rules.
func projectionFor(ep schema.Endpoint) projection {
	switch ep {
	case schema.PricesEndpoint, schema.DemandEndpoint, schema.CrimeEndpoint:
		return dataBlock
	case schema.RentsEndpoint:
		return longLetBlock
	default:
		return wholePayload
	}
}

// Compute returns the hex SHA-256 fingerprint of the stable projection of
// payload for the given endpoint. It is pure and performs no I/O.
func Compute(ep schema.Endpoint, payload []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var selected any
	switch projectionFor(ep) {
	case dataBlock:
		block, ok := doc["data"]
		if !ok {
			return "", fmt.Errorf("%w: endpoint %s requires a data block", ErrMalformedPayload, ep)
		}
		selected = block
	case longLetBlock:
		if block, ok := doc["long_let"]; ok {
			selected = block
		} else if block, ok := doc["data"]; ok {
			selected = block
		} else {
			return "", fmt.Errorf("%w: endpoint %s requires a long_let or data block", ErrMalformedPayload, ep)
		}
	default:
		stripped := make(map[string]any, len(doc))
		for k, v := range doc {
			if _, volatile := volatileKeys[k]; !volatile {
				stripped[k] = v
			}
		}
		selected = stripped
	}

	canon, err := json.Marshal(normalize(selected))
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// normalize rewrites a decoded JSON tree so that marshaling it yields a
// canonical form: map keys are sorted by encoding/json, and numbers are
// reformatted so 120, 120.0 and 1.2e2 all render the same.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalize(child)
		}
		return out
	case json.Number:
		return json.RawMessage(canonicalNumber(val))
	default:
		return v
	}
}

// canonicalNumber renders a JSON number in a single canonical spelling.
func canonicalNumber(n json.Number) string {
	f, err := n.Float64()
	if err != nil {
		// Out-of-range literal, keep it verbatim.
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
