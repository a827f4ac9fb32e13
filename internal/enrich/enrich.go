// Package enrich derives the denormalized helper fields stored alongside
// a raw payload, so common filters never have to reparse JSON.
package enrich

import (
	"encoding/json"
	"strconv"

	"github.com/rentfold/propsnap/schema"
)

// Quality flag values.
const (
	QualityOK     = "ok"
	QualitySparse = "sparse"
	QualityEmpty  = "empty"
)

// sparseThreshold is the minimum number of keys in the data block for a
// payload to count as a full response.
const sparseThreshold = 3

// Fields computes the enrichment for a saved payload. params are the
// original request parameters, used for the request-shape helpers.
func Fields(ep schema.Endpoint, raw []byte, params map[string]string) *schema.Enrichment {
	out := &schema.Enrichment{
		ResponseBytes: int64(len(raw)),
		RequestType:   string(ep),
	}

	if b, ok := params["bedrooms"]; ok {
		if n, err := strconv.ParseInt(b, 10, 64); err == nil {
			out.Bedrooms = &n
		}
	}

	out.DataPoints = dataPoints(ep, raw)
	switch {
	case out.DataPoints == 0:
		out.QualityFlag = QualityEmpty
	case out.DataPoints < sparseThreshold:
		out.QualityFlag = QualitySparse
	default:
		out.QualityFlag = QualityOK
	}
	return out
}

// dataPoints counts the keys of the payload's data block (long_let for
// the rents family), or of the whole document for unknown shapes.
func dataPoints(ep schema.Endpoint, raw []byte) int64 {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0
	}

	block := doc["data"]
	if ep == schema.RentsEndpoint {
		if ll, ok := doc["long_let"]; ok {
			block = ll
		}
	}
	if block == nil {
		return int64(len(doc))
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(block, &inner); err != nil {
		// Scalar or array data block still counts as one point.
		return 1
	}
	return int64(len(inner))
}
