package fingerprint

import (
	"testing"

	"github.com/rentfold/propsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_KeyOrderIndependent(t *testing.T) {
	a := []byte(`{"data":{"average":285000,"points_analysed":20},"status":"success"}`)
	b := []byte(`{"status":"success","data":{"points_analysed":20,"average":285000}}`)

	fpA, err := Compute(schema.PricesEndpoint, a)
	require.NoError(t, err)
	fpB, err := Compute(schema.PricesEndpoint, b)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
	assert.Len(t, fpA, 64)
}

func TestCompute_VolatileFieldsIgnored(t *testing.T) {
	// Only the data block is hashed for prices, so process_time and url
	// churn must not produce a new fingerprint.
	a := []byte(`{"process_time":"0.42","url":"/prices?postcode=NR11EF","data":{"average":285000}}`)
	b := []byte(`{"process_time":"0.91","url":"/prices?postcode=NR11EF&retry=1","data":{"average":285000}}`)

	fpA, err := Compute(schema.PricesEndpoint, a)
	require.NoError(t, err)
	fpB, err := Compute(schema.PricesEndpoint, b)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
}

func TestCompute_DataChangeChangesFingerprint(t *testing.T) {
	a := []byte(`{"data":{"average":285000}}`)
	b := []byte(`{"data":{"average":286500}}`)

	fpA, err := Compute(schema.PricesEndpoint, a)
	require.NoError(t, err)
	fpB, err := Compute(schema.PricesEndpoint, b)
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
}

func TestCompute_NumberSpellingsAgree(t *testing.T) {
	a := []byte(`{"data":{"average":120}}`)
	b := []byte(`{"data":{"average":120.0}}`)
	c := []byte(`{"data":{"average":1.2e2}}`)

	fpA, err := Compute(schema.DemandEndpoint, a)
	require.NoError(t, err)
	fpB, err := Compute(schema.DemandEndpoint, b)
	require.NoError(t, err)
	fpC, err := Compute(schema.DemandEndpoint, c)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
	assert.Equal(t, fpA, fpC)
}

func TestCompute_RentsPrefersLongLet(t *testing.T) {
	// When long_let is present, the surrounding document is irrelevant.
	a := []byte(`{"long_let":{"average":1250},"short_let":{"average":2900}}`)
	b := []byte(`{"long_let":{"average":1250},"short_let":{"average":9999},"status":"success"}`)

	fpA, err := Compute(schema.RentsEndpoint, a)
	require.NoError(t, err)
	fpB, err := Compute(schema.RentsEndpoint, b)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)

	// Without long_let, the data block is used instead.
	c := []byte(`{"data":{"average":1250}}`)
	fpC, err := Compute(schema.RentsEndpoint, c)
	require.NoError(t, err)
	assert.NotEmpty(t, fpC)
}

func TestCompute_UnknownEndpointStripsVolatileKeys(t *testing.T) {
	a := []byte(`{"postcode":"NR1 1EF","count":3,"process_time":"0.1","status":"success","url":"/x"}`)
	b := []byte(`{"count":3,"postcode":"NR1 1EF","process_time":"9.9","status":"error","url":"/y"}`)

	fpA, err := Compute(schema.Endpoint("sourced-properties"), a)
	require.NoError(t, err)
	fpB, err := Compute(schema.Endpoint("sourced-properties"), b)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
}

func TestCompute_MalformedPayloads(t *testing.T) {
	cases := []struct {
		name    string
		ep      schema.Endpoint
		payload string
	}{
		{"invalid json", schema.PricesEndpoint, `{"data":`},
		{"not an object", schema.PricesEndpoint, `[1,2,3]`},
		{"missing data block", schema.CrimeEndpoint, `{"status":"success"}`},
		{"missing rents blocks", schema.RentsEndpoint, `{"status":"success"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.ep, []byte(tc.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}
