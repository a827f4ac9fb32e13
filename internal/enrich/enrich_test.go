package enrich

import (
	"testing"

	"github.com/rentfold/propsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_FullResponse(t *testing.T) {
	raw := []byte(`{"status":"success","data":{"average":285000,"70pc_range":[240000,330000],"points_analysed":20}}`)
	out := Fields(schema.PricesEndpoint, raw, map[string]string{"postcode": "NR1 1EF"})

	assert.Equal(t, int64(len(raw)), out.ResponseBytes)
	assert.Equal(t, "prices", out.RequestType)
	assert.Equal(t, int64(3), out.DataPoints)
	assert.Equal(t, QualityOK, out.QualityFlag)
	assert.Nil(t, out.Bedrooms)
}

func TestFields_Bedrooms(t *testing.T) {
	raw := []byte(`{"data":{"average":1250}}`)
	out := Fields(schema.RentsEndpoint, raw, map[string]string{"bedrooms": "3"})

	require.NotNil(t, out.Bedrooms)
	assert.Equal(t, int64(3), *out.Bedrooms)

	// Unparseable bedrooms are simply omitted.
	out = Fields(schema.RentsEndpoint, raw, map[string]string{"bedrooms": "three"})
	assert.Nil(t, out.Bedrooms)
}

func TestFields_QualityFlags(t *testing.T) {
	sparse := Fields(schema.PricesEndpoint, []byte(`{"data":{"average":285000}}`), nil)
	assert.Equal(t, QualitySparse, sparse.QualityFlag)
	assert.Equal(t, int64(1), sparse.DataPoints)

	empty := Fields(schema.PricesEndpoint, []byte(`{"data":{}}`), nil)
	assert.Equal(t, QualityEmpty, empty.QualityFlag)
	assert.Equal(t, int64(0), empty.DataPoints)

	garbage := Fields(schema.PricesEndpoint, []byte(`not json`), nil)
	assert.Equal(t, QualityEmpty, garbage.QualityFlag)
}

func TestFields_RentsPrefersLongLet(t *testing.T) {
	raw := []byte(`{"long_let":{"average":1250,"70pc_range":[1000,1500],"points_analysed":18},"data":{"average":1}}`)
	out := Fields(schema.RentsEndpoint, raw, nil)

	assert.Equal(t, int64(3), out.DataPoints)
	assert.Equal(t, QualityOK, out.QualityFlag)
}

func TestFields_ArrayDataBlock(t *testing.T) {
	// A non-object data block still counts as a single point.
	raw := []byte(`{"data":[1,2,3]}`)
	out := Fields(schema.DemandEndpoint, raw, nil)

	assert.Equal(t, int64(1), out.DataPoints)
	assert.Equal(t, QualitySparse, out.QualityFlag)
}
