package cohort

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCohortFile drops YAML content into a temp file and returns its path.
func writeCohortFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cohorts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeCohortFile(t, `
cohorts:
  - id: norwich-core
    name: Norwich core postcodes
    description: City centre coverage
    tags: [norwich, pilot]
    members:
      - key: "NR1 1EF"
      - key: "NR2 2AB"
        type: postcode
  - id: coastal
    name: Coastal towns
    members:
      - key: "NR30 1AA"
`)

	defs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "norwich-core", defs[0].ID)
	assert.Equal(t, []string{"norwich", "pilot"}, defs[0].Tags)
	require.Len(t, defs[0].Members, 2)
	assert.Equal(t, "NR1 1EF", defs[0].Members[0].Key)
	assert.Empty(t, defs[0].Members[0].Type)
	assert.Equal(t, "postcode", defs[0].Members[1].Type)

	assert.Equal(t, "coastal", defs[1].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeCohortFile(t, "cohorts: [whoops")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			"missing id",
			"cohorts:\n  - name: no id\n    members:\n      - key: NR1 1EF\n",
		},
		{
			"duplicate id",
			"cohorts:\n  - id: a\n  - id: a\n",
		},
		{
			"empty member key",
			"cohorts:\n  - id: a\n    members:\n      - key: \"\"\n",
		},
		{
			"duplicate member",
			"cohorts:\n  - id: a\n    members:\n      - key: NR1 1EF\n      - key: NR1 1EF\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeCohortFile(t, tc.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadDefinition)
		})
	}
}
