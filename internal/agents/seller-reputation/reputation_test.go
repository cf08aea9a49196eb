package sellerreputation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTable_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reputation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
unknown: 40
scores:
  Flipkart: 80
  myntra: 78
`), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)

	assert.Equal(t, 80.0, table.Score("flipkart")) // overridden
	assert.Equal(t, 78.0, table.Score("myntra"))   // added
	assert.Equal(t, 92.0, table.Score("amazon.com"))
	assert.Equal(t, 40.0, table.Score("no-name-shop"))
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadTable_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reputation.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scores: [not, a, map]"), 0o644))

	_, err := LoadTable(path)
	require.Error(t, err)
}
