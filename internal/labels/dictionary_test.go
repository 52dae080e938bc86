package labels

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDictionary(t *testing.T) {
	dict, err := NewDictionary([]string{"kurta", "saree", "", "  lehenga  "})
	require.NoError(t, err)

	assert.Equal(t, 3, dict.Size())
	assert.Equal(t, []string{"kurta", "saree", "lehenga"}, dict.Labels())

	idx, ok := dict.Lookup("saree")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = dict.Lookup("lehenga")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = dict.Lookup("dupatta")
	assert.False(t, ok)
}

func TestNewDictionaryRejectsDuplicates(t *testing.T) {
	_, err := NewDictionary([]string{"kurta", "saree", " kurta "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate label")
}

func TestNewDictionaryEmpty(t *testing.T) {
	_, err := NewDictionary(nil)
	require.ErrorIs(t, err, ErrEmptyDictionary)

	_, err = NewDictionary([]string{"", "  ", "\t"})
	require.ErrorIs(t, err, ErrEmptyDictionary)
}

func TestLoadFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "labels.txt", []byte("kurta\nsaree\nlehenga\n"), 0o644))

	dict, err := LoadFromFile(fs, "labels.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, dict.Size())

	idx, ok := dict.Lookup("lehenga")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(afero.NewMemMapFs(), "labels.txt")
	require.Error(t, err)
}
