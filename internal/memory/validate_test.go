package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerr "github.com/recall-oss/recall/internal/errors"
)

func TestValidateOwnerID(t *testing.T) {
	require.NoError(t, validateOwnerID("alice"))

	err := validateOwnerID("")
	require.Error(t, err)
	assert.True(t, rerr.IsValidation(err))
}

func TestValidateContent(t *testing.T) {
	require.NoError(t, validateContent("remembers the milk"))

	for _, content := range []string{"", "   ", "\n\t"} {
		err := validateContent(content)
		require.Error(t, err, "content %q should be rejected", content)
		assert.True(t, rerr.IsValidation(err))
	}
}

func TestNormalizeMetadata(t *testing.T) {
	m := normalizeMetadata(nil)
	require.NotNil(t, m)
	assert.Empty(t, m)

	in := map[string]any{"category": "groceries"}
	assert.Equal(t, in, normalizeMetadata(in))
}

func TestNormalizeLimit(t *testing.T) {
	got, err := normalizeLimit(0, DefaultSearchLimit)
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchLimit, got)

	got, err = normalizeLimit(25, DefaultSearchLimit)
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	// Oversized limits pass through uncapped.
	got, err = normalizeLimit(100000, DefaultSearchLimit)
	require.NoError(t, err)
	assert.Equal(t, 100000, got)

	_, err = normalizeLimit(-1, DefaultSearchLimit)
	require.Error(t, err)
	assert.True(t, rerr.IsValidation(err))
}

func TestValidateUpdate(t *testing.T) {
	require.Error(t, validateUpdate(UpdateFields{}))

	content := "updated"
	require.NoError(t, validateUpdate(UpdateFields{Content: &content}))

	empty := "   "
	err := validateUpdate(UpdateFields{Content: &empty})
	require.Error(t, err)
	assert.True(t, rerr.IsValidation(err))

	// Metadata alone is a valid partial update.
	require.NoError(t, validateUpdate(UpdateFields{Metadata: map[string]any{"a": 1}}))
}
