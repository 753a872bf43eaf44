package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir(), "/api/assets")
	require.NoError(t, err)

	key, err := s.Put("/materials/c1/notes.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "materials/c1/notes.pdf", key)
	assert.Equal(t, "/api/assets/materials/c1/notes.pdf", s.URL(key))

	rc, err := s.Get(key)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(b))

	require.NoError(t, s.Delete(key))
	require.NoError(t, s.Delete(key))
	_, err = s.Get(key)
	assert.Error(t, err)
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir(), "")
	require.NoError(t, err)
	for _, k := range []string{"", "/", "..", "../x", "a/../../x"} {
		_, err := s.Put(k, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrBadKey, k)
	}
	assert.Equal(t, "", s.URL("../x"))
}
