package notes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/domain/entities"
)

func TestBookAddAndToggle(t *testing.T) {
	var b Book

	first, err := b.Add("2025-09-17", " Order gravel ")
	require.NoError(t, err)
	second, err := b.Add("2025-09-17", "Call the client")
	require.NoError(t, err)
	other, err := b.Add("2025-09-18", "Return the ladder")
	require.NoError(t, err)

	assert.Equal(t, Note{ID: 1, Text: "Order gravel"}, first)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 1, other.ID)

	toggled, err := b.Toggle("2025-09-17", 2)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	assert.Equal(t, []Note{
		{ID: 1, Text: "Order gravel"},
		{ID: 2, Text: "Call the client", Completed: true},
	}, b.For("2025-09-17"))

	toggled, err = b.Toggle("2025-09-17", 2)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestBookRejectsBadInput(t *testing.T) {
	var b Book

	_, err := b.Add("2025-09-17", "  ")
	assert.True(t, entities.IsValidation(err))

	_, err = b.Add("17/09/2025", "text")
	assert.True(t, entities.IsValidation(err))

	_, err = b.Toggle("2025-09-17", 1)
	var nf *entities.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "note", nf.Kind)

	assert.Empty(t, b.For("2025-09-17"))
}

func TestForReturnsCopy(t *testing.T) {
	var b Book
	_, err := b.Add("2025-09-17", "Order gravel")
	require.NoError(t, err)

	got := b.For("2025-09-17")
	got[0].Completed = true

	assert.False(t, b.For("2025-09-17")[0].Completed)
}

func TestFileRoundTrip(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nested", "notes.yaml"))

	empty, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, empty.For("2025-09-17"))

	_, err = empty.Add("2025-09-18", "Return the ladder")
	require.NoError(t, err)
	_, err = empty.Add("2025-09-17", "Order gravel")
	require.NoError(t, err)
	_, err = empty.Toggle("2025-09-17", 1)
	require.NoError(t, err)
	require.NoError(t, f.Save(empty))

	loaded, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, []Note{{ID: 1, Text: "Order gravel", Completed: true}}, loaded.For("2025-09-17"))
	assert.Equal(t, []Note{{ID: 1, Text: "Return the ladder"}}, loaded.For("2025-09-18"))
}

func TestFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("day: [unclosed"), 0o600))

	_, err := NewFile(path).Load()
	assert.Error(t, err)
}
