package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHistory(t *testing.T) {
	dir := t.TempDir()
	h, err := openHistory("json", dir)
	require.NoError(t, err)

	assert.False(t, h.Seen("a"))
	require.NoError(t, h.Add("b"))
	require.NoError(t, h.Add("a"))
	require.NoError(t, h.Add("a"))
	assert.True(t, h.Seen("a"))
	assert.Equal(t, 2, h.Len())
	require.NoError(t, h.Close())

	data, err := os.ReadFile(filepath.Join(dir, historyFile))
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal(data, &ids))
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	h, err = openHistory("json", dir)
	require.NoError(t, err)
	assert.True(t, h.Seen("b"))
	assert.Equal(t, 2, h.Len())
}

func TestJSONHistoryCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, historyFile), []byte("{{"), 0644))

	h, err := openHistory("json", dir)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
}

func TestSQLiteHistory(t *testing.T) {
	dir := t.TempDir()
	h, err := openHistory("sqlite", dir)
	require.NoError(t, err)

	assert.False(t, h.Seen("x"))
	require.NoError(t, h.Add("x"))
	require.NoError(t, h.Add("x"))
	assert.True(t, h.Seen("x"))
	assert.Equal(t, 1, h.Len())
	require.NoError(t, h.Close())

	h, err = openHistory("sqlite", dir)
	require.NoError(t, err)
	defer h.Close()
	assert.True(t, h.Seen("x"))
	assert.FileExists(t, filepath.Join(dir, historyDBFile))
}

func TestOpenHistoryUnknownDriver(t *testing.T) {
	h, err := openHistory("redis", t.TempDir())
	require.Error(t, err)
	assert.Nil(t, h)
}
