package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestStatsDiffPrintsIncrements(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeSnapshot(t, dir, "old.json", `{"userId":"u1","user":{"universityCode":"tum"},"registered":"2026-03-01T09:00:00Z"}`)
	newPath := writeSnapshot(t, dir, "new.json", `{"userId":"u1","user":{"universityCode":"lmu"},"registered":"2026-03-01T09:00:00Z"}`)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"stats", "diff", "--old", oldPath, "--new", newPath, "--livestream-id", "ls-1", "--group-id", "g-1"})
	require.NoError(t, root.Execute())

	var incs []struct {
		RootType string
		RootID   string
		Deltas   map[string]int64
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &incs))
	require.Len(t, incs, 2)
	assert.Equal(t, "ls-1", incs[0].RootID)
	assert.Equal(t, map[string]int64{
		"universityStats.tum.numberOfRegistrations": -1,
		"universityStats.lmu.numberOfRegistrations": 1,
	}, incs[0].Deltas)
	assert.Equal(t, "g-1", incs[1].RootID)
}

func TestStatsDiffYAML(t *testing.T) {
	dir := t.TempDir()
	newPath := writeSnapshot(t, dir, "new.json", `{"userId":"u1","participated":"2026-03-01T09:00:00Z"}`)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"stats", "diff", "--new", newPath, "-o", "yaml"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "generalStats.numberOfParticipants: 1")
}

func TestStatsDiffRequiresASnapshot(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"stats", "diff"})
	assert.Error(t, root.Execute())
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, render(&bytes.Buffer{}, "xml", 1))
}
