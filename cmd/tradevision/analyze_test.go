package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportPath(t *testing.T) {
	dir := t.TempDir()
	name := "analysis_1700000000000.json"

	assert.Equal(t, filepath.Join(dir, name), exportPath(dir, name))
	assert.Equal(t, filepath.Join(dir, "new", name), exportPath(filepath.Join(dir, "new")+string(os.PathSeparator), name))
	assert.Equal(t, filepath.Join(dir, "verdict.json"), exportPath(filepath.Join(dir, "verdict.json"), name))
}
