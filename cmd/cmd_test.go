package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotblauer/trkgeo/testing/testdata"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag set by a previous run back to its default;
// commands and their flag variables are package globals.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	defer resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(append(args, "--verbosity", "0"))
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func gpxFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "morning.gpx")
	require.NoError(t, os.WriteFile(p, []byte(testdata.GPX_Two_Segments), 0644))
	return p
}

func TestDerive(t *testing.T) {
	file := gpxFile(t)
	out := execute(t, "derive", file)
	assert.Contains(t, out, "# Morning")
	assert.Contains(t, out, "idx")
	assert.Equal(t, 1+1+5, bytes.Count([]byte(out), []byte("\n")), "title, header, and one line per point")

	out = execute(t, "derive", "--geojson", file)
	assert.Contains(t, out, `"FeatureCollection"`)
	assert.Contains(t, out, `"MultiLineString"`)
}

func TestInfo(t *testing.T) {
	out := execute(t, "info", gpxFile(t))
	assert.Contains(t, out, "Morning")
	assert.Contains(t, out, "Length: ")
	assert.Contains(t, out, "Waypoint Home")
}

func TestFocus(t *testing.T) {
	out := execute(t, "focus", "--distance", "100", gpxFile(t))
	assert.Contains(t, out, "segment 0, point 1")
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	execute(t, "export", "--dir", dir, gpxFile(t))
	_, err := os.Stat(filepath.Join(dir, "Morning.geojson"))
	assert.NoError(t, err)
}

func TestImportStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "projects.db")
	file := gpxFile(t)
	execute(t, "import", "--db", db, "--project", "rides", file)
	// Same content, same keys: no duplicates.
	execute(t, "import", "--db", db, "--project", "rides", file)

	out := execute(t, "store", "list", "--db", db)
	assert.Equal(t, "rides\n", out)

	out = execute(t, "store", "show", "--db", db, "rides")
	assert.Contains(t, out, "Project rides")
	assert.Contains(t, out, "2 items")
	assert.Contains(t, out, "* trk")
	assert.Contains(t, out, "Length: ")

	execute(t, "store", "rm", "--db", db, "rides")
	out = execute(t, "store", "list", "--db", db)
	assert.Empty(t, out)
}
