package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/diffgrid/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)

	// All methods are nil-safe
	assert.NoError(t, om.WriteSubstances([]SubstanceStats{{Substance: "Kalium"}}))
	assert.NoError(t, om.WritePerf(PerfStats{}, "run", 1))
	assert.NoError(t, om.WriteBookmark(Bookmark{}))
	assert.NoError(t, om.Close())
	assert.Equal(t, "", om.Dir())
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	require.NoError(t, om.WriteSubstances([]SubstanceStats{
		{RunID: "r", WindowEndTick: 10, Substance: "Kalium", TotalMass: 4},
		{RunID: "r", WindowEndTick: 10, Substance: "Chemokine"},
	}))
	require.NoError(t, om.WriteSubstances([]SubstanceStats{
		{RunID: "r", WindowEndTick: 20, Substance: "Kalium", TotalMass: 8},
	}))
	require.NoError(t, om.WritePerf(PerfStats{}, "r", 10))
	require.NoError(t, om.WriteBookmark(Bookmark{RunID: "r", Type: BookmarkGridGrowth, Tick: 10, Substance: "Kalium"}))
	require.NoError(t, om.WriteBookmark(Bookmark{RunID: "r", Type: BookmarkSteadyState, Tick: 20, Substance: "Kalium"}))

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, om.WriteConfig(cfg))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "substances.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "run_id"))

	var rows []SubstanceStats
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, 8.0, rows[2].TotalMass)
	assert.Equal(t, int32(20), rows[2].WindowEndTick)

	data, err = os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	require.NoError(t, err)
	var bms []Bookmark
	require.NoError(t, gocsv.UnmarshalBytes(data, &bms))
	require.Len(t, bms, 2)
	assert.Equal(t, BookmarkSteadyState, bms[1].Type)

	_, err = os.Stat(filepath.Join(dir, "perf.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}
