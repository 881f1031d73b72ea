package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"wavestats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wavestats dev\n", out)
}

func TestDemo_WritesEveryView(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	out, err := execute(t, "demo", "--out", dir, "--seed", "3", "--waves", "12", "--log-level", "error", "--sequential")
	require.NoError(t, err)

	for _, name := range viewOrder {
		assert.Contains(t, out, string(name)+" results saved to:")
	}
	assert.Contains(t, out, "rows, sha256 ")
	_, err = os.Stat(filepath.Join(dir, "involvement_statistics.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "Proto1_origin_statistics.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "meta_statistical_test_results.csv"))
	assert.NoError(t, err)
}

func TestExport_FromDocument(t *testing.T) {
	src := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(src, []byte(`{
  "treatment_comparison": {
    "treatment_involvement_stats": {"Active": {"pre": {"mean": 0.4, "median": 0.4, "std": 0.1, "count": 3}}},
    "treatment_origin_data": {"Active": {"pre": {"region_counts": {"North": 0}, "total_waves": 0}}}
  }
}`), 0644))
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "export", "--input", src, "--out", dir, "--format", "xlsx", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "treatment results saved to:")
	assert.Contains(t, out, "per_protocol: nothing to save")

	_, err = os.Stat(filepath.Join(dir, "treatment_origin_statistics.xlsx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "treatment_comparison_test_results.xlsx"))
	assert.True(t, os.IsNotExist(err))
}

func TestExport_Errors(t *testing.T) {
	_, err := execute(t, "export", "--out", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "export", "--input", filepath.Join(t.TempDir(), "absent.json"), "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	src := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"protocols": {"P": {"involvement_stats": {"pre": {"mean": 1}}}}}`), 0644))
	_, err = execute(t, "export", "--input", src, "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "export", "--input", src, "--format", "parquet")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
