package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanolivertroy/compdef-insights/internal/config"
	"github.com/ethanolivertroy/compdef-insights/internal/graph"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BasePath:        t.TempDir(),
		OutputPath:      "insights",
		ReferencePolicy: "exclude",
		Formats:         []string{"txt", "json"},
		ChartWidth:      100,
		ChartHeight:     30,
		LogLevel:        "info",
		Theme:           "default",
	}
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	cfg := testConfig(t)
	var got *config.Config
	root := NewRootCmd(cfg, func(c *config.Config) error {
		got = c
		return nil
	})
	root.SetArgs([]string{"-f", "compdef.json", "--policy", "fail", "--chart-width", "80", "--concurrent"})

	require.NoError(t, root.Execute())
	require.NotNil(t, got)
	assert.Equal(t, "compdef.json", got.FilePath)
	assert.Equal(t, "fail", got.ReferencePolicy)
	assert.Equal(t, 80, got.ChartWidth)
	assert.True(t, got.Concurrent)
}

func TestRootRequiresFilePath(t *testing.T) {
	cfg := testConfig(t)
	called := false
	root := NewRootCmd(cfg, func(*config.Config) error {
		called = true
		return nil
	})
	root.SetArgs([]string{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
	assert.False(t, called)
}

func TestVersionCmd(t *testing.T) {
	Version = "1.2.3"
	t.Cleanup(func() { Version = "" })

	var out bytes.Buffer
	root := NewRootCmd(testConfig(t), func(*config.Config) error { return nil })
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "1.2.3")
}

func TestAnalysisOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.FilePath = "compdef.yaml"
	cfg.ReferencePolicy = "include"
	cfg.Concurrent = true

	opts, err := AnalysisOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.BasePath, opts.BasePath)
	assert.Equal(t, "compdef.yaml", opts.FilePath)
	assert.Equal(t, graph.PolicyInclude, opts.Policy)
	assert.True(t, opts.Concurrent)

	cfg.ReferencePolicy = "sometimes"
	_, err = AnalysisOptions(cfg)
	assert.Error(t, err)
}

func TestChartOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChartWidth, cfg.ChartHeight = 120, 40

	opts := ChartOptions(cfg)
	assert.Equal(t, 120, opts.Width)
	assert.Equal(t, 40, opts.Height)
}
