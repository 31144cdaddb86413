package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/ohclust"
)

const sampleYAML = `
source:
  driver: sqlite
  path: cplop.db
  isolates: [Sw-020, Sw-021]
clustering:
  thresholds: [0.99, 0.97, 0.995]
  distance: false
  strategy: stable
  workers: 4
  metrics:
    pyroprint: pearson
ontology:
  name: root
  partitions:
    - name: Cow
    - name: Human
      time_sensitive: true
      partitions:
        - name: "2011"
        - name: "2012"
logging:
  level: debug
`

func TestParse_Sample(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "cplop.db", cfg.Source.Path)
	assert.Equal(t, []string{"Sw-020", "Sw-021"}, cfg.Source.Isolates)
	assert.Equal(t, []float64{0.99, 0.97, 0.995}, cfg.Clustering.Thresholds, "threshold order is kept")
	assert.Equal(t, "stable", cfg.Clustering.Strategy)
	assert.Equal(t, "average", cfg.Clustering.Metrics.Cluster, "unset metric levels keep defaults")

	onto, err := cfg.BuildOntology()
	require.NoError(t, err)
	human, ok := onto.Find("Human")
	require.True(t, ok)
	assert.True(t, human.IsTimeSensitive())
	assert.Len(t, human.Partitions(), 2)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("clustering:\n  treshold: [0.9]\n"))
	assert.Error(t, err)
}

func TestDefault_NeedsSourcePath(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Path")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no thresholds", func(c *Config) { c.Clustering.Thresholds = nil }, true},
		{"bad driver", func(c *Config) { c.Source.Driver = "postgres" }, true},
		{"bad strategy", func(c *Config) { c.Clustering.Strategy = "fast" }, true},
		{"negative workers", func(c *Config) { c.Clustering.Workers = -1 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"unnamed term", func(c *Config) {
			c.Ontology = &ohclust.TermSpec{Name: "root", Partitions: []ohclust.TermSpec{{}}}
		}, true},
		{"duplicate term", func(c *Config) {
			c.Ontology = &ohclust.TermSpec{Name: "root", Partitions: []ohclust.TermSpec{{Name: "a"}, {Name: "a"}}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Source.Path = "data.db"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_UnknownMetric(t *testing.T) {
	cfg := Default()
	cfg.Source.Path = "data.db"
	cfg.Clustering.Metrics.Pyroprint = "spearman"
	cfg.Clustering.Metrics.Cluster = "ward"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ohclust.ErrUnknownMetric))
	assert.Contains(t, err.Error(), "spearman")
	assert.Contains(t, err.Error(), "ward")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	t.Setenv("OHCLUST_LOG_LEVEL", "trace")
	t.Setenv("OHCLUST_THRESHOLDS", "0.9, 0.8")
	t.Setenv("OHCLUST_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, []float64{0.9, 0.8}, cfg.Clustering.Thresholds)
	assert.Equal(t, 2, cfg.Clustering.Workers)
}

func TestLoad_BadWorkersEnv(t *testing.T) {
	t.Setenv("OHCLUST_WORKERS", "many")
	_, err := Load("")
	assert.Error(t, err)
}

func TestParseThresholds(t *testing.T) {
	ts, err := ParseThresholds("0.995,0.99, ,0.97")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.995, 0.99, 0.97}, ts)

	_, err = ParseThresholds("0.9,high")
	assert.Error(t, err)
}

func TestEngine(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	eng := cfg.Engine(nil)
	assert.Equal(t, ohclust.StrategyStable, eng.Strategy)
	assert.Equal(t, 4, eng.Workers)
	assert.Equal(t, ohclust.Similarity, eng.Polarity())
}
