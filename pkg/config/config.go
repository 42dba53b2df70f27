// 22 Mar 2023

// Package config holds the settings for all the commands. They are
// unmarshalled from viper, which layers defaults, an optional config
// file and command line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/andrew-torda/metamotif/pkg/align"
	"github.com/andrew-torda/metamotif/pkg/cluster"
	"github.com/andrew-torda/metamotif/pkg/scores"
	"github.com/andrew-torda/metamotif/pkg/search"
)

var ErrConfig = errors.New("bad configuration")

// SearchConfig is for finding significant regions
type SearchConfig struct {
	// significance level of the permutation threshold
	SigP float64 `mapstructure:"sig-p"`

	// windows start at this size and grow up to MaxSize
	SeedSize int `mapstructure:"seed-size"`
	MaxSize  int `mapstructure:"max-size"`

	// positions added each side of a region once it is found
	ExtendFlanks int `mapstructure:"extend-flanks"`

	// number of sums drawn for each threshold
	NSamples int `mapstructure:"n-samples"`

	// random number seed, sequence i uses Seed + i
	Seed int64 `mapstructure:"seed"`

	// "ascending" or "descending" mean score
	Order string `mapstructure:"order"`

	// "auto", "yes" or "no", is the first field of a text score line an id
	ScoreIDs string `mapstructure:"score-ids"`
}

// AlignConfig is for grouping regions into motifs
type AlignConfig struct {
	// "variable" or "fixed"
	Mode string `mapstructure:"mode"`

	MinAgreement     int     `mapstructure:"min-agreement"`
	MinAgreementFrac float64 `mapstructure:"min-agreement-frac"`

	// "dot" or "cosine", only for variable mode
	Similarity string `mapstructure:"similarity"`

	// motifs with less support are not written
	MinSupport int `mapstructure:"min-support"`
	MaxMotifs  int `mapstructure:"max-motifs"`
}

// TransfacConfig is for converting regions to TRANSFAC
type TransfacConfig struct {
	MinCount int `mapstructure:"min-count"`
}

// Config is everything.
type Config struct {
	Search   SearchConfig   `mapstructure:"search"`
	Align    AlignConfig    `mapstructure:"align"`
	Transfac TransfacConfig `mapstructure:"transfac"`
	Alphabet string         `mapstructure:"alphabet"`
	Workers  int            `mapstructure:"workers"`
	Verbose  bool           `mapstructure:"verbose"`
	Quiet    bool           `mapstructure:"quiet"`
}

// SetDefaults puts the defaults into v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("search.sig-p", 0.01)
	v.SetDefault("search.seed-size", 2)
	v.SetDefault("search.max-size", 20)
	v.SetDefault("search.extend-flanks", 0)
	v.SetDefault("search.n-samples", 1000)
	v.SetDefault("search.seed", 1637)
	v.SetDefault("search.order", search.Ascending.String())
	v.SetDefault("search.score-ids", scores.IDAuto.String())

	v.SetDefault("align.mode", "variable")
	v.SetDefault("align.min-agreement", align.DefaultMinAgreement)
	v.SetDefault("align.min-agreement-frac", 0.5)
	v.SetDefault("align.similarity", "dot")
	v.SetDefault("align.min-support", 100)
	v.SetDefault("align.max-motifs", 5)

	v.SetDefault("transfac.min-count", 2)

	v.SetDefault("alphabet", "ACGT")
	v.SetDefault("workers", runtime.NumCPU())
}

// New unmarshals and checks the settings in v.
func New(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	c.Alphabet = strings.ToUpper(c.Alphabet)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default is the configuration with nothing set.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	c, err := New(v)
	if err != nil {
		panic("defaults do not validate: " + err.Error())
	}
	return c
}

// Validate checks ranges. It does not check the search settings
// against the length of any sequence.
func (c *Config) Validate() error {
	s, a := &c.Search, &c.Align
	if _, err := c.SearchOptions(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	switch {
	case s.SigP <= 0 || s.SigP >= 1:
		return fmt.Errorf("%w: search.sig-p %g not in (0,1)", ErrConfig, s.SigP)
	case float64(s.NSamples-1)*s.SigP <= 1:
		return fmt.Errorf("%w: search.n-samples %d too few for sig-p %g", ErrConfig, s.NSamples, s.SigP)
	case a.Mode != "variable" && a.Mode != "fixed":
		return fmt.Errorf("%w: align.mode %q", ErrConfig, a.Mode)
	case a.MinAgreement < 0:
		return fmt.Errorf("%w: align.min-agreement %d", ErrConfig, a.MinAgreement)
	case a.MinAgreementFrac < 0 || a.MinAgreementFrac > 1:
		return fmt.Errorf("%w: align.min-agreement-frac %g not in [0,1]", ErrConfig, a.MinAgreementFrac)
	case a.MinSupport < 0:
		return fmt.Errorf("%w: align.min-support %d", ErrConfig, a.MinSupport)
	case c.Transfac.MinCount < 1:
		return fmt.Errorf("%w: transfac.min-count %d", ErrConfig, c.Transfac.MinCount)
	case len(c.Alphabet) < 1:
		return fmt.Errorf("%w: empty alphabet", ErrConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrConfig, c.Workers)
	}
	if _, err := align.SimilarityByName(a.Similarity); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if _, err := c.IDMode(); err != nil {
		return fmt.Errorf("%w: search.score-ids: %v", ErrConfig, err)
	}
	return nil
}

// IDMode says how to find ids in text score files.
func (c *Config) IDMode() (scores.IDMode, error) {
	return scores.ParseIDMode(c.Search.ScoreIDs)
}

// SearchOptions converts the search section.
func (c *Config) SearchOptions() (search.Options, error) {
	order, err := search.ParseOrder(c.Search.Order)
	if err != nil {
		return search.Options{}, err
	}
	opts := search.Options{
		SeedSize:     c.Search.SeedSize,
		MaxSize:      c.Search.MaxSize,
		ExtendFlanks: c.Search.ExtendFlanks,
		Order:        order,
	}
	return opts, opts.Check()
}

// Spawn makes the accumulator factory for the align section.
func (c *Config) Spawn() (cluster.Spawn, error) {
	if c.Align.Mode == "fixed" {
		return cluster.FixedSpawn(c.Align.MinAgreement), nil
	}
	sim, err := align.SimilarityByName(c.Align.Similarity)
	if err != nil {
		return nil, err
	}
	return cluster.VariableSpawn(cluster.VariablePolicy{
		MinAgreement: float32(c.Align.MinAgreement),
		MinFrac:      float32(c.Align.MinAgreementFrac),
		Sim:          sim,
	}), nil
}
