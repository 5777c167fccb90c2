// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"

	"github.com/iwvelando/cycle-welfare/internal/model"
	"github.com/iwvelando/cycle-welfare/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for cycle-welfare.
type Configuration struct {
	Model        ModelConfig        `yaml:"model,omitempty"`
	Grid         GridConfig         `yaml:"grid,omitempty"`
	Solver       SolverConfig       `yaml:"solver,omitempty"`
	Distribution DistributionConfig `yaml:"distribution,omitempty"`
	Welfare      WelfareConfig      `yaml:"welfare,omitempty"`
	Logging      LoggingConfig      `yaml:"logging,omitempty"`
	Output       OutputConfig       `yaml:"output,omitempty"`
}

// ModelConfig holds the calibrated economy parameters.
type ModelConfig struct {
	PeriodWeeks      int     `yaml:"periodWeeks,omitempty"`
	DiscountFactor   float64 `yaml:"discountFactor,omitempty"`
	RiskAversion     float64 `yaml:"riskAversion,omitempty"`
	Income           float64 `yaml:"income,omitempty"`
	ReplacementRatio float64 `yaml:"replacementRatio,omitempty"`
	SavingReturn     float64 `yaml:"savingReturn,omitempty"`
	BorrowingReturn  float64 `yaml:"borrowingReturn,omitempty"`
	Chain            string  `yaml:"chain,omitempty"` // twoState, fourState
}

// GridConfig holds the asset-grid discretization.
type GridConfig struct {
	AssetMin float64 `yaml:"assetMin,omitempty"`
	AssetMax float64 `yaml:"assetMax,omitempty"`
	Points   int     `yaml:"points,omitempty"`
}

// SolverConfig selects and tunes the dynamic-programming solver.
type SolverConfig struct {
	Method        string  `yaml:"method,omitempty"` // valueIteration, eulerIteration
	Tolerance     float64 `yaml:"tolerance,omitempty"`
	MaxIterations int     `yaml:"maxIterations,omitempty"`
}

// DistributionConfig selects and tunes the stationary-distribution method.
type DistributionConfig struct {
	Method        string  `yaml:"method,omitempty"` // direct, montecarlo
	Tolerance     float64 `yaml:"tolerance,omitempty"`
	MaxIterations int     `yaml:"maxIterations,omitempty"`
	SampleLength  int     `yaml:"sampleLength,omitempty"`
	Seed          int64   `yaml:"seed,omitempty"`
}

// WelfareConfig controls the business-cycle cost comparison.
type WelfareConfig struct {
	// CompareBusinessCycle solves both the four-state risk economy and
	// the two-state baseline and reports the consumption-equivalent
	// welfare loss between them.
	CompareBusinessCycle bool `yaml:"compareBusinessCycle,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ModelParams converts the configuration into model construction
// parameters for the given chain variant. Defaulting and hard validation
// happen in model.New.
func (c *Configuration) ModelParams(chain model.Chain) model.Params {
	grid := c.Grid
	if grid.Points == 0 {
		grid = GridConfig{AssetMin: 0, AssetMax: 8, Points: 301}
	}
	return model.Params{
		PeriodWeeks:      c.Model.PeriodWeeks,
		DiscountFactor:   c.Model.DiscountFactor,
		RiskAversion:     c.Model.RiskAversion,
		Income:           c.Model.Income,
		ReplacementRatio: c.Model.ReplacementRatio,
		SavingReturn:     c.Model.SavingReturn,
		BorrowingReturn:  c.Model.BorrowingReturn,
		Chain:            chain,
		AssetMin:         grid.AssetMin,
		AssetMax:         grid.AssetMax,
		AssetPoints:      grid.Points,
	}
}

// Chain parses the configured income-chain variant.
func (c *Configuration) Chain() (model.Chain, error) {
	return model.ChainFromString(c.Model.Chain)
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings. Hard errors surface later from the constructors.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Distribution.Method == "montecarlo" || c.Distribution.Method == "monte-carlo" {
		if c.Distribution.SampleLength > 0 && c.Distribution.SampleLength < 10000 {
			warnings = append(warnings, fmt.Sprintf("Monte-Carlo sample length %d is short - empirical distribution may be noisy", c.Distribution.SampleLength))
		}
		if c.Distribution.Seed == 0 {
			warnings = append(warnings, fmt.Sprintf("Monte-Carlo seed not set - defaulting to %d for reproducibility", constants.DefaultSeed))
		}
	}

	if c.Solver.Method == "eulerIteration" {
		if c.Grid.AssetMin < 0 && c.Model.BorrowingReturn != 0 && c.Model.BorrowingReturn != c.Model.SavingReturn {
			warnings = append(warnings, "Euler iteration does not support the asymmetric borrowing-rate economy - the solver will reject this model")
		}
	}

	if c.Solver.Tolerance > 1e-3 {
		warnings = append(warnings, fmt.Sprintf("solver tolerance %g is loose - policies may be inaccurate", c.Solver.Tolerance))
	}

	if c.Welfare.CompareBusinessCycle && c.Model.Chain == "twoState" {
		warnings = append(warnings, "welfare comparison always solves both chains - the configured twoState chain only affects single-economy runs")
	}

	return warnings
}
