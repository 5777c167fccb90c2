package experiment

import (
	"testing"

	"github.com/iwvelando/cycle-welfare/internal/config"
	"go.uber.org/zap"
)

func coarseConfiguration() config.Configuration {
	return config.Configuration{
		Model: config.ModelConfig{
			ReplacementRatio: 0.25,
		},
		Grid: config.GridConfig{
			AssetMin: 0,
			AssetMax: 8,
			Points:   61,
		},
	}
}

func TestRunSingleEconomy(t *testing.T) {
	conf := coarseConfiguration()
	conf.Model.Chain = "twoState"

	result, err := Run(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Economies) != 1 {
		t.Fatalf("Run() produced %d economies, expected 1", len(result.Economies))
	}
	if result.HasWelfareLoss {
		t.Errorf("single-economy run reported a welfare loss")
	}

	eco := result.Economies[0]
	if eco.States != 2 {
		t.Errorf("economy has %d states, expected 2", eco.States)
	}
	if !eco.Converged {
		t.Errorf("value iteration did not converge in %d iterations", eco.Iterations)
	}
	if !eco.HasValue {
		t.Errorf("value iteration produced no expected value")
	}
	if eco.MeanConsumption <= 0 {
		t.Errorf("mean consumption %.6f not positive", eco.MeanConsumption)
	}
	if eco.MeanAssets < 0 {
		t.Errorf("mean assets %.6f negative in a no-borrowing economy", eco.MeanAssets)
	}
}

func TestRunBusinessCycleComparison(t *testing.T) {
	conf := coarseConfiguration()
	conf.Welfare.CompareBusinessCycle = true

	result, err := Run(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Economies) != 2 {
		t.Fatalf("Run() produced %d economies, expected 2", len(result.Economies))
	}
	if !result.HasWelfareLoss {
		t.Fatalf("comparison run reported no welfare loss")
	}
	if result.Economies[0].States != 4 || result.Economies[1].States != 2 {
		t.Errorf("economy ordering = (%d, %d) states, expected (4, 2)", result.Economies[0].States, result.Economies[1].States)
	}
	// Coarse grids shift the level but not the order of magnitude.
	if result.WelfareLoss < -0.01 || result.WelfareLoss > 0.2 {
		t.Errorf("welfare loss %.6f outside plausible range", result.WelfareLoss)
	}
}

func TestRunEulerComparisonUsesConsumptionBaseline(t *testing.T) {
	conf := coarseConfiguration()
	conf.Welfare.CompareBusinessCycle = true
	conf.Solver.Method = "eulerIteration"
	conf.Distribution.Method = "montecarlo"
	conf.Distribution.SampleLength = 20000
	conf.Distribution.Seed = 5

	result, err := Run(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.HasWelfareLoss {
		t.Fatalf("comparison run reported no welfare loss")
	}
	for _, eco := range result.Economies {
		if eco.HasValue {
			t.Errorf("euler-solved economy %s unexpectedly carries a value function", eco.Name)
		}
		if eco.SolverMethod != "eulerIteration" {
			t.Errorf("economy %s solver = %s, expected eulerIteration", eco.Name, eco.SolverMethod)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	conf := coarseConfiguration()
	conf.Welfare.CompareBusinessCycle = true
	conf.Distribution.Method = "montecarlo"
	conf.Distribution.SampleLength = 10000
	conf.Distribution.Seed = 9

	first, err := Run(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := Run(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first.WelfareLoss != second.WelfareLoss {
		t.Errorf("welfare loss differs across identical runs: %.12f vs %.12f", first.WelfareLoss, second.WelfareLoss)
	}
	for i := range first.Economies {
		if first.Economies[i].MeanConsumption != second.Economies[i].MeanConsumption {
			t.Errorf("economy %s mean consumption differs across identical runs", first.Economies[i].Name)
		}
	}
}

func TestRunRejectsUnknownMethods(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Configuration)
	}{
		{
			name:   "Unknown solver",
			mutate: func(c *config.Configuration) { c.Solver.Method = "newton" },
		},
		{
			name:   "Unknown distribution",
			mutate: func(c *config.Configuration) { c.Distribution.Method = "spectral" },
		},
		{
			name:   "Unknown chain",
			mutate: func(c *config.Configuration) { c.Model.Chain = "sixState" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := coarseConfiguration()
			tt.mutate(&conf)
			if _, err := Run(zap.NewNop(), conf); err == nil {
				t.Errorf("Run() accepted invalid configuration")
			}
		})
	}
}

func TestRunFullResolutionConsumptionLoss(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-resolution welfare comparison in short mode")
	}

	conf := config.Configuration{
		Model: config.ModelConfig{
			ReplacementRatio: 0.25,
			RiskAversion:     1.5,
		},
		Grid: config.GridConfig{
			AssetMin: 0,
			AssetMax: 8,
			Points:   301,
		},
		Welfare: config.WelfareConfig{CompareBusinessCycle: true},
	}

	result, err := Run(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.HasWelfareLoss {
		t.Fatalf("comparison run reported no welfare loss")
	}
	// The cost of business cycles is a small positive number in this
	// class of model.
	if result.WelfareLoss <= 0 || result.WelfareLoss > 0.1 {
		t.Errorf("welfare loss %.6f outside expected (0, 0.1] range", result.WelfareLoss)
	}
}
