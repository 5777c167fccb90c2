package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/iwvelando/cycle-welfare/internal/experiment"
)

func sampleResult() *experiment.Result {
	return &experiment.Result{
		Economies: []experiment.EconomySummary{
			{
				Name:                   "businessCycle",
				States:                 4,
				SolverMethod:           "valueIteration",
				Iterations:             1234,
				Converged:              true,
				DistributionMethod:     "direct",
				DistributionIterations: 321,
				DistributionConverged:  true,
				ExpectedValue:          -85.123456,
				HasValue:               true,
				MeanAssets:             1.4321,
				MeanConsumption:        0.9618,
			},
			{
				Name:                   "noAggregateRisk",
				States:                 2,
				SolverMethod:           "valueIteration",
				Iterations:             1101,
				Converged:              true,
				DistributionMethod:     "direct",
				DistributionIterations: 298,
				DistributionConverged:  true,
				ExpectedValue:          -84.987654,
				HasValue:               true,
				MeanAssets:             1.2345,
				MeanConsumption:        0.9702,
			},
		},
		WelfareLoss:    0.0031,
		HasWelfareLoss: true,
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestPrettyFormat(t *testing.T) {
	output := captureStdout(t, func() { PrettyFormat(sampleResult()) })

	if !strings.Contains(output, "--- Results for economy businessCycle (4 states) ---") {
		t.Errorf("PrettyFormat missing economy header")
	}
	if !strings.Contains(output, "valueIteration (1,234 iterations, converged=true)") {
		t.Errorf("PrettyFormat missing solver line")
	}
	if !strings.Contains(output, "Mean assets     | 1.4321") {
		t.Errorf("PrettyFormat missing mean assets")
	}
	if !strings.Contains(output, "Expected value  | -85.123456") {
		t.Errorf("PrettyFormat missing expected value")
	}
	if !strings.Contains(output, "Consumption-equivalent cost of business cycles: 0.3100%") {
		t.Errorf("PrettyFormat missing welfare loss line")
	}
}

func TestPrettyFormatWithoutValue(t *testing.T) {
	result := sampleResult()
	result.Economies = result.Economies[:1]
	result.Economies[0].HasValue = false
	result.HasWelfareLoss = false

	output := captureStdout(t, func() { PrettyFormat(result) })
	if strings.Contains(output, "Expected value") {
		t.Errorf("PrettyFormat printed an expected value for a value-free economy")
	}
	if strings.Contains(output, "cost of business cycles") {
		t.Errorf("PrettyFormat printed a welfare loss for a single-economy run")
	}
}

func TestCsvFormat(t *testing.T) {
	output := captureStdout(t, func() { CsvFormat(sampleResult()) })

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 4 {
		t.Fatalf("CsvFormat produced %d lines, expected 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], `"economy","states","solver"`) {
		t.Errorf("CsvFormat missing header row: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"businessCycle","4","valueIteration","1234"`) {
		t.Errorf("CsvFormat missing first economy row: %s", lines[1])
	}
	if !strings.Contains(lines[3], `"welfareLoss","0.00310000"`) {
		t.Errorf("CsvFormat missing welfare loss row: %s", lines[3])
	}
}
