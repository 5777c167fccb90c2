// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/cycle-welfare/internal/model"
)

// TwoStateModel builds the canonical no-aggregate-risk test economy at a
// reduced grid resolution so solver tests stay fast.
func TwoStateModel(t *testing.T, points int) *model.Model {
	t.Helper()
	m, err := model.New(model.Params{
		ReplacementRatio: 0.25,
		Chain:            model.TwoStateChain,
		AssetMin:         0,
		AssetMax:         8,
		AssetPoints:      points,
	})
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	return m
}

// FourStateModel builds the canonical business-cycle test economy.
func FourStateModel(t *testing.T, points int) *model.Model {
	t.Helper()
	m, err := model.New(model.Params{
		ReplacementRatio: 0.25,
		Chain:            model.FourStateChain,
		AssetMin:         0,
		AssetMax:         8,
		AssetPoints:      points,
	})
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	return m
}

// BorrowingModel builds the asymmetric-rate borrowing economy used by the
// negative-asset scenarios.
func BorrowingModel(t *testing.T, points int) *model.Model {
	t.Helper()
	m, err := model.New(model.Params{
		ReplacementRatio: 0.25,
		Chain:            model.FourStateChain,
		AssetMin:         -8,
		AssetMax:         8,
		AssetPoints:      points,
	})
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	return m
}
