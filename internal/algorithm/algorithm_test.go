package algorithm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAlgorithm struct{}

func (stubAlgorithm) ID() string { return "stub" }
func (stubAlgorithm) Initialize(Setup) error { return nil }
func (stubAlgorithm) OnData(string, PortfolioView) error { return nil }

func TestPortfolio_ViewIsSnapshot(t *testing.T) {
	p := NewPortfolio()
	p.SetCash(decimal.NewFromInt(1000))

	view := p.View()
	p.SetCash(decimal.NewFromInt(5))

	assert.True(t, view.Cash().Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Algorithm.Portfolio.Cash: 5", p.String())

	// 快照不暴露 SetCash
	_, mutable := view.(Setup)
	assert.False(t, mutable)
}

func TestRegistry(t *testing.T) {
	Register("stub-test", func(Options) (Algorithm, error) { return stubAlgorithm{}, nil })

	a, err := New("stub-test", Options{})
	require.NoError(t, err)
	assert.Equal(t, "stub", a.ID())
	assert.Contains(t, Registered(), "stub-test")

	_, err = New("missing", Options{})
	assert.Error(t, err)

	assert.Panics(t, func() {
		Register("stub-test", func(Options) (Algorithm, error) { return stubAlgorithm{}, nil })
	})
}
