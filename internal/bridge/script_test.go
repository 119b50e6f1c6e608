package bridge

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/algohost/internal/algorithm"
)

// fakeScript 直接调用宿主函数，模拟脚本行为
type fakeScript struct {
	host     *Host
	onData   func(data string) error
	closed   int
	panicked bool
}

func (s *fakeScript) CallInitialize() error {
	return s.host.SetCash(1000)
}

func (s *fakeScript) CallOnData(data string) error {
	if s.panicked {
		panic("script exploded")
	}
	return s.onData(data)
}

func (s *fakeScript) Close() error {
	s.closed++
	return nil
}

func TestAlgorithm_HostPhases(t *testing.T) {
	host := NewHost("fake")
	var seen float64
	s := &fakeScript{host: host}
	s.onData = func(string) error {
		cash, err := host.Cash()
		seen = cash
		if err != nil {
			return err
		}
		// OnData 期间不能修改资金
		return host.SetCash(1)
	}
	a := NewAlgorithm("fake", host, s)

	portfolio := algorithm.NewPortfolio()
	require.NoError(t, a.Initialize(portfolio))
	assert.True(t, portfolio.Cash().Equal(decimal.NewFromInt(1000)))

	err := a.OnData("tick", portfolio.View())
	assert.ErrorIs(t, err, ErrNotInitializing)
	assert.Equal(t, 1000.0, seen)

	// 回调之外没有快照
	_, err = host.Cash()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestAlgorithm_RecoversPanic(t *testing.T) {
	host := NewHost("fake")
	a := NewAlgorithm("fake", host, &fakeScript{host: host, panicked: true})

	err := a.OnData("tick", algorithm.NewPortfolio().View())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake.OnData panic: script exploded")
}

func TestAlgorithm_CloseOnce(t *testing.T) {
	host := NewHost("fake")
	s := &fakeScript{host: host}
	a := NewAlgorithm("fake", host, s)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Equal(t, 1, s.closed)
	assert.Error(t, a.Initialize(algorithm.NewPortfolio()))
}

func TestLoad_EmptyPathAndLoadError(t *testing.T) {
	boom := errors.New("boom")
	rt := Runtime{Name: "fake", Load: func(string, *Host) (Script, error) { return nil, boom }}

	_, err := Load(rt, "")
	assert.Error(t, err)

	_, err = Load(rt, "algo.fake")
	assert.ErrorIs(t, err, boom)
}
