package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/algohost/internal/algorithm"
	_ "github.com/betbot/algohost/internal/strategies/sample"
	"github.com/betbot/algohost/pkg/config"
	"github.com/betbot/algohost/pkg/debuggate"
)

var errTick = errors.New("tick failed")

type failingAlgorithm struct {
	closed bool
}

func (a *failingAlgorithm) ID() string { return "failing" }
func (a *failingAlgorithm) Initialize(algorithm.Setup) error { return nil }
func (a *failingAlgorithm) OnData(string, algorithm.PortfolioView) error { return errTick }
func (a *failingAlgorithm) Close() error { a.closed = true; return nil }

var lastFailing *failingAlgorithm

func init() {
	algorithm.Register("failing-test", func(algorithm.Options) (algorithm.Algorithm, error) {
		lastFailing = &failingAlgorithm{}
		return lastFailing, nil
	})
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func onDataMessages(hook *test.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if strings.HasPrefix(e.Message, "OnData:") {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestEngine_RunsSampleAlgorithm(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	e := New(Options{Algorithm: "sample", Ticks: 3, Now: fixedNow})
	summary, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Ticks)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "Algorithm.Portfolio.Cash: 1000", summary.String())

	msgs := onDataMessages(hook)
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, "OnData: data = 2024-01-02T03:04:05Z, cash = 1000", m)
	}
}

func TestEngine_DataAttachPointGatesEveryTick(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	var out bytes.Buffer
	det := debuggate.NewFlagDetector()
	det.Attach("dlv (pid 1)")
	gate := debuggate.New(debuggate.PauseUntilAttached, debuggate.WithDetector(det), debuggate.WithOutput(&out))

	e := New(Options{Algorithm: "sample", Gate: gate, AttachPoint: config.AttachPointData, Ticks: 2, Now: fixedNow})
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out.String(), "Waiting for debugger to attach..."))
	assert.Equal(t, 2, strings.Count(out.String(), "dlv (pid 1) debugger attached"))
}

func TestEngine_LoadAttachPointGatesOnce(t *testing.T) {
	var out bytes.Buffer
	det := debuggate.NewFlagDetector()
	det.Attach("dlv (pid 1)")
	gate := debuggate.New(debuggate.PauseUntilAttached, debuggate.WithDetector(det), debuggate.WithOutput(&out))

	e := New(Options{Algorithm: "sample", Gate: gate, AttachPoint: config.AttachPointLoad, Ticks: 3, Now: fixedNow})
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out.String(), "Waiting for debugger to attach..."))
}

func TestEngine_CancelledBetweenTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(Options{Algorithm: "sample", Ticks: 3, Now: fixedNow})
	summary, err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.Ticks)
	assert.Equal(t, "Algorithm.Portfolio.Cash: 1000", summary.Portfolio)
}

func TestEngine_OnDataErrorAbortsAndCloses(t *testing.T) {
	e := New(Options{Algorithm: "failing-test", Ticks: 3})
	_, err := e.Run(context.Background())
	assert.ErrorIs(t, err, errTick)
	require.NotNil(t, lastFailing)
	assert.True(t, lastFailing.closed)
}

func TestEngine_UnknownAlgorithm(t *testing.T) {
	_, err := New(Options{Algorithm: "nope"}).Run(context.Background())
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Debug:     config.DebugConfig{Mode: "pause", AttachPoint: config.AttachPointLoad, PollInterval: time.Second},
		Algorithm: config.AlgorithmConfig{Name: "sample"},
		Feed:      config.FeedConfig{Ticks: 4},
	}
	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, debuggate.PauseUntilAttached, opts.Gate.Mode())
	assert.Equal(t, config.AttachPointLoad, opts.AttachPoint)
	assert.Equal(t, 4, opts.Ticks)
}
