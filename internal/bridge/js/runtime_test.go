package js

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/algohost/internal/algorithm"
	"github.com/betbot/algohost/internal/bridge"
	"github.com/betbot/algohost/internal/bridge/bridgetest"
)

const sampleScript = `
function Initialize() {
  SetCash(1000);
}

function OnData(data) {
  AttachDebugger();
  var cash = Cash();
  Log("OnData: data = " + data + ", cash = " + cash);
}
`

func TestJSAlgorithm_Lifecycle(t *testing.T) {
	path := bridgetest.WriteScript(t, "algorithm.js", sampleScript)
	a, err := algorithm.New(Name, algorithm.Options{Script: path})
	require.NoError(t, err)
	bridgetest.RunLifecycle(t, a)
}

func TestJSAlgorithm_MissingHook(t *testing.T) {
	path := bridgetest.WriteScript(t, "algorithm.js", "function OnData(data) {}")
	_, err := Load(path, bridge.NewHost(Name))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Initialize")
}

func TestJSAlgorithm_HostErrorIsCatchable(t *testing.T) {
	path := bridgetest.WriteScript(t, "algorithm.js", `
var caught = false;
function Initialize() { SetCash(1000); }
function OnData(data) {
  try { SetCash(5); } catch (e) { caught = true; }
  if (!caught) { throw new Error("expected SetCash to throw"); }
}
`)
	a, err := algorithm.New(Name, algorithm.Options{Script: path})
	require.NoError(t, err)
	require.NoError(t, a.Initialize(algorithm.NewPortfolio()))
	assert.NoError(t, a.OnData("tick", algorithm.NewPortfolio().View()))
}

func TestJSAlgorithm_ThrowIsError(t *testing.T) {
	path := bridgetest.WriteScript(t, "algorithm.js", `
function Initialize() {}
function OnData(data) { throw new Error("bad tick " + data); }
`)
	a, err := algorithm.New(Name, algorithm.Options{Script: path})
	require.NoError(t, err)
	err = a.OnData("42", algorithm.NewPortfolio().View())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad tick 42")
}

func TestJSScript_Close(t *testing.T) {
	path := bridgetest.WriteScript(t, "algorithm.js", sampleScript)
	s, err := Load(path, bridge.NewHost(Name))
	require.NoError(t, err)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
