package universe

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

func newTestSimulation(t *testing.T, w uint32, h uint32, mutate func(o *Options)) (*Simulation, chan Status) {
	t.Helper()
	o := DefaultOptions
	o.Width = w
	o.Height = h
	o.Interval = 0
	if mutate != nil {
		mutate(&o)
	}
	stateCh := make(chan Status, 1000)
	s := NewSimulation(&o, stateCh)
	t.Cleanup(s.Close)
	return s, stateCh
}

//waitFor reads statuses until one with the mode arrives
func waitFor(t *testing.T, stateCh chan Status, mode RunningState) Status {
	t.Helper()
	timeout := time.After(waitTimeout)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == mode {
				return st
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %v", mode)
		}
	}
}

type countingViewer struct {
	mu        sync.Mutex
	refreshes int
	runner    Runner
}

func (v *countingViewer) Refresh() {
	v.mu.Lock()
	v.refreshes++
	v.mu.Unlock()
}

func (v *countingViewer) Register(r Runner) { v.runner = r }

func (v *countingViewer) Start() {}

func (v *countingViewer) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshes
}

func TestSimulation_NewIsEmpty(t *testing.T) {
	s, _ := newTestSimulation(t, 8, 4, nil)
	snap := s.Snapshot()
	require.Equal(t, uint32(8), snap.Width)
	require.Equal(t, uint32(4), snap.Height)
	require.Len(t, snap.Cells, 32)
	require.Equal(t, RunningStateManual, s.Status().RunningMode)
	require.Equal(t, "double-buffered torus", s.Options().Advanced["engine"])
}

func TestSimulation_NilOptions(t *testing.T) {
	s := NewSimulation(nil, nil)
	defer s.Close()
	require.Equal(t, uint32(DefWidth), s.Options().Width)
	require.Equal(t, uint32(DefHeight), s.Snapshot().Height)
}

func TestSimulation_SettleTemplate(t *testing.T) {
	s, _ := newTestSimulation(t, 6, 6, nil)
	s.SettleTemplate("block")
	s.Flush()

	snap := s.Snapshot()
	require.Equal(t, "☐☐☐☐☐☐\n☐■■☐☐☐\n☐■■☐☐☐\n☐☐☐☐☐☐\n☐☐☐☐☐☐\n☐☐☐☐☐☐\n", snap.Text)
	require.Equal(t, 4, s.Status().LiveCells)
}

func TestSimulation_SettleTemplateUnknown(t *testing.T) {
	s, _ := newTestSimulation(t, 6, 6, nil)
	s.SettleTemplate("no such template")
	s.Flush()
	require.Equal(t, 0, s.Status().LiveCells)
}

func TestSimulation_SettleTemplateWithGlider(t *testing.T) {
	s, _ := newTestSimulation(t, 5, 5, nil)
	s.SettleTemplate("glider")
	s.Flush()
	require.Equal(t, 5, s.Status().LiveCells)
	require.Equal(t, "■☐☐☐☐\n☐■■☐☐\n■■☐☐☐\n☐☐☐☐☐\n☐☐☐☐☐\n", s.Snapshot().Text)
}

func TestSimulation_SettleSkipsOutsideCells(t *testing.T) {
	s, _ := newTestSimulation(t, 3, 3, nil)
	s.Settle([]Coord{{0, 0}, {3, 0}, {0, 3}, {2, 2}})
	s.Flush()
	require.Equal(t, 2, s.Status().LiveCells)
}

func TestSimulation_AddTemplate(t *testing.T) {
	s, _ := newTestSimulation(t, 4, 4, nil)
	s.AddTemplate(Template{Name: "corner", Coordinates: []Coord{{3, 3}}})
	require.Len(t, s.Templates(), len(BuiltinTemplates)+1)

	s.SettleTemplate("corner")
	s.Flush()
	require.Equal(t, Alive, s.Snapshot().Cells[15])
}

func TestSimulation_InverseCell(t *testing.T) {
	s, _ := newTestSimulation(t, 4, 3, nil)
	s.InverseCell(2, 3)
	s.InverseCell(5, 5) //ignored
	s.Flush()
	snap := s.Snapshot()
	require.Equal(t, Alive, snap.Cells[11])
	require.Equal(t, 1, s.Status().LiveCells)

	s.InverseCell(2, 3)
	s.Flush()
	require.Equal(t, 0, s.Status().LiveCells)
}

func TestSimulation_InsertGlider(t *testing.T) {
	s, _ := newTestSimulation(t, 5, 5, nil)
	s.InsertGlider(0, 0)
	s.Flush()
	require.Equal(t, "■■☐☐☐\n■☐☐☐■\n☐☐☐☐☐\n☐☐☐☐☐\n☐☐☐☐■\n", s.Snapshot().Text)
}

func TestSimulation_StepBlinker(t *testing.T) {
	s, stateCh := newTestSimulation(t, 5, 5, nil)
	s.SettleTemplate("blinker")
	s.Flush()

	s.Step()
	waitFor(t, stateCh, RunningStateStep)
	st := waitFor(t, stateCh, RunningStateManual)
	require.Equal(t, 1, st.IterationNum)
	require.Equal(t, 3, st.LiveCells)
	require.Equal(t, "☐☐☐☐☐\n☐☐■☐☐\n☐☐■☐☐\n☐☐■☐☐\n☐☐☐☐☐\n", s.Snapshot().Text)
}

func TestSimulation_RunFinishesOnStillLife(t *testing.T) {
	s, stateCh := newTestSimulation(t, 6, 6, nil)
	s.SettleTemplate("block")
	s.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	require.Equal(t, 1, st.IterationNum)
	require.Equal(t, 4, st.LiveCells)
}

func TestSimulation_RunFinishesOnExtinction(t *testing.T) {
	s, stateCh := newTestSimulation(t, 6, 6, nil)
	s.Settle([]Coord{{2, 2}})
	s.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	require.Equal(t, 1, st.IterationNum)
	require.Equal(t, 0, st.LiveCells)
}

func TestSimulation_RunFinishesOnMaxSteps(t *testing.T) {
	s, stateCh := newTestSimulation(t, 5, 5, func(o *Options) { o.MaxSteps = 3 })
	s.SettleTemplate("blinker")
	s.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	require.Equal(t, 3, st.IterationNum)
	require.Equal(t, 3, st.LiveCells)
}

func TestSimulation_StopAndClear(t *testing.T) {
	s, stateCh := newTestSimulation(t, 10, 10, func(o *Options) {
		o.MaxSteps = 0
		o.Interval = time.Millisecond
	})
	s.SettleTemplate("glider")
	s.Run()
	waitFor(t, stateCh, RunningStateRun)
	s.Stop()
	waitFor(t, stateCh, RunningStateManual)

	s.Clear()
	s.Flush()
	st := s.Status()
	require.Equal(t, 0, st.IterationNum)
	require.Equal(t, 0, st.LiveCells)
	require.NotEqual(t, RunningStateRun, st.RunningMode)
	for _, c := range s.Snapshot().Cells {
		require.Equal(t, Dead, c)
	}
}

func TestSimulation_Resize(t *testing.T) {
	s, _ := newTestSimulation(t, 4, 4, nil)
	s.SettleTemplate("block")
	s.Resize(7, 3)
	s.Flush()

	snap := s.Snapshot()
	require.Equal(t, uint32(7), snap.Width)
	require.Equal(t, uint32(3), snap.Height)
	require.Len(t, snap.Cells, 21)
	for _, c := range snap.Cells {
		require.Equal(t, Dead, c)
	}
	require.Equal(t, uint32(7), s.Options().Width)
	require.Equal(t, 0, s.Status().LiveCells)
}

func TestSimulation_SettleWithRandomDataIsSeeded(t *testing.T) {
	const seed = 1234
	s, _ := newTestSimulation(t, 12, 9, func(o *Options) { o.Seed = seed })
	s.SettleWithRandomData()
	s.Flush()

	expected := NewWithSource(12, 9, rand.New(rand.NewPCG(seed, 0)))
	require.Equal(t, expected.Cells(), s.Snapshot().Cells)
	require.Equal(t, expected.LiveCells(), s.Status().LiveCells)
	require.Equal(t, uint64(seed), s.Options().Advanced["seed"])
}

func TestSimulation_RefreshesViewers(t *testing.T) {
	s, _ := newTestSimulation(t, 4, 4, nil)
	v := &countingViewer{}
	s.RegisterViewer(v)
	require.Equal(t, Runner(s), v.runner)

	s.InverseCell(1, 1)
	s.Step()
	s.Flush()
	require.GreaterOrEqual(t, v.count(), 2)
}

func TestRunningState_String(t *testing.T) {
	require.Equal(t, "waiting", RunningStateManual.String())
	require.Equal(t, "running", RunningStateRun.String())
	require.Equal(t, "finished", RunningStateFinished.String())
	require.Equal(t, "unknown", RunningState(42).String())
}
