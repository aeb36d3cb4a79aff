package universe

import (
	"math/rand/v2"
	"sync"
	"time"

	"toruslife/src/diagnostics"
)

//Options represents the Simulation's configurable options
type Options struct {
	Width           uint32
	Height          uint32
	Interval        time.Duration
	MaxSteps        int
	MaxSkippedTicks int
	Seed            uint64                 //seed for random data, 0 means not deterministic
	Advanced        map[string]interface{} //advanced options (engine specific)
}

//Status represents the status of the Simulation at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
}

//Snapshot is a copy of the grid taken at one moment
type Snapshot struct {
	Width  uint32
	Height uint32
	Cells  []Cell
	Text   string
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(r Runner)
	Start()
}

//The simulation running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 64
	DefHeight             = 32
	DefMaxSkippedTicks    = 5
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "waiting"
	case RunningStateStep:
		return "do the step"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}

var DefaultOptions = Options{
	Width:           DefWidth,
	Height:          DefHeight,
	Interval:        DefSimulationInterval,
	MaxSteps:        DefMaxSteps,
	MaxSkippedTicks: DefMaxSkippedTicks,
}

//Simulation drives one Universe.
//Every command is applied on a single goroutine (the main loop) so the Universe is never used concurrently.
type Simulation struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	grid struct {
		*Universe
		sync.Mutex
	}
	rnd       RandomSource
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
	controlCh chan func()
	closeCh   chan bool
	doneCh    chan struct{} //closed when the main loop exits
}

//NewSimulation creates the Simulation with an empty universe and starts its main loop
func NewSimulation(o *Options, stateCh chan Status) *Simulation {
	if o == nil {
		d := DefaultOptions
		o = &d
	}
	opts := *o
	opts.Advanced = map[string]interface{}{
		"engine":  "double-buffered torus",
		"density": AliveProbability,
	}

	s := Simulation{
		options:   opts,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		doneCh:    make(chan struct{}),
		stateCh:   stateCh,
		templates: map[string]Template{},
	}
	if opts.Seed != 0 {
		s.rnd = rand.New(rand.NewPCG(opts.Seed, 0))
		s.options.Advanced["seed"] = opts.Seed
	}
	for _, t := range BuiltinTemplates {
		s.AddTemplate(t)
	}
	s.grid.Universe = Empty(opts.Width, opts.Height)
	s.refreshView()
	go s.mainLoop()
	return &s
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (s *Simulation) AddTemplate(tmpl Template) {
	s.state.Lock()
	s.templates[tmpl.Name] = tmpl
	s.state.Unlock()
}

//Templates returns the registered templates
func (s *Simulation) Templates() []Template {
	s.state.Lock()
	defer s.state.Unlock()
	res := make([]Template, 0, len(s.templates))
	for _, t := range s.templates {
		res = append(res, t)
	}
	return res
}

//Settle makes the cells alive, coordinates outside the grid are skipped
func (s *Simulation) Settle(coords []Coord) {
	s.controlCh <- func() {
		s.settle(Template{Coordinates: coords})
		s.refreshView()
	}
}

//SettleTemplate populates the universe with the seeding template
func (s *Simulation) SettleTemplate(name string) {
	s.state.Lock()
	tmpl, ok := s.templates[name]
	s.state.Unlock()
	if !ok {
		return
	}
	s.controlCh <- func() {
		s.settle(tmpl)
		s.refreshView()
	}
}

//SettleWithRandomData replaces the universe with the randomly seeded one of the same size
func (s *Simulation) SettleWithRandomData() {
	mode := s.runningMode()
	if mode != RunningStateManual && mode != RunningStateFinished {
		return
	}
	s.controlCh <- s.clear
	s.controlCh <- func() {
		s.grid.Lock()
		s.grid.Universe = NewWithSource(s.grid.Width(), s.grid.Height(), s.rnd)
		live := s.grid.LiveCells()
		s.grid.Unlock()
		s.setLiveCells(live)
		s.refreshView()
	}
}

//InverseCell inverses the cell state at row, col
func (s *Simulation) InverseCell(row uint32, col uint32) {
	s.controlCh <- func() {
		s.grid.Lock()
		if !s.grid.Contains(row, col) {
			s.grid.Unlock()
			return
		}
		s.grid.ToggleCell(row, col)
		live := s.grid.LiveCells()
		s.grid.Unlock()
		s.setLiveCells(live)
		s.refreshView()
	}
}

//InsertGlider stamps a glider centred at row, col
func (s *Simulation) InsertGlider(row uint32, col uint32) {
	s.controlCh <- func() {
		s.settle(Template{Gliders: []Coord{{Row: row, Col: col}}})
		s.refreshView()
	}
}

//Resize changes the dimensions, all cells are killed and the counters are reset
func (s *Simulation) Resize(width uint32, height uint32) {
	s.controlCh <- func() {
		s.grid.Lock()
		s.grid.SetWidth(width)
		s.grid.SetHeight(height)
		s.grid.Unlock()
		s.state.Lock()
		s.options.Width = width
		s.options.Height = height
		s.state.Unlock()
		s.clear()
	}
}

//RegisterViewer registers the viewer - the simulation will call the viewer when the state is changed
func (s *Simulation) RegisterViewer(v Viewer) {
	s.views = append(s.views, v)
	v.Register(s)
}

//StateCh returns the channel with the simulation's status updates
func (s *Simulation) StateCh() chan Status {
	return s.stateCh
}

//Status returns current simulation status represented by Status struct
func (s *Simulation) Status() Status {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Status
}

//Options returns current simulation configuration represented by Options struct
func (s *Simulation) Options() Options {
	s.state.Lock()
	defer s.state.Unlock()
	return s.options
}

//Snapshot returns the copy of the current grid
func (s *Simulation) Snapshot() Snapshot {
	s.grid.Lock()
	defer s.grid.Unlock()
	cells := make([]Cell, len(s.grid.Cells()))
	copy(cells, s.grid.Cells())
	return Snapshot{
		Width:  s.grid.Width(),
		Height: s.grid.Height(),
		Cells:  cells,
		Text:   s.grid.Render(),
	}
}

//Run starts the simulation, returns immediately
func (s *Simulation) Run() {
	s.controlCh <- s.run
}

//Stop stops the simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (s *Simulation) Stop() {
	s.controlCh <- s.stop
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (s *Simulation) Step() {
	s.controlCh <- s.step
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (s *Simulation) Clear() {
	s.controlCh <- s.clear
}

//Flush blocks until all the commands queued before it are applied.
//It must not be called from a Viewer's Refresh.
func (s *Simulation) Flush() {
	done := make(chan struct{})
	s.controlCh <- func() { close(done) }
	<-done
}

//Close stops the main loop, close the channels, returns immediately
func (s *Simulation) Close() {
	s.closeCh <- true
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (s *Simulation) mainLoop() {
	defer diagnostics.Recover()
	defer close(s.doneCh)
	var c = false
	for !c {
		select {
		case cmd := <-s.controlCh:
			cmd()
		case c = <-s.closeCh:
		}
	}
}

//settle places the template on the grid, cells outside the grid are skipped
func (s *Simulation) settle(tmpl Template) {
	s.grid.Lock()
	coords := make([]Coord, 0, len(tmpl.Coordinates))
	for _, c := range tmpl.Coordinates {
		if s.grid.Contains(c.Row, c.Col) {
			coords = append(coords, c)
		}
	}
	s.grid.SetCells(coords)
	for _, g := range tmpl.Gliders {
		if s.grid.Contains(g.Row, g.Col) {
			s.grid.InsertGlider(g.Row, g.Col)
		}
	}
	live := s.grid.LiveCells()
	s.grid.Unlock()
	s.setLiveCells(live)
}

func (s *Simulation) setLiveCells(n int) {
	s.state.Lock()
	s.state.LiveCells = n
	s.state.Unlock()
}

func (s *Simulation) runningMode() RunningState {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.RunningMode
}

//switchRunningState switch the state of the simulation to RunningState
//also writes the new state to the stateCh to signal upper control software
func (s *Simulation) switchRunningState(to RunningState) {
	s.state.Lock()
	s.state.RunningMode = to
	st := s.state.Status
	s.state.Unlock()
	if s.stateCh != nil {
		s.stateCh <- st
	}
}

//run starts the simulation
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (s *Simulation) run() {
	if s.runningMode() == RunningStateRun {
		return
	}
	s.switchRunningState(RunningStateRun)
	o := s.Options()
	go func() {
		defer diagnostics.Recover()
		skipped := 0
		done := make(chan bool, 1)
		for {
			mode := s.runningMode()
			if mode != RunningStateRun && mode != RunningStateStep {
				break
			}
			if skipped > o.MaxSkippedTicks {
				s.switchRunningState(RunningStateFinished)
				break
			}
			//skip the tick if the simulation is still in the calculation mode
			if mode != RunningStateStep {
				skipped = 0
				cmd := func() {
					//the run could be stopped while this command was queued
					if s.runningMode() == RunningStateRun {
						s.step()
					}
					done <- true
				}
				select {
				case s.controlCh <- cmd:
				case <-s.doneCh:
					return
				}
				select {
				case <-done:
				case <-s.doneCh:
					return
				}
			} else {
				skipped++
			}
			if o.Interval > 0 {
				time.Sleep(o.Interval)
			}
		}
	}()
}

//stop stops the simulation running cycle
func (s *Simulation) stop() {
	if s.runningMode() == RunningStateRun {
		s.switchRunningState(RunningStateManual)
	}
}

//step does the new one generation for entire universe
func (s *Simulation) step() {
	finished := false
	rm := s.runningMode()
	if rm == RunningStateFinished {
		rm = RunningStateManual
	}
	maxIter := s.Options().MaxSteps
	defer func() {
		if finished {
			s.switchRunningState(RunningStateFinished)
		} else {
			s.switchRunningState(rm)
		}
		s.refreshView()
	}()

	s.state.Lock()
	if maxIter != 0 && s.state.IterationNum >= maxIter {
		s.state.Unlock()
		finished = true
		return
	}
	s.state.IterationNum++
	s.state.Unlock()

	s.switchRunningState(RunningStateStep)
	start := time.Now()
	s.grid.Lock()
	g := s.grid.Tick()
	s.grid.Unlock()

	s.state.Lock()
	s.state.LiveCells = g.LiveCells
	s.state.IterationTime = time.Since(start)
	iter := s.state.IterationNum
	s.state.Unlock()
	if g.LiveCells == 0 || !g.Changed || (maxIter != 0 && iter >= maxIter) {
		finished = true
	}
}

//clear clears the universe data, reset all counters
func (s *Simulation) clear() {
	s.grid.Lock()
	s.grid.Universe = Empty(s.grid.Width(), s.grid.Height())
	s.grid.Unlock()

	s.state.Lock()
	s.state.IterationNum = 0
	s.state.LiveCells = 0
	s.state.IterationTime = 0
	s.state.Unlock()
	s.switchRunningState(RunningStateManual)
	s.refreshView()
}

//refreshView calls Refresh event for all registered views
func (s *Simulation) refreshView() {
	for _, v := range s.views {
		v.Refresh()
	}
}
