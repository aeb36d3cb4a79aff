package universe

import (
	"math/rand/v2"
	"testing"
)

var (
	testTemplate = Template{Name: "ts1", Coordinates: []Coord{{1, 1}, {2, 1}, {1, 2}, {2, 2}, {3, 3}, {2, 4}, {3, 4}, {3, 5}}}

	sizes = []struct {
		name          string
		width, height uint32
	}{
		{"64x32", 64, 32},
		{"200x200", 200, 200},
	}
)

func simulationStep(s *Simulation, b *testing.B) {
	s.AddTemplate(testTemplate)
	stateCh := s.StateCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		s.Clear()
		<-stateCh //wait for finish
		s.SettleTemplate("ts1")
		b.StartTimer()
		s.Step()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateManual || st.RunningMode == RunningStateFinished {
				break
			}
		}
	}
	s.Close()
}

func newBenchOptions(w uint32, h uint32) *Options {
	o := DefaultOptions
	o.Interval = 0
	o.Width = w
	o.Height = h
	return &o
}

func Benchmark_Tick(b *testing.B) {
	for _, sz := range sizes {
		b.Run(sz.name, func(b *testing.B) {
			u := NewWithSource(sz.width, sz.height, rand.New(rand.NewPCG(1, 1)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				u.Tick()
			}
		})
	}
}

func Benchmark_LiveNeighbourCount(b *testing.B) {
	u := NewWithSource(200, 200, rand.New(rand.NewPCG(2, 2)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u.LiveNeighbourCount(uint32(i)%200, uint32(i/200)%200)
	}
}

func Benchmark_SimulationStep(b *testing.B) {
	for _, sz := range sizes {
		b.Run(sz.name, func(b *testing.B) {
			s := NewSimulation(newBenchOptions(sz.width, sz.height), make(chan Status, 10))
			simulationStep(s, b)
		})
	}
}

func Benchmark_Render(b *testing.B) {
	u := NewWithSource(200, 200, rand.New(rand.NewPCG(3, 3)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = u.Render()
	}
}
