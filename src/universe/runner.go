package universe

//Runner is the control surface of a running simulation used by the views
type Runner interface {
	Status() Status
	Options() Options
	Snapshot() Snapshot
	StateCh() chan Status
	AddTemplate(tmpl Template)
	Templates() []Template
	SettleTemplate(name string)
	SettleWithRandomData()
	Settle(coords []Coord)
	InverseCell(row uint32, col uint32)
	InsertGlider(row uint32, col uint32)
	Resize(width uint32, height uint32)
	RegisterViewer(v Viewer)
	Run()
	Stop()
	Step()
	Clear()
	Flush()
	Close()
}

var _ Runner = (*Simulation)(nil)
