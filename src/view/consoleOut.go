package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"toruslife/src/universe"
)

//ConsoleOut prints the progress of a non interactive run as plain lines
type ConsoleOut struct {
	u          universe.Runner
	w          io.Writer
	au         aurora.Aurora
	startTime  time.Time
	printField bool
	lastMode   universe.RunningState
}

//NewConsoleOut creates the view writing to stdout, colors are used if colors is true
//the final field is printed on finish when printField is true
func NewConsoleOut(colors bool, printField bool) *ConsoleOut {
	return newConsoleOut(os.Stdout, colors, printField)
}

func newConsoleOut(w io.Writer, colors bool, printField bool) *ConsoleOut {
	return &ConsoleOut{w: w, au: aurora.NewAurora(colors), printField: printField}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	defer func() { c.lastMode = st.RunningMode }()
	if st.RunningMode == universe.RunningStateFinished {
		if c.lastMode == universe.RunningStateFinished {
			return
		}
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": st.IterationNum,
			"Total time":     totalTime,
			"Live cells":     st.LiveCells,
		}
		fmt.Fprintln(c.w, c.au.Red("\nFinished:"))
		c.printHashData(resultData)
		if c.printField {
			fmt.Fprint(c.w, c.u.Snapshot().Text)
		}
	} else if st.RunningMode == universe.RunningStateRun {
		if st.IterationNum > 0 && st.IterationNum%10 == 0 {
			fmt.Fprintf(c.w, "  Iterations done: %v\n", st.IterationNum)
		}
	}
}

func (c *ConsoleOut) Register(u universe.Runner) {
	c.u = u
	o := c.u.Options()
	fmt.Fprintln(c.w, c.au.Cyan("Running configuration:"))
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	fmt.Fprintf(c.w, "  Max iterations: %v steps\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", c.au.Green(propName), d[propName])
	}
}
