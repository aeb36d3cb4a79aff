package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"toruslife/src/config"
	"toruslife/src/diagnostics"
	"toruslife/src/telemetry"
	"toruslife/src/universe"
	"toruslife/src/view"
)

func main() {
	defer diagnostics.Recover()
	diagnostics.Install()

	c, err := config.Load(os.Args[1:], universe.TemplateNames())
	if err != nil {
		config.Exitf("toruslife: %v", err)
	}

	shutdown, err := telemetry.Setup(context.Background(), "toruslife")
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	if c.Interactive {
		runInteractive(c)
	} else {
		runBatch(c)
	}
}

func simulationOptions(c *config.Config) *universe.Options {
	o := universe.DefaultOptions
	o.Width = c.Width
	o.Height = c.Height
	o.Interval = c.Interval
	o.MaxSteps = c.MaxSteps
	o.Seed = c.Seed
	return &o
}

func settle(u universe.Runner, c *config.Config) {
	if c.RandomData {
		u.SettleWithRandomData()
	} else {
		u.SettleTemplate(c.Template)
	}
}

func runInteractive(c *config.Config) {
	u := universe.NewSimulation(simulationOptions(c), nil)
	v := view.NewViewTerminal()
	u.RegisterViewer(v)
	settle(u, c)
	v.Start()
	u.Close()
}

func runBatch(c *config.Config) {
	stateCh := make(chan universe.Status, 10) //the buffered channel to getting the simulation status
	u := universe.NewSimulation(simulationOptions(c), stateCh)
	v := view.NewConsoleOut(isatty.IsTerminal(os.Stdout.Fd()), true)
	u.RegisterViewer(v)
	settle(u, c)
	u.Flush()
	drain(stateCh)

	v.Start()
	u.Run()
	for st := range stateCh {
		if st.RunningMode == universe.RunningStateFinished {
			break
		}
	}
	u.Flush() //let the views print the final state
	u.Close()
}

//drain discards the statuses already published
func drain(stateCh chan universe.Status) {
	for {
		select {
		case <-stateCh:
		default:
			return
		}
	}
}
