// Package diagnostics makes fatal failures visible to the host process.
//
// Install is called once by every universe constructor and may be called any
// number of times. Goroutines owned by the simulation defer Recover so that a
// panic is logged with its stack before the process dies.
package diagnostics

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"sync"
)

const logPrefix = "toruslife: "

var (
	once      sync.Once
	mu        sync.Mutex
	installed bool
	logger    = log.New(os.Stderr, logPrefix, log.LstdFlags)
)

// Install registers the diagnostics hook. Only the first call has an effect.
func Install() {
	once.Do(func() {
		mu.Lock()
		installed = true
		mu.Unlock()
		debug.SetTraceback("all")
	})
}

// Installed reports whether Install has run.
func Installed() bool {
	mu.Lock()
	defer mu.Unlock()
	return installed
}

// SetOutput redirects diagnostic messages, nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)
}

// Report writes a diagnostic message for v along with the current stack.
func Report(v interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Printf("panic: %v\n%s", describe(v), debug.Stack())
}

// Recover reports a panic in progress and panics again with the same value.
// It must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		Report(r)
		panic(r)
	}
}

func describe(v interface{}) string {
	switch e := v.(type) {
	case error:
		return e.Error()
	case fmt.Stringer:
		return e.String()
	default:
		return fmt.Sprint(v)
	}
}
