package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
)

var (
	mu       sync.Mutex
	nextID   int
	cleanups = make(map[int]func())
	once     sync.Once
)

// SetupHandler configures signal handling so that registered cleanups
// (temporary resave files) run before the process exits
func SetupHandler() {
	once.Do(func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			sig := <-sigChan
			RunCleanups()
			if sig == syscall.SIGINT {
				os.Exit(130)
			}
			os.Exit(143)
		}()
	})
}

// RegisterCleanup adds fn to the set run on interrupt and returns a function
// that removes it again. The returned function is safe to call more than once.
func RegisterCleanup(fn func()) (unregister func()) {
	mu.Lock()
	id := nextID
	nextID++
	cleanups[id] = fn
	mu.Unlock()

	return func() {
		mu.Lock()
		delete(cleanups, id)
		mu.Unlock()
	}
}

// RunCleanups runs and clears every registered cleanup
func RunCleanups() {
	mu.Lock()
	pending := make([]func(), 0, len(cleanups))
	for id, fn := range cleanups {
		pending = append(pending, fn)
		delete(cleanups, id)
	}
	mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// PendingCleanups returns how many cleanups are registered
func PendingCleanups() int {
	mu.Lock()
	defer mu.Unlock()
	return len(cleanups)
}

// GetOptimalProcs returns the number of OS threads to give the runtime
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	// For image processing with CGo, using too many threads can cause issues
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
