package program

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"
)

// runMainErrorLogger is used by RunMain() to capture errors returned by
// routines. Each error is logged. Shutdown is initiated as soon as the
// first error arrives.
type runMainErrorLogger struct {
	shutdownStarted sync.Once
	shutdownFunc    func()
	cancel          context.CancelFunc
}

func (el *runMainErrorLogger) Log(err error) {
	log.Print("Fatal error: ", err)
	el.startShutdown(func() {
		os.Exit(1)
	})
}

func (el *runMainErrorLogger) startShutdown(shutdownFunc func()) {
	el.shutdownStarted.Do(func() {
		el.shutdownFunc = shutdownFunc
		el.cancel()
	})
}

// terminateWithSignal terminates the current process by raising the
// signal that caused shutdown once again, after resetting its handler.
func terminateWithSignal(terminationSignal os.Signal) {
	if runtime.GOOS == "windows" {
		os.Exit(1)
	}

	signal.Reset(terminationSignal)
	process, err := os.FindProcess(os.Getpid())
	if err != nil {
		panic(err)
	}
	if err := process.Signal(terminationSignal); err != nil {
		panic(err)
	}

	// process.Signal() does not guarantee that the signal is
	// delivered to the current thread. More details:
	// https://github.com/golang/go/issues/19326
	time.Sleep(5 * time.Second)
	os.Exit(1)
}

// RunMain runs a command line tool that supports graceful termination.
// The program terminates with exit code 0 once the root routine and
// everything it spawned has completed, with exit code 1 if any of the
// routines fails, or with the original signal upon receiving SIGINT or
// SIGTERM. In the latter two cases the context passed to the remaining
// routines is canceled, so that they may stop early. Routines are
// expected to release their resources (e.g., flushing partially
// written blocks to disk) before returning.
func RunMain(routine Routine) {
	ctx, cancel := context.WithCancel(context.Background())
	errorLogger := &runMainErrorLogger{
		cancel: cancel,
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		receivedSignal := <-signalChan
		log.Printf("Received %#v signal. Initiating graceful shutdown.", receivedSignal.String())
		errorLogger.startShutdown(func() {
			terminateWithSignal(receivedSignal)
		})
	}()

	run(ctx, errorLogger, routine)

	errorLogger.startShutdown(func() {
		os.Exit(0)
	})
	errorLogger.shutdownFunc()
}
