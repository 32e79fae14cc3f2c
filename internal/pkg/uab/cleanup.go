package uab

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/sylog"
)

// trappedSignals mirrors the original's sigaction set: every one of these
// maps to cleanAndExit(128+signum).
var trappedSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGHUP,
	syscall.SIGABRT,
	syscall.SIGSEGV,
}

// installSignalHandlers arranges for any of trappedSignals to invoke
// cleanAndExit with the shell exit-code convention 128+signum. Call once,
// early in main.
func installSignalHandlers() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, trappedSignals...)
	go func() {
		sig := <-ch
		signum := 0
		if s, ok := sig.(syscall.Signal); ok {
			signum = int(s)
		}
		cleanAndExit(128 + signum)
	}()
}

// cleanResource performs the unmount-then-remove cleanup sequence. It keeps
// no record of having run, so a second call repeats both steps; it is safe
// to call from the normal exit path or the signal handler goroutine since it
// only reads the atomic flags, only logs umount failures, and treats an
// already-removed mount point as success.
func cleanResource() {
	mountPoint := state.currentMountPoint()

	if state.isMounted() {
		unmountSelfBundle(mountPoint)
	}

	if state.isCreated() && mountPoint != "" {
		if err := os.Remove(mountPoint); err != nil && !os.IsNotExist(err) {
			sylog.Warningf("failed to remove mount point %q: %v", mountPoint, err)
		}
	}
}

// cleanAndExit runs cleanResource then terminates the process immediately
// via the raw exit syscall, skipping any deferred Go runtime teardown —
// the closest analogue Go offers to the original's _exit(2).
func cleanAndExit(code int) {
	cleanResource()
	syscall.Exit(code)
}
