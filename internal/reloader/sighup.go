package reloader

import (
	"os"
	"os/signal"
	"syscall"
)

// OnSIGHUP invokes fn on every SIGHUP for the rest of the process
// lifetime. Used for config hot reload.
func OnSIGHUP(fn func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	go func() {
		for range ch {
			fn()
		}
	}()
}
