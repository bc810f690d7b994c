package common

import (
	"os"
	"os/signal"
	"syscall"
)

// Interrupted receives the signals that should stop a long-running command, eg. an import.
func Interrupted() <-chan os.Signal {
	interrupt := make(chan os.Signal, 2)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	return interrupt
}
