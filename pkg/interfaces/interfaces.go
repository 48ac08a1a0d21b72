// Package interfaces defines the interfaces shared between the host packages.
package interfaces

// ProcessWrapper wraps and supervises a process.
type ProcessWrapper interface {
	Start(command string, args []string) error
	Wait() error
	Stop() error
	ExitCode() int
}

// DataHandler processes raw output data.
type DataHandler interface {
	HandleData(data []byte)
	Flush()
}
