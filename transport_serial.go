package lora

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// readPoll bounds how long a Transport.Read may wait for data before
// reporting an empty result. Shutdown latency is bounded by it.
const readPoll = 200 * time.Millisecond

// serialTransport binds the client to a port opened through
// go.bug.st/serial, the portable library path. The port is configured
// 8N1 with a read timeout so Read returns (0, nil) when idle.
type serialTransport struct {
	port serial.Port
}

func openSerialTransport(device string, baud int) (*serialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serial open: %w", err)
	}
	if err := port.SetReadTimeout(readPoll); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial set read timeout: %w", err)
	}
	return &serialTransport{port: port}, nil
}

func (t *serialTransport) Read(p []byte) (int, error) {
	// go.bug.st reports a timeout as 0 bytes with a nil error, which
	// is exactly the "no data currently available" contract.
	return t.port.Read(p)
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

func (t *serialTransport) Kind() string { return "serial" }
