package lora

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// Transport is the capability bundle the client needs from a serial
// device. Read returns (0, nil) when no data arrives within the
// internal poll budget so the reader loop can check its stop flag
// between attempts. Exactly one goroutine reads; writes are serialized
// by the client's send lock.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	// Kind names the active binding, e.g. "serial" or "raw".
	Kind() string
}

// ErrNoPorts is returned by Open when no port was configured and
// enumeration found no serial devices to auto-detect.
var ErrNoPorts = errors.New("no serial ports found")

// openTransportFn is swapped out by tests to run the client against an
// in-memory transport.
var openTransportFn = openTransport

// openTransport resolves the device (auto-detecting when port is
// empty) and opens it, preferring the go.bug.st/serial binding and
// falling back to the raw termios binding when that is compiled for
// this platform and an explicit device path was given. The fallback
// decision is a capability probe, never error-text matching.
func openTransport(port string, baud int) (Transport, string, error) {
	explicit := port != ""
	if !explicit {
		resolved, err := resolvePort()
		if err != nil {
			return nil, "", err
		}
		port = resolved
	}

	t, serr := openSerialTransport(port, baud)
	if serr == nil {
		return t, port, nil
	}

	if explicit && rawTransportAvailable() {
		rt, rerr := openRawTransport(port, baud)
		if rerr == nil {
			return rt, port, nil
		}
		return nil, "", fmt.Errorf("open %s: %w (raw fallback: %v)", port, serr, rerr)
	}
	return nil, "", fmt.Errorf("open %s: %w", port, serr)
}

// resolvePort enumerates present serial devices and picks the most
// likely modem.
func resolvePort() (string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	if len(ports) == 0 {
		return "", ErrNoPorts
	}
	return pickPort(ports), nil
}

// pickPort prefers a device whose name suggests a USB modem (ACM or
// usbmodem devices, COM ports on Windows); otherwise the first
// candidate wins.
func pickPort(candidates []string) string {
	for _, d := range candidates {
		u := strings.ToUpper(d)
		if strings.Contains(u, "TTYACM") || strings.Contains(u, "USBMODEM") || strings.HasPrefix(u, "COM") {
			return d
		}
	}
	return candidates[0]
}
