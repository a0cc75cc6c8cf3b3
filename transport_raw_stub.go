//go:build !linux

package lora

import "fmt"

func rawTransportAvailable() bool { return false }

func openRawTransport(device string, baud int) (Transport, error) {
	return nil, fmt.Errorf("raw terminal transport is not supported on this platform")
}
