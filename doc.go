// Package lora provides a host-side client for talking to a LoRa radio
// modem over a serial link.
//
// The modem speaks a small line-oriented framing protocol: application
// payloads and transmit-completion telemetry arrive as tagged frames on
// newline-delimited lines, interleaved with arbitrary diagnostic
// chatter that the client ignores. The client splits the raw byte
// stream into frames, delivers inbound payloads to a single consumer in
// arrival order, and lets any goroutine submit outgoing payloads
// without interleaving bytes on the wire.
//
// Features:
//   - Pluggable transport: go.bug.st/serial binding with a raw termios
//     fallback on Linux
//   - Serial port auto-detection preferring USB-modem/ACM devices
//   - One reader goroutine per session feeding an unbounded ordered
//     delivery channel
//   - Thread-safe framed sends from any goroutine
//   - Optional callbacks for inbound payloads, TX-done telemetry and
//     diagnostics, fault-isolated from the reader
//
// Example usage:
//
//	client := lora.NewClient(lora.Config{Port: "/dev/ttyACM0"})
//	if err := client.Open(); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	msgs, err := client.Messages()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go func() {
//	    for payload := range msgs {
//	        fmt.Println("RX:", payload)
//	    }
//	}()
//
//	if err := client.SendText("hello"); err != nil {
//	    log.Println("Send failed:", err)
//	}
package lora
