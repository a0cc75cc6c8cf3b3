package lora

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Protocol markers used by the modem firmware. Inbound application
// payloads and transmit-completion telemetry share the line-oriented
// framing but use distinct marker pairs.
const (
	msgOpen  = "<LoRa-Message-Package>"
	msgClose = "</LoRa-Message-Package>"
	txOpen   = "<Lora-System-Info-Tx-Done>"
	txClose  = "</Lora-System-Info-Tx-Done>"
)

// TxDoneInfo describes the completion of one physical transmission as
// reported by the modem. Fields holds the decoded JSON object; when the
// frame body is not valid JSON, Fields is nil and Raw plus Err carry
// the original text and the decode failure instead.
type TxDoneInfo struct {
	Fields map[string]any
	Raw    string
	Err    error
}

// frameAssembler accumulates raw serial bytes and splits them into
// newline-delimited lines. It is owned by the reader goroutine and must
// never be shared across goroutines.
type frameAssembler struct {
	buf []byte
}

// feed appends a chunk of raw bytes and invokes onLine for every
// complete line now available, in order. The trailing newline is not
// part of the line. Partial trailing data stays buffered.
func (a *frameAssembler) feed(chunk []byte, onLine func(string)) {
	a.buf = append(a.buf, chunk...)
	for {
		i := bytes.IndexByte(a.buf, '\n')
		if i < 0 {
			return
		}
		line := a.buf[:i]
		a.buf = a.buf[i+1:]
		onLine(strings.ToValidUTF8(string(line), "�"))
	}
}

// reset discards any buffered partial line.
func (a *frameAssembler) reset() {
	a.buf = nil
}

// extractFrame returns the text strictly between the open marker and
// the first matching close marker after it. Reports false when the line
// does not carry a complete frame of this kind.
func extractFrame(line, openTag, closeTag string) (string, bool) {
	i := strings.Index(line, openTag)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(openTag):]
	j := strings.Index(rest, closeTag)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

// parseTxDone decodes the body of a telemetry frame. Malformed JSON is
// never dropped: the record falls back to the raw text plus the error.
func parseTxDone(raw string) TxDoneInfo {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return TxDoneInfo{Raw: raw, Err: fmt.Errorf("decode tx-done frame: %w", err)}
	}
	return TxDoneInfo{Fields: fields, Raw: raw}
}

// frameMessage wraps an application payload in the on-wire framing used
// by SendText. The produced bytes round-trip through extractFrame.
func frameMessage(text string) []byte {
	return []byte(msgOpen + text + msgClose + "\n")
}
