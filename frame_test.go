package lora

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func feedAll(t *testing.T, asm *frameAssembler, chunks ...string) []string {
	t.Helper()
	var lines []string
	for _, c := range chunks {
		asm.feed([]byte(c), func(line string) { lines = append(lines, line) })
	}
	return lines
}

func TestFrameAssembler_SplitsOnNewlinesOnly(t *testing.T) {
	var asm frameAssembler
	lines := feedAll(t, &asm, "one\ntwo\nthree")
	require.Equal(t, []string{"one", "two"}, lines)

	// the partial line completes on the next chunk
	lines = feedAll(t, &asm, " more\n")
	require.Equal(t, []string{"three more"}, lines)
}

func TestFrameAssembler_FrameSpanningChunks(t *testing.T) {
	var asm frameAssembler
	full := msgOpen + "split payload" + msgClose + "\n"

	// feed one byte at a time; the frame must still assemble intact
	var lines []string
	for i := 0; i < len(full); i++ {
		asm.feed([]byte{full[i]}, func(line string) { lines = append(lines, line) })
	}
	require.Len(t, lines, 1)

	payload, ok := extractFrame(lines[0], msgOpen, msgClose)
	require.True(t, ok)
	require.Equal(t, "split payload", payload)
}

func TestFrameAssembler_OrderPreservedAcrossChunkBoundaries(t *testing.T) {
	var asm frameAssembler
	wire := msgOpen + "first" + msgClose + "\n" + msgOpen + "second" + msgClose + "\n"

	// split at an arbitrary point inside the second frame
	lines := feedAll(t, &asm, wire[:len(wire)-7], wire[len(wire)-7:])
	require.Len(t, lines, 2)

	first, ok := extractFrame(lines[0], msgOpen, msgClose)
	require.True(t, ok)
	second, ok := extractFrame(lines[1], msgOpen, msgClose)
	require.True(t, ok)
	require.Equal(t, []string{"first", "second"}, []string{first, second})
}

func TestFrameAssembler_InvalidUTF8Replaced(t *testing.T) {
	var asm frameAssembler
	var lines []string
	asm.feed([]byte{0xff, 0xfe, 'o', 'k', '\n'}, func(line string) { lines = append(lines, line) })
	require.Len(t, lines, 1)
	require.Equal(t, "��ok", lines[0])
}

func TestExtractFrame(t *testing.T) {
	payload, ok := extractFrame("noise "+msgOpen+"hi"+msgClose+" trailing", msgOpen, msgClose)
	require.True(t, ok)
	require.Equal(t, "hi", payload)

	// first close marker wins
	payload, ok = extractFrame(msgOpen+"a"+msgClose+msgClose, msgOpen, msgClose)
	require.True(t, ok)
	require.Equal(t, "a", payload)

	_, ok = extractFrame("just some log chatter", msgOpen, msgClose)
	require.False(t, ok)

	// unterminated frame is not a frame
	_, ok = extractFrame(msgOpen+"partial", msgOpen, msgClose)
	require.False(t, ok)
}

func TestSendFramingRoundTrip(t *testing.T) {
	var asm frameAssembler
	var lines []string
	asm.feed(frameMessage("hi"), func(line string) { lines = append(lines, line) })
	require.Len(t, lines, 1)
	require.Equal(t, msgOpen+"hi"+msgClose, lines[0])

	payload, ok := extractFrame(lines[0], msgOpen, msgClose)
	require.True(t, ok)
	require.Equal(t, "hi", payload)
}

func TestParseTxDone(t *testing.T) {
	info := parseTxDone(`{"airtime_ms": 120, "status": "ok"}`)
	require.NoError(t, info.Err)
	require.Equal(t, "ok", info.Fields["status"])
	require.Equal(t, float64(120), info.Fields["airtime_ms"])

	// malformed JSON falls back instead of dropping
	info = parseTxDone("not json at all")
	require.Error(t, info.Err)
	require.Nil(t, info.Fields)
	require.Equal(t, "not json at all", info.Raw)
}
