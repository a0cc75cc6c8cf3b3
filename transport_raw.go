//go:build linux

package lora

import (
	"fmt"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// rawTransport drives a terminal device directly through termios when
// the library binding cannot open the port. Reads go through poll(2)
// with a bounded timeout so the reader loop stays responsive to its
// stop flag; a self-pipe wakes any in-flight poll on Close.
type rawTransport struct {
	fd        int
	file      *os.File
	closeOnce sync.Once
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

func rawTransportAvailable() bool { return true }

// openRawTransport opens the device and configures it for raw mode,
// 8 data bits, no parity, one stop bit, modem control lines ignored.
func openRawTransport(device string, baud int) (*rawTransport, error) {
	fd, err := syscall.Open(device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	// 8N1, receiver on, modem control lines ignored
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	termios.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD

	// Baud rate
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baudToUnix(baud)

	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Back to blocking mode now that config is done; reads still do
	// not block indefinitely because they poll first.
	syscall.SetNonblock(fd, false)

	// Self-pipe so Close can interrupt a poll in progress
	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &rawTransport{
		fd:    fd,
		file:  os.NewFile(uintptr(fd), device),
		pipeR: pipeFds[0],
		pipeW: pipeFds[1],
	}, nil
}

// Read waits up to the poll budget for data. (0, nil) means no data
// arrived in time, or that the transport is being closed; the caller's
// stop flag disambiguates.
func (t *rawTransport) Read(p []byte) (int, error) {
	pfd := []unix.PollFd{
		{Fd: int32(t.fd), Events: unix.POLLIN},
		{Fd: int32(t.pipeR), Events: unix.POLLIN},
	}
	n, err := unix.Poll(pfd, int(readPoll.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if pfd[1].Revents&unix.POLLIN != 0 {
		// Drain pipe; closing in progress
		var b [1]byte
		unix.Read(t.pipeR, b[:])
		return 0, nil
	}
	if pfd[0].Revents&unix.POLLIN == 0 {
		return 0, nil
	}
	return t.file.Read(p)
}

func (t *rawTransport) Write(p []byte) (int, error) {
	return t.file.Write(p)
}

// Close closes the device and unblocks any in-flight Read. Safe to
// call multiple times; subsequent calls are no-ops.
func (t *rawTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		// Wake up poll using self-pipe
		if t.pipeW > 0 {
			unix.Write(t.pipeW, []byte{1})
		}
		if t.file != nil {
			err = t.file.Close()
		}
		if t.pipeR > 0 {
			unix.Close(t.pipeR)
		}
		if t.pipeW > 0 {
			unix.Close(t.pipeW)
		}
	})
	return err
}

func (t *rawTransport) Kind() string { return "raw" }

func baudToUnix(baud int) uint32 {
	switch baud {
	case 1200:
		return unix.B1200
	case 2400:
		return unix.B2400
	case 4800:
		return unix.B4800
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	default:
		return unix.B115200 // fallback
	}
}
