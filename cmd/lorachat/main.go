// Command lorachat is a terminal chat client for LoRa radio modems.
//
// Usage:
//
//	lorachat [flags] <username>
//
// Lines typed on stdin are sent as chat messages; messages from other
// peers print as they arrive and are acknowledged automatically.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	lora "github.com/brenordv/lora-modem-chatbox"
	"github.com/brenordv/lora-modem-chatbox/chat"
	"github.com/brenordv/lora-modem-chatbox/config"
	"github.com/brenordv/lora-modem-chatbox/logging"
)

func main() {
	opts := ParseFlags(os.Args[1:])
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	// flags and positional args override the config file
	if opts.Username != "" {
		cfg.Username = opts.Username
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.Baud != 0 {
		cfg.BaudRate = opts.Baud
	}
	if err := config.ValidateUsername(cfg.Username); err != nil {
		return fmt.Errorf("%w\n\nUsage:\n  lorachat [flags] <username>", err)
	}

	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client := lora.NewClient(lora.Config{Port: cfg.Port, BaudRate: cfg.BaudRate})
	client.OnLog = func(line string) {
		logger.Debug("modem", zap.String("line", line))
	}
	client.OnTxDone = func(info lora.TxDoneInfo) {
		if info.Err != nil {
			logger.Debug("tx done (unparsed)", zap.String("raw", info.Raw))
			return
		}
		logger.Debug("tx done", zap.Any("info", info.Fields))
	}

	if cfg.Port == "" {
		fmt.Println("Auto-detecting serial port...")
	}
	if err := client.Open(); err != nil {
		return err
	}
	defer client.Close()

	msgs, err := client.Messages()
	if err != nil {
		return err
	}

	fmt.Printf("Welcome to LoRa Chat, %s! Type a message and press Enter.\n", cfg.Username)

	tracker := chat.NewTracker()
	go consume(client, msgs, cfg.Username, tracker, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	inputDone := make(chan error, 1)
	go func() { inputDone <- readInput(client, cfg.Username, tracker, logger) }()

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
		return nil
	case err := <-inputDone:
		return err
	}
}

// consume drains incoming payloads: prints chat messages from other
// peers and acks them, resolves pending acks for our own messages.
func consume(client *lora.Client, msgs <-chan string, username string, tracker *chat.Tracker, logger *zap.Logger) {
	for raw := range msgs {
		env, err := chat.Parse(raw)
		if err != nil {
			logger.Debug("skipping non-chat payload", zap.String("raw", raw))
			continue
		}

		switch env.Type {
		case chat.TypeChat:
			// the radio echoes our own frames back
			if env.Username == username {
				continue
			}
			if !tracker.MarkSeen(env.ID) {
				continue
			}
			fmt.Printf("[%s] @%s: %s\n", env.Time().Format("15:04"), env.Username, env.Content)

			ack, err := chat.NewAck(env.ID, username).Encode()
			if err != nil {
				logger.Warn("encode ack", zap.Error(err))
				continue
			}
			if err := client.SendText(ack); err != nil {
				logger.Warn("send ack", zap.Error(err))
			}

		case chat.TypeAck:
			if tracker.Ack(env.AckID) {
				fmt.Printf("        (read by @%s)\n", env.Username)
			}
		}
	}
	logger.Info("message stream ended")
}

// readInput turns stdin lines into chat messages until EOF.
func readInput(client *lora.Client, username string, tracker *chat.Tracker, logger *zap.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		content := scanner.Text()
		if content == "" {
			continue
		}

		msg := chat.NewMessage(username, content)
		payload, err := msg.Encode()
		if err != nil {
			logger.Warn("encode message", zap.Error(err))
			continue
		}
		tracker.Track(msg.ID)
		if err := client.SendText(payload); err != nil {
			if errors.Is(err, lora.ErrNotOpen) {
				return err
			}
			logger.Warn("send failed", zap.Error(err))
		}
	}
	return scanner.Err()
}
