package main

import "flag"

// Options holds CLI options for the chat application.
type Options struct {
	ConfigPath string
	Port       string
	Baud       int
	Username   string
}

// ParseFlags parses CLI flags from args and returns Options. The
// first positional argument is the username.
func ParseFlags(args []string) Options {
	fs := flag.NewFlagSet("lorachat", flag.ExitOnError)
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.Port, "port", "", "Serial device path (auto-detected when empty)")
	fs.IntVar(&opts.Baud, "baud", 0, "Baud rate of the modem link")
	_ = fs.Parse(args)
	opts.Username = fs.Arg(0)
	return opts
}
