package cli

import (
	"flag"
)

type Options struct {
	Host      string
	Port      int
	PidFile   string
	PrintHelp bool
}

var opts = Options{}
var defaultHost = "0.0.0.0"
var defaultPort = 8080

var EnvMessage = `This requires the following environment vars:

MEDIALOOM_CONFIG_DIR - Path to the directory containing the .env settings file.

MEDIALOOM_ENV - Name of the configuration to load. For example:
    test - Loads .env.test from MEDIALOOM_CONFIG_DIR
    demo - Loads .env.demo from MEDIALOOM_CONFIG_DIR
`

func Init() {
	flag.StringVar(&opts.Host, "host", defaultHost, "Interface for the HTTP server to listen on")
	flag.IntVar(&opts.Port, "port", defaultPort, "Port for the HTTP server to listen on")
	flag.StringVar(&opts.PidFile, "pid-file", "", "Path to pid file. If set, the server refuses to start while another instance holds the file.")
	flag.BoolVar(&opts.PrintHelp, "help", false, "Print help message")
}

func ParseOpts() Options {
	flag.Parse()
	return opts
}

func PrintDefaults() {
	flag.PrintDefaults()
}
