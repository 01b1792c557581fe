package main

import (
	"fmt"
	"os"

	"github.com/medialoom/media-services/models/common"
	"github.com/medialoom/media-services/util"
	"github.com/medialoom/media-services/util/cli"
	"github.com/medialoom/media-services/web"
)

func main() {
	cli.Init()
	opts := cli.ParseOpts()
	if opts.PrintHelp {
		printHelp()
		cli.PrintDefaults()
		os.Exit(0)
	}

	if opts.PidFile != "" {
		if util.IsRunningInOtherProcess(opts.PidFile) {
			fmt.Fprintf(os.Stderr,
				"Another instance is already running (pid file %s)\n", opts.PidFile)
			os.Exit(1)
		}
		if err := util.WritePidFile(opts.PidFile); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot write pid file %s: %v\n", opts.PidFile, err)
			os.Exit(1)
		}
		defer util.DeletePidFile(opts.PidFile)
	}

	// If anything is wrong with the config or the clients, this panics.
	context := common.NewContext()
	server, err := web.NewServer(context)
	if err != nil {
		context.Logger.Fatalf("Cannot initialize server: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	err = server.Run(addr)
	if err != nil {
		context.Logger.Fatalf("Server stopped: %v", err)
	}
}

func printHelp() {
	message := `
medialoom_server runs the MediaLoom media relay: clients upload files
over HTTP, the files are forwarded to a remote cold-storage channel,
and short public links are returned. Serving a link streams a locally
cached copy, re-fetching from the channel on a cache miss.
`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
