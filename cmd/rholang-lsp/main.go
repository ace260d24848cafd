package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/server"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

func main() {
	versionFlag := flag.Bool("version", false, "Print the version of the program")
	logfileFlag := flag.String("logfile", "", "Path to log file")
	verbosityFlag := flag.Int("verbosity", 2, "Verbosity of the protocol logger")
	configFlag := flag.String("config", "", "Path to a YAML or JSON config file")
	tcpFlag := flag.String("tcp", "", "Listen on this address instead of stdio")
	scanFlag := flag.String("scan", "", "Index the workspace at this path and exit")
	dbFlag := flag.String("db", "rholang-index.db", "Path of the index database used with -scan")
	flag.Parse()

	// Version tag
	if *versionFlag {
		fmt.Printf("rholang LSP server version %s\n", Version)
		return
	}

	// Logging
	if *logfileFlag != "" {
		logFile, err := os.OpenFile(*logfileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
		log.SetFlags(log.Ldate | log.Ltime | log.Llongfile)
		log.Println("Starting rholang LSP server...")
	} else if *scanFlag == "" {
		log.SetOutput(io.Discard)
	}
	commonlog.Configure(*verbosityFlag, nil) // Logger used by glsp

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.LoadFile(*configFlag); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	if *scanFlag != "" {
		if err := runScan(cfg, *scanFlag, *dbFlag); err != nil {
			log.Fatalf("Index error: %v", err)
		}
		return
	}

	// Initialize the server
	srv, err := server.NewServer(cfg, Version)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run the server
	if *tcpFlag != "" {
		err = srv.RunTCP(*tcpFlag)
	} else {
		err = srv.RunStdio()
	}
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
