package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/averey/spyglass/internal/config"
	"github.com/averey/spyglass/internal/logger"
	"github.com/averey/spyglass/internal/objstore"
)

func main() {
	var (
		endpoint  = flag.String("endpoint", "", "S3-compatible endpoint host[:port] (default from config)")
		region    = flag.String("region", "", "region (default from config)")
		bucket    = flag.String("bucket", "", "bucket to open (default from config)")
		prefix    = flag.String("prefix", "", "prefix to open inside the bucket")
		pathStyle = flag.Bool("path-style", false, "force path-style bucket addressing")
		insecure  = flag.Bool("insecure", false, "use plain HTTP instead of TLS")
		debug     = flag.Bool("debug", false, "write a debug log to ~/.config/spyglass/spyglass.log")
	)
	flag.Parse()

	if *debug {
		if err := logger.Init(); err != nil {
			log.Fatal(err)
		}
		defer logger.Close()
	} else {
		logger.Disable()
	}

	cfg := config.Load()
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if *region != "" {
		cfg.DefaultRegion = *region
	}
	if *insecure {
		cfg.Secure = false
	}
	if *bucket == "" {
		*bucket = cfg.DefaultBucket
	}
	if *bucket == "" {
		fmt.Fprintln(os.Stderr, "no bucket given: pass -bucket or set default_bucket in the config")
		flag.Usage()
		os.Exit(2)
	}

	style := objstore.AddressingAuto
	if *pathStyle || cfg.PathStyle {
		style = objstore.AddressingPath
	}

	client, err := objstore.New(objstore.Config{
		Endpoint: cfg.Endpoint,
		Region:   cfg.DefaultRegion,
		Secure:   cfg.Secure,
		Style:    style,
	})
	if err != nil {
		log.Fatal(err)
	}

	m := initialModel(client, cfg, objstore.KeyWithPrefix(*bucket, *prefix))
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
