// Package logging configures the process-wide zerolog logger. Binaries
// call Setup once at startup; library packages just use the global
// log.Logger and inherit whatever the binary configured.
package logging

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.elastic.co/ecszerolog"
)

var setupOnce sync.Once

// Options controls where and how the logger writes.
type Options struct {
	// App tags every event with the producing binary's name.
	App string
	// Level is the minimum level name (trace, debug, info, warn, error).
	// Empty or unknown falls back to info.
	Level string
	// Pretty switches the console stream to human-readable output, for
	// interactive use. JSON otherwise.
	Pretty bool
	// ElasticsearchURL, when set, additionally ships ECS-formatted events
	// to that cluster, indexed under App.
	ElasticsearchURL string
}

// ElasticsearchWriter posts each event as a document to Elasticsearch.
type ElasticsearchWriter struct {
	URL string
}

func (ew ElasticsearchWriter) Write(p []byte) (n int, err error) {
	resp, err := http.Post(
		ew.URL+"/_doc",
		"application/json",
		bytes.NewBuffer(p),
	)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("elasticsearch returned %d", resp.StatusCode)
	}

	return len(p), nil
}

// Setup configures the global logger. The first call wins; later calls
// are no-ops so tests and libraries cannot reconfigure a running binary.
func Setup(opts Options) error {
	if opts.App == "" {
		return fmt.Errorf("app name is required")
	}
	setupOnce.Do(func() {
		configure(opts)
	})
	return nil
}

func configure(opts Options) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var console zerolog.LevelWriter
	if opts.Pretty {
		console = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		console = zerolog.MultiLevelWriter(os.Stdout)
	}

	writer := console
	if opts.ElasticsearchURL != "" {
		// ECS format for Elasticsearch, indexed per app
		ecsLogger := ecszerolog.New(&ElasticsearchWriter{
			URL: opts.ElasticsearchURL + "/" + opts.App,
		})
		writer = zerolog.MultiLevelWriter(ecsLogger, console)
	}

	log.Logger = zerolog.New(writer).With().Str("app", opts.App).
		Timestamp().Logger()
}
