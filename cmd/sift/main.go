// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/sift"
	"github.com/poiesic/sift/config"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/search"
	"github.com/poiesic/sift/server"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sift",
		Usage: "Hybrid lexical, semantic and link-authority search over crawled pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "storage",
				Aliases: []string{"s"},
				Usage:   "Directory holding crawler output and snapshots",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load settings from this file instead of ./.env",
			},
			&cli.StringFlag{
				Name:  "embedder",
				Usage: "Embedding backend (openai, hash, none)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Index the crawled pages and promote a new snapshot",
				Action: indexCommand,
			},
			{
				Name:      "search",
				Usage:     "Run a query against the current snapshot",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page to show, starting at 1",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "per-page",
						Usage: "Results per page",
						Value: search.DefaultPerPage,
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Show the score components of every result",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the JSON HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show the current snapshot",
				Action: statusCommand,
			},
		},
	}
}

func indexCommand(c *cli.Context) error {
	svc, err := openService(c, sift.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer svc.Close()

	manifest, err := svc.Rebuild(c.Context)
	if err != nil {
		return err
	}
	printManifest(c.App.Writer, manifest)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	page, err := svc.SearchPage(c.Context, query, c.Int("page"), c.Int("per-page"))
	if err != nil {
		return err
	}
	printPage(c.App.Writer, page, c.Bool("explain"))
	return nil
}

func serveCommand(c *cli.Context) error {
	var opts []config.Option
	if c.IsSet("addr") {
		opts = append(opts, config.WithAddr(c.String("addr")))
	}
	cfg, err := loadConfig(c, opts...)
	if err != nil {
		return err
	}
	svc, err := sift.Open(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := server.New(svc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Addr)
}

func statusCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	manifest := svc.Manifest()
	if manifest == nil {
		fmt.Fprintln(c.App.Writer, "No snapshot has been built. Run `sift index` first.")
		return nil
	}
	printManifest(c.App.Writer, manifest)
	return nil
}

func loadConfig(c *cli.Context, opts ...config.Option) (*config.Config, error) {
	if c.IsSet("storage") {
		opts = append(opts, config.WithStoragePath(c.String("storage")))
	}
	if c.IsSet("embedder") {
		opts = append(opts, config.WithEmbedder(c.String("embedder")))
	}
	return config.Load(c.String("env-file"), opts...)
}

func openService(c *cli.Context, opts ...sift.ServiceOption) (*sift.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return sift.Open(cfg, opts...)
}

func printManifest(w io.Writer, m *core.Manifest) {
	fmt.Fprintf(w, "Snapshot:        %s\n", m.SnapshotID)
	fmt.Fprintf(w, "Built:           %s\n", m.BuiltTime().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Documents:       %d\n", m.Documents)
	fmt.Fprintf(w, "Terms:           %d\n", m.Terms)
	fmt.Fprintf(w, "Vectors:         %d\n", m.Vectors)
	fmt.Fprintf(w, "Skipped:         %d\n", m.Skipped)
	fmt.Fprintf(w, "Embed failures:  %d\n", m.EmbedFailures)
}

func printPage(w io.Writer, page *search.Page, explain bool) {
	if page.WasCorrected {
		fmt.Fprintf(w, "Showing results for %q\n", page.CorrectedQuery)
	}
	if page.Total == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	first := (page.Page-1)*page.PerPage + 1
	if len(page.Results) == 0 {
		fmt.Fprintf(w, "%d results, none on page %d.\n", page.Total, page.Page)
		return
	}
	fmt.Fprintf(w, "%d results, showing %d-%d\n\n", page.Total, first, first+len(page.Results)-1)
	for i, hit := range page.Results {
		fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n", first+i, hit.Title, hit.URL, hit.Snippet)
		if explain {
			fmt.Fprintf(w, "   score=%.4f bm25=%.4f vector=%.4f pagerank=%.4f missing=%d phrase=%t\n",
				hit.Score, hit.Components.BM25, hit.Components.Vector, hit.Components.PageRank,
				hit.Components.MissingTerms, hit.Components.PhraseBonus)
		}
		fmt.Fprintln(w)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
