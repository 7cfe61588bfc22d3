// Command seeder imports a directory of HTML files into a sift corpus as if
// a crawler had fetched them from a base URL.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/corpus"
	"github.com/poiesic/sift/normalize"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "seeder",
		Usage:     "Import local HTML files as crawled pages",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "base-url",
				Aliases:  []string{"u"},
				Usage:    "URL the directory is served under, e.g. https://docs.example.com/",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "storage",
				Aliases: []string{"s"},
				Usage:   "Corpus directory to write into",
				Value:   "data",
				EnvVars: []string{"SIFT_STORAGE_PATH"},
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one directory, got %d arguments", c.NArg())
			}
			n, err := importDir(c.Args().First(), c.String("base-url"), corpus.NewFileStore(c.String("storage")))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Imported %d pages into %s\n", n, c.String("storage"))
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// importDir writes every .html file under dir to store. A file at
// dir/a/b.html is recorded as baseURL + "a/b.html". Existing URL map and
// link graph entries are kept.
func importDir(dir, baseURL string, store *corpus.FileStore) (int, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	normalizer, err := normalize.New()
	if err != nil {
		return 0, err
	}

	urls, err := store.URLMap()
	if errors.Is(err, corpus.ErrNoCorpus) {
		urls = make(map[core.DocumentID]string)
	} else if err != nil {
		return 0, err
	}
	graph, err := store.LinkGraph()
	if errors.Is(err, corpus.ErrNotFound) {
		graph = make(core.LinkGraph)
	} else if err != nil {
		return 0, err
	}

	imported := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		markup, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		url := core.NormalizeURL(baseURL + filepath.ToSlash(rel))
		page := &core.Page{ID: core.DocumentIDFromURL(url), URL: url, Markup: markup}
		if err := store.WritePage(page); err != nil {
			slog.Warn("skipping page", "path", path, "err", err)
			return nil
		}
		urls[page.ID] = url

		links, err := normalizer.ExtractLinks(markup, url)
		if err != nil {
			slog.Warn("no links extracted", "path", path, "err", err)
		} else if len(links) > 0 {
			graph[url] = links
		}
		imported++
		return nil
	})
	if err != nil {
		return imported, fmt.Errorf("failed to import %s: %w", dir, err)
	}

	if err := store.WriteURLMap(urls); err != nil {
		return imported, err
	}
	if err := store.WriteLinkGraph(graph); err != nil {
		return imported, err
	}
	return imported, nil
}
