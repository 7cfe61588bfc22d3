package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/sift/core"
)

const (
	rawDir        = "raw"
	pageExt       = ".html"
	urlMapFile    = "url_map.json"
	linkGraphFile = "link_graph.json"
)

// FileStore is crawler output rooted at a directory.
// It holds no state beyond the root and is safe for concurrent readers.
type FileStore struct {
	root string
}

// NewFileStore returns a FileStore over root. Nothing is read until asked.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the storage root.
func (s *FileStore) Root() string {
	return s.root
}

// DocumentIDs lists every stored page in lexical order.
// A missing raw directory yields no ids.
func (s *FileStore) DocumentIDs() ([]core.DocumentID, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, rawDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	ids := make([]core.DocumentID, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, pageExt) {
			continue
		}
		ids = append(ids, core.DocumentID(strings.TrimSuffix(name, pageExt)))
	}
	slices.Sort(ids)
	return ids, nil
}

// ReadMarkup returns the stored markup for id.
func (s *FileStore) ReadMarkup(id core.DocumentID) ([]byte, error) {
	path, err := s.pagePath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("page %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", id, err)
	}
	return data, nil
}

// WritePage stores page markup under its id. The URL is not recorded;
// callers maintain the URL map with WriteURLMap.
func (s *FileStore) WritePage(page *core.Page) error {
	if err := core.ValidatePage(page); err != nil {
		return err
	}
	path, err := s.pagePath(page.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create raw dir: %w", err)
	}
	if err := os.WriteFile(path, page.Markup, 0644); err != nil {
		return fmt.Errorf("write page %s: %w", page.ID, err)
	}
	return nil
}

// URLMap returns the document id to URL mapping.
// Returns ErrNoCorpus when the map does not exist.
func (s *FileStore) URLMap() (map[core.DocumentID]string, error) {
	urls := make(map[core.DocumentID]string)
	if err := s.readJSON(urlMapFile, &urls); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoCorpus
		}
		return nil, err
	}
	return urls, nil
}

// WriteURLMap replaces the URL map.
func (s *FileStore) WriteURLMap(urls map[core.DocumentID]string) error {
	return s.writeJSON(urlMapFile, urls)
}

// LinkGraph returns the crawled link graph.
// Returns ErrNotFound when the graph does not exist.
func (s *FileStore) LinkGraph() (core.LinkGraph, error) {
	graph := make(core.LinkGraph)
	if err := s.readJSON(linkGraphFile, &graph); err != nil {
		return nil, err
	}
	return graph, nil
}

// WriteLinkGraph replaces the link graph.
func (s *FileStore) WriteLinkGraph(graph core.LinkGraph) error {
	return s.writeJSON(linkGraphFile, graph)
}

func (s *FileStore) pagePath(id core.DocumentID) (string, error) {
	name := string(id)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, name)
	}
	return filepath.Join(s.root, rawDir, name+pageExt), nil
}

func (s *FileStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) writeJSON(name string, v any) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
