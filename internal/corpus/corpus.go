// Package corpus reads the static document collection: numbered files in
// a flat directory, plain text or gzip-compressed.
package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
)

// Document is one corpus file: its numeric id (the file name, minus any
// .gz suffix) and the path to read it from.
type Document struct {
	ID   int
	Path string
}

// List returns the corpus documents in ascending doc-id order. A file
// whose name is not a non-negative integer (optionally suffixed .gz) is
// rejected, since doc ids come from file names.
func List(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".gz")
		id, err := strconv.Atoi(name)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("corpus file %q is not named by a document id", e.Name())
		}
		docs = append(docs, Document{ID: id, Path: filepath.Join(dir, e.Name())})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Read returns the document's full contents, transparently decompressing
// gzip. Parallel pgzip matches how large compressed archives are read
// elsewhere in this toolchain.
func (d Document) Read() ([]byte, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("opening document %d: %w", d.ID, err)
	}
	defer f.Close()

	var rdr io.Reader = f
	if strings.HasSuffix(d.Path, ".gz") {
		zpr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompressing document %d: %w", d.ID, err)
		}
		defer zpr.Close()
		rdr = zpr
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("reading document %d: %w", d.ID, err)
	}
	return data, nil
}
