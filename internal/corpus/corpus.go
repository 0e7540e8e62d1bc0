// Package corpus loads already-parsed sentences from disk.
package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnolang/depmatch/depgraph"
)

type reader func(r io.Reader, name string) ([]*depgraph.Sentence, error)

var readers = map[string]reader{
	".conll":  ReadCoNLL,
	".conllu": ReadCoNLL,
	".conllx": ReadCoNLL,
	".json":   ReadJSON,
}

// Supported reports whether path has a corpus file extension.
func Supported(path string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ReadFile reads every sentence in path, choosing the format by extension.
func ReadFile(path string) ([]*depgraph.Sentence, error) {
	read, ok := readers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported corpus format: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return read(f, path)
}
