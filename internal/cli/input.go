package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/discograph/pkg/annotation"
	docio "github.com/matzehuels/discograph/pkg/io"
)

// stdinArg names standard input among the document arguments.
const stdinArg = "-"

// loadDocuments reads every document named in args. Directories contribute
// their document files (one level deep, sorted by name), and "-" reads a
// single document from standard input in stdinFormat.
func loadDocuments(args []string, stdinFormat string) ([]*annotation.Document, error) {
	paths, err := expandInputs(args)
	if err != nil {
		return nil, err
	}

	docs := make([]*annotation.Document, 0, len(paths))
	for _, p := range paths {
		if p != stdinArg {
			d, err := docio.ImportDocument(p)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", p, err)
			}
			docs = append(docs, d)
			continue
		}
		f, err := docio.ParseFormat(stdinFormat)
		if err != nil {
			return nil, err
		}
		d, err := docio.ReadDocument(os.Stdin, f)
		if err != nil {
			return nil, fmt.Errorf("load stdin: %w", err)
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %v", args)
	}
	return docs, nil
}

func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == stdinArg {
			paths = append(paths, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := docio.FormatOf(e.Name()); err == nil {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		slices.Sort(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
