// Package astloader reads compiler-emitted AST artifacts from disk. It never
// invokes a compiler itself; the artifacts are produced by an external
// toolchain and handed to this package as plain files.
package astloader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/vesla0x1/reentrancy-analyzer/internal/astmodel"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ContractContext pairs a parsed ContractDefinition node with the file it
// came from, so downstream components can report provenance.
type ContractContext struct {
	SourceFile string
	Contract   *astmodel.Node
}

// buildInfo mirrors the subset of a solc build-info envelope this package
// reads: output.sources[*].ast.
type buildInfo struct {
	Output struct {
		Sources map[string]struct {
			AST astmodel.SourceUnit `json:"ast"`
		} `json:"sources"`
	} `json:"output"`
}

// Load reads path, which may be a single JSON artifact file or a directory
// of them, and returns every contract definition found across all files.
// Files are processed in filename-sorted order so results are reproducible.
func Load(path string) ([]ContractContext, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat artifact path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read artifact directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
				continue
			}
			files = append(files, filepath.Join(path, e.Name()))
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}

	var out []ContractContext
	for _, f := range files {
		ctxs, err := loadFile(f)
		if err != nil {
			return nil, fmt.Errorf("load artifact %s: %w", f, err)
		}
		out = append(out, ctxs...)
	}
	return out, nil
}

func loadFile(path string) ([]ContractContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var probe struct {
		NodeType string `json:"nodeType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}

	if probe.NodeType == "SourceUnit" {
		var su astmodel.SourceUnit
		if err := json.Unmarshal(data, &su); err != nil {
			return nil, fmt.Errorf("decode raw source unit: %w", err)
		}
		return contextsFromSourceUnit(path, &su), nil
	}

	var bi buildInfo
	if err := json.Unmarshal(data, &bi); err != nil {
		return nil, fmt.Errorf("decode build-info envelope: %w", err)
	}
	if bi.Output.Sources == nil {
		return nil, fmt.Errorf("unrecognized artifact shape: neither a SourceUnit nor a build-info envelope with output.sources")
	}

	var out []ContractContext
	names := make([]string, 0, len(bi.Output.Sources))
	for name := range bi.Output.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := bi.Output.Sources[name]
		out = append(out, contextsFromSourceUnit(name, &entry.AST)...)
	}
	return out, nil
}

func contextsFromSourceUnit(sourceFile string, su *astmodel.SourceUnit) []ContractContext {
	if su == nil {
		return nil
	}
	var out []ContractContext
	for i := range su.Nodes {
		n := &su.Nodes[i]
		if n.IsContract() {
			out = append(out, ContractContext{SourceFile: sourceFile, Contract: n})
		}
	}
	return out
}
