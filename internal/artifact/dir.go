package artifact

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir loads artifacts from a Hardhat or Foundry project.
type Dir struct {
	root   string
	format Format
}

// NewDir detects the project layout under root.
//
// root may be the project directory or the artifacts directory itself.
func NewDir(root string) (*Dir, error) {
	candidates := []struct {
		path   string
		format Format
	}{
		{filepath.Join(root, "artifacts", "contracts"), FormatHardhat},
		{filepath.Join(root, "contracts"), FormatHardhat},
		{filepath.Join(root, "out"), FormatFoundry},
	}
	for _, c := range candidates {
		if info, err := os.Stat(c.path); err == nil && info.IsDir() {
			return &Dir{root: c.path, format: c.format}, nil
		}
	}
	if _, err := os.Stat(filepath.Join(root, "build-info")); err == nil {
		return &Dir{root: root, format: FormatFoundry}, nil
	}
	return nil, fmt.Errorf("no hardhat or foundry artifacts under %s", root)
}

// Format returns the detected layout.
func (d *Dir) Format() Format { return d.format }

// Root returns the directory artifacts are read from.
func (d *Dir) Root() string { return d.root }

// Artifact loads the artifact for name.
func (d *Dir) Artifact(name string) (*Artifact, error) {
	path, err := d.find(name)
	if err != nil {
		return nil, err
	}
	if d.format == FormatFoundry {
		return parseFoundry(path)
	}
	return parseHardhat(path)
}

// find walks the tree for <name>.json, skipping debug files and build-info.
func (d *Dir) find(name string) (string, error) {
	var found string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Name() == name+".json" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching artifacts: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, d.root)
	}
	return found, nil
}

type hardhatArtifact struct {
	Format           string          `json:"_format"`
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
}

type hardhatDebug struct {
	Format    string `json:"_format"`
	BuildInfo string `json:"buildInfo"`
}

func parseHardhat(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing artifact JSON: %w", err)
	}
	name := raw.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	a, err := newArtifact(name, raw.SourceName, raw.ABI, raw.Bytecode, raw.DeployedBytecode, FormatHardhat)
	if err != nil {
		return nil, err
	}

	dbgPath := strings.TrimSuffix(path, ".json") + ".dbg.json"
	if dbgData, err := os.ReadFile(dbgPath); err == nil {
		var dbg hardhatDebug
		if err := json.Unmarshal(dbgData, &dbg); err == nil && dbg.BuildInfo != "" {
			a.BuildInfoPath = filepath.Clean(filepath.Join(filepath.Dir(dbgPath), dbg.BuildInfo))
			if bi, err := readBuildInfo(a.BuildInfoPath); err == nil {
				a.CompilerVersion = bi.SolcLongVersion
			}
		}
	}
	return a, nil
}

type foundryArtifact struct {
	ABI              json.RawMessage `json:"abi"`
	Bytecode         bytecodeObject  `json:"bytecode"`
	DeployedBytecode bytecodeObject  `json:"deployedBytecode"`
	RawMetadata      string          `json:"rawMetadata"`
	Metadata         json.RawMessage `json:"metadata"`
}

type bytecodeObject struct {
	Object string `json:"object"`
}

type foundryMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

func parseFoundry(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	var raw foundryArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing artifact JSON: %w", err)
	}

	var metadata foundryMetadata
	if raw.RawMetadata != "" {
		_ = json.Unmarshal([]byte(raw.RawMetadata), &metadata)
	} else if len(raw.Metadata) > 0 {
		_ = json.Unmarshal(raw.Metadata, &metadata)
	}
	var source string
	for src := range metadata.Settings.CompilationTarget {
		source = src
		break
	}

	name := strings.TrimSuffix(filepath.Base(path), ".json")
	a, err := newArtifact(name, source, raw.ABI, raw.Bytecode.Object, raw.DeployedBytecode.Object, FormatFoundry)
	if err != nil {
		return nil, err
	}
	a.CompilerVersion = metadata.Compiler.Version
	return a, nil
}
