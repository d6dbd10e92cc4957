package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// VerificationInput is what a block explorer needs to reproduce a build.
type VerificationInput struct {
	StandardJSON    []byte
	SolcLongVersion string
}

type buildInfo struct {
	SolcVersion     string          `json:"solcVersion"`
	SolcLongVersion string          `json:"solcLongVersion"`
	Input           json.RawMessage `json:"input"`
	Output          json.RawMessage `json:"output"`
}

// Keys foundry adds to the standard JSON input that solc rejects.
var foundryInputKeysToStrip = []string{"allowPaths", "basePath", "includePaths", "version"}

func readBuildInfo(path string) (*buildInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build-info: %w", err)
	}
	var bi buildInfo
	if err := json.Unmarshal(data, &bi); err != nil {
		return nil, fmt.Errorf("parsing build-info: %w", err)
	}
	if len(bi.Input) == 0 {
		return nil, fmt.Errorf("build-info %s has no compiler input", filepath.Base(path))
	}
	return &bi, nil
}

// GetVerificationInput returns the standard JSON input that produced a.
func (d *Dir) GetVerificationInput(a *Artifact) (*VerificationInput, error) {
	if a.Embedded() {
		return nil, fmt.Errorf("%s is a built-in artifact and cannot be verified", a.ContractName)
	}
	if a.BuildInfoPath != "" {
		bi, err := readBuildInfo(a.BuildInfoPath)
		if err != nil {
			return nil, err
		}
		return toVerificationInput(bi)
	}
	return d.searchBuildInfo(a)
}

// searchBuildInfo scans build-info/ for the build that compiled a.
func (d *Dir) searchBuildInfo(a *Artifact) (*VerificationInput, error) {
	dirs := []string{
		filepath.Join(d.root, "build-info"),
		filepath.Join(filepath.Dir(d.root), "build-info"),
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			bi, err := readBuildInfo(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			if a.SourceName != "" && !producedBy(bi, a.SourceName, a.ContractName) {
				continue
			}
			return toVerificationInput(bi)
		}
	}
	return nil, fmt.Errorf("build-info not found for contract %s", a.ContractName)
}

func producedBy(bi *buildInfo, source, name string) bool {
	var output struct {
		Contracts map[string]map[string]json.RawMessage `json:"contracts"`
	}
	if err := json.Unmarshal(bi.Output, &output); err != nil {
		return false
	}
	_, ok := output.Contracts[source][name]
	return ok
}

func toVerificationInput(bi *buildInfo) (*VerificationInput, error) {
	var input map[string]json.RawMessage
	if err := json.Unmarshal(bi.Input, &input); err != nil {
		return nil, fmt.Errorf("parsing standard JSON input: %w", err)
	}
	for _, key := range foundryInputKeysToStrip {
		delete(input, key)
	}
	stdJSON, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	version := bi.SolcLongVersion
	if version == "" {
		version = bi.SolcVersion
	}
	if !strings.HasPrefix(version, "v") && version != "" {
		version = "v" + version
	}
	return &VerificationInput{StandardJSON: stdJSON, SolcLongVersion: version}, nil
}
