// Package artifact loads compiled contract artifacts.
//
// Hardhat (artifacts/contracts/**/Name.json plus a .dbg.json pointer to the
// build-info) and Foundry (out/Name.sol/Name.json) layouts are supported, as
// is a built-in set embedded in the binary for development chains.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNotFound is returned when no artifact exists for a contract name.
var ErrNotFound = errors.New("artifact not found")

// Format identifies where an artifact was loaded from.
type Format string

const (
	FormatHardhat Format = "hardhat"
	FormatFoundry Format = "foundry"
	FormatBuiltin Format = "builtin"
)

// Artifact is a compiled contract.
type Artifact struct {
	ContractName     string
	SourceName       string
	ABI              abi.ABI
	RawABI           json.RawMessage
	Bytecode         []byte
	DeployedBytecode []byte
	CompilerVersion  string
	Format           Format
	// BuildInfoPath points at the compiler input/output this artifact came from.
	BuildInfoPath string
}

// Source resolves artifacts by contract name.
type Source interface {
	Artifact(name string) (*Artifact, error)
}

// CodeHash is the keccak256 of the creation bytecode.
func (a *Artifact) CodeHash() string {
	return crypto.Keccak256Hash(a.Bytecode).Hex()
}

// Embedded reports whether the artifact is the built-in bytecode, which has
// no compiler input to verify against.
func (a *Artifact) Embedded() bool {
	return a.Format == FormatBuiltin
}

// FullyQualifiedName returns "source:Name", the form explorers expect.
func (a *Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.ContractName
	}
	return a.SourceName + ":" + a.ContractName
}

// PackConstructor ABI-encodes constructor arguments.
func (a *Artifact) PackConstructor(args ...interface{}) ([]byte, error) {
	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s constructor: %w", a.ContractName, err)
	}
	return packed, nil
}

// SplitCreation separates init code into creation bytecode and constructor
// arguments. ok is false when input does not start with the artifact bytecode.
func (a *Artifact) SplitCreation(input []byte) (args []byte, ok bool) {
	if len(a.Bytecode) == 0 || !bytes.HasPrefix(input, a.Bytecode) {
		return nil, false
	}
	return input[len(a.Bytecode):], true
}

func newArtifact(name, source string, rawABI json.RawMessage, bytecode, deployed string, format Format) (*Artifact, error) {
	if len(rawABI) == 0 {
		return nil, fmt.Errorf("%s: artifact has no ABI", name)
	}
	parsed, err := abi.JSON(bytes.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("%s: parsing ABI: %w", name, err)
	}
	code, err := decodeHex(bytecode)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding bytecode: %w", name, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%s: contract has no bytecode (likely an interface)", name)
	}
	deployedCode, err := decodeHex(deployed)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding deployed bytecode: %w", name, err)
	}
	return &Artifact{
		ContractName:     name,
		SourceName:       source,
		ABI:              parsed,
		RawABI:           rawABI,
		Bytecode:         code,
		DeployedBytecode: deployedCode,
		Format:           format,
	}, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" {
		return nil, nil
	}
	if strings.Contains(s, "__$") {
		return nil, fmt.Errorf("bytecode has unlinked library references")
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
