package contracts

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrNoRevertData is returned when an error carries no revert payload.
var ErrNoRevertData = errors.New("no revert data")

// Selectors of the two builtin Solidity error types.
var (
	ErrorSelector = crypto.Keccak256([]byte("Error(string)"))[:4]
	PanicSelector = crypto.Keccak256([]byte("Panic(uint256)"))[:4]
)

// Panic codes raised by the Solidity compiler.
const (
	PanicAssert       uint64 = 0x01
	PanicOverflow     uint64 = 0x11
	PanicDivideByZero uint64 = 0x12
	PanicOutOfBounds  uint64 = 0x32
)

var panicDescriptions = map[uint64]string{
	PanicAssert:       "assert(false)",
	PanicOverflow:     "arithmetic underflow or overflow",
	PanicDivideByZero: "division or modulo by zero",
	PanicOutOfBounds:  "array out-of-bounds access",
}

// RevertKind classifies a decoded revert.
type RevertKind int

const (
	RevertUnknown RevertKind = iota
	// RevertReason is require(cond, "reason") / Error(string).
	RevertReason
	// RevertCustom is a declared `error Name(...)`.
	RevertCustom
	// RevertPanic is a compiler inserted Panic(uint256).
	RevertPanic
)

// RevertError is a decoded contract revert.
type RevertError struct {
	Kind RevertKind
	// Reason holds the revert string, the custom error name, or the panic description.
	Reason string
	// Code is the panic code for RevertPanic.
	Code uint64
	Data []byte
}

func (e *RevertError) Error() string {
	switch e.Kind {
	case RevertReason:
		return "execution reverted: " + e.Reason
	case RevertCustom:
		return "execution reverted: custom error " + e.Reason + "()"
	case RevertPanic:
		return fmt.Sprintf("execution reverted: panic 0x%02x (%s)", e.Code, e.Reason)
	}
	if len(e.Data) == 0 {
		return "execution reverted"
	}
	return "execution reverted: " + hexutil.Encode(e.Data)
}

// Is matches another RevertError with the same kind and reason.
func (e *RevertError) Is(target error) bool {
	t, ok := target.(*RevertError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Reason == e.Reason
}

// Reverted builds a matcher for errors.Is against an Error(string) revert.
func Reverted(reason string) error {
	return &RevertError{Kind: RevertReason, Reason: reason}
}

// RevertedWithCustomError builds a matcher for errors.Is against a custom error.
func RevertedWithCustomError(name string) error {
	return &RevertError{Kind: RevertCustom, Reason: name}
}

// RevertedWithPanic builds a matcher for errors.Is against a panic code.
func RevertedWithPanic(code uint64) error {
	return &RevertError{Kind: RevertPanic, Reason: panicDescription(code), Code: code}
}

// EncodeReason ABI-encodes an Error(string) payload.
func EncodeReason(reason string) []byte {
	typ, _ := abi.NewType("string", "", nil)
	packed, err := (abi.Arguments{{Type: typ}}).Pack(reason)
	if err != nil {
		return append([]byte{}, ErrorSelector...)
	}
	return append(append([]byte{}, ErrorSelector...), packed...)
}

// EncodePanic ABI-encodes a Panic(uint256) payload.
func EncodePanic(code uint64) []byte {
	return append(append([]byte{}, PanicSelector...), common32(new(big.Int).SetUint64(code))...)
}

// EncodeCustomError encodes an argument-less custom error by its signature name.
func EncodeCustomError(name string) []byte {
	return crypto.Keccak256([]byte(name + "()"))[:4]
}

// DecodeRevertData decodes a revert payload, looking up custom errors in abis.
func DecodeRevertData(data []byte, abis ...abi.ABI) *RevertError {
	out := &RevertError{Data: data}
	if len(data) < 4 {
		return out
	}
	selector := data[:4]
	switch {
	case bytes.Equal(selector, ErrorSelector):
		reason, err := abi.UnpackRevert(data)
		if err == nil {
			out.Kind = RevertReason
			out.Reason = reason
		}
		return out
	case bytes.Equal(selector, PanicSelector):
		if len(data) >= 36 {
			code := new(big.Int).SetBytes(data[4:36])
			out.Kind = RevertPanic
			out.Code = code.Uint64()
			out.Reason = panicDescription(out.Code)
		}
		return out
	}
	for _, a := range abis {
		for name, e := range a.Errors {
			if bytes.Equal(e.ID[:4], selector) {
				out.Kind = RevertCustom
				out.Reason = name
				return out
			}
		}
	}
	return out
}

// RevertData extracts the raw revert payload from an RPC or simulated backend error.
func RevertData(err error) ([]byte, error) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, ErrNoRevertData
	}
	switch v := dataErr.ErrorData().(type) {
	case string:
		data, decodeErr := hexutil.Decode(v)
		if decodeErr != nil {
			return nil, fmt.Errorf("invalid revert data %q: %w", v, decodeErr)
		}
		return data, nil
	case []byte:
		return v, nil
	case nil:
		return nil, ErrNoRevertData
	default:
		return nil, fmt.Errorf("unexpected revert data type %T", v)
	}
}

// AsRevert converts err into a *RevertError when it carries revert data.
// Any other error is returned unchanged. A nil err stays nil.
func AsRevert(err error, abis ...abi.ABI) error {
	if err == nil {
		return nil
	}
	var already *RevertError
	if errors.As(err, &already) {
		return err
	}
	data, dataErr := RevertData(err)
	if dataErr != nil {
		if strings.Contains(err.Error(), "execution reverted") {
			return &RevertError{}
		}
		return err
	}
	return DecodeRevertData(data, abis...)
}

func panicDescription(code uint64) string {
	if d, ok := panicDescriptions[code]; ok {
		return d
	}
	return "unknown panic"
}

func common32(v *big.Int) []byte {
	out := make([]byte, 32)
	v.FillBytes(out)
	return out
}
