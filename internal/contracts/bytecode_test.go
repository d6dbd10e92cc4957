package contracts

import (
	"bytes"
	"testing"
)

func TestCreationCodeEndsWithRuntime(t *testing.T) {
	tests := []struct {
		name     string
		creation []byte
		runtime  []byte
	}{
		{FundMeName, FundMeBytecode, FundMeDeployedBytecode},
		{MockV3AggregatorName, MockV3AggregatorBytecode, MockV3AggregatorDeployedBytecode},
	}
	for _, tt := range tests {
		if len(tt.runtime) == 0 || len(tt.creation) <= len(tt.runtime) {
			t.Errorf("%s: creation code %d bytes, runtime %d bytes", tt.name, len(tt.creation), len(tt.runtime))
			continue
		}
		if !bytes.HasSuffix(tt.creation, tt.runtime) {
			t.Errorf("%s: creation code does not end with the runtime code", tt.name)
		}
	}
}

func TestRuntimeDispatchesEverySelector(t *testing.T) {
	tests := []struct {
		name    string
		runtime []byte
		abiName string
	}{
		{FundMeName, FundMeDeployedBytecode, FundMeName},
		{MockV3AggregatorName, MockV3AggregatorDeployedBytecode, MockV3AggregatorName},
	}
	for _, tt := range tests {
		parsed, ok := ABIFor(tt.abiName)
		if !ok {
			t.Fatalf("no ABI for %s", tt.abiName)
		}
		for name, m := range parsed.Methods {
			// PUSH4 <selector>
			push := append([]byte{0x63}, m.ID...)
			if !bytes.Contains(tt.runtime, push) {
				t.Errorf("%s: runtime does not dispatch %s", tt.name, name)
			}
		}
	}
}
