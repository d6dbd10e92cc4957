package contracts

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dataError struct {
	msg  string
	data interface{}
}

func (e *dataError) Error() string          { return e.msg }
func (e *dataError) ErrorData() interface{} { return e.data }

func TestDecodeRevertData(t *testing.T) {
	fundMe := ParsedFundMeABI()

	tests := []struct {
		name   string
		data   []byte
		kind   RevertKind
		reason string
		code   uint64
	}{
		{"reason string", EncodeReason(ErrNotEnoughETH), RevertReason, ErrNotEnoughETH, 0},
		{"custom error", EncodeCustomError(ErrNotOwner), RevertCustom, ErrNotOwner, 0},
		{"panic out of bounds", EncodePanic(PanicOutOfBounds), RevertPanic, "array out-of-bounds access", PanicOutOfBounds},
		{"unknown selector", []byte{0xde, 0xad, 0xbe, 0xef}, RevertUnknown, "", 0},
		{"too short", []byte{0x01}, RevertUnknown, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeRevertData(tt.data, fundMe)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestCustomErrorNeedsABI(t *testing.T) {
	got := DecodeRevertData(EncodeCustomError(ErrNotOwner))
	assert.Equal(t, RevertUnknown, got.Kind)
}

func TestAsRevert(t *testing.T) {
	fundMe := ParsedFundMeABI()

	t.Run("hex string payload", func(t *testing.T) {
		err := &dataError{msg: "execution reverted", data: hexutil.Encode(EncodeReason(ErrNotEnoughETH))}
		got := AsRevert(err, fundMe)
		assert.True(t, errors.Is(got, Reverted(ErrNotEnoughETH)))
		assert.EqualError(t, got, "execution reverted: "+ErrNotEnoughETH)
	})

	t.Run("bytes payload", func(t *testing.T) {
		err := &dataError{msg: "execution reverted", data: EncodeCustomError(ErrNotOwner)}
		got := AsRevert(err, fundMe)
		assert.True(t, errors.Is(got, RevertedWithCustomError(ErrNotOwner)))
		assert.False(t, errors.Is(got, Reverted(ErrNotOwner)))
	})

	t.Run("panic", func(t *testing.T) {
		err := &dataError{msg: "execution reverted", data: EncodePanic(PanicOutOfBounds)}
		got := AsRevert(err)
		assert.True(t, errors.Is(got, RevertedWithPanic(PanicOutOfBounds)))
	})

	t.Run("wrapped", func(t *testing.T) {
		inner := &dataError{msg: "execution reverted", data: EncodeReason("nope")}
		got := AsRevert(errors.Join(errors.New("estimate"), inner))
		assert.True(t, errors.Is(got, Reverted("nope")))
	})

	t.Run("plain error passes through", func(t *testing.T) {
		plain := errors.New("connection refused")
		assert.Same(t, plain, AsRevert(plain))
	})

	t.Run("revert without data", func(t *testing.T) {
		got := AsRevert(errors.New("execution reverted"))
		var rev *RevertError
		require.True(t, errors.As(got, &rev))
		assert.Equal(t, RevertUnknown, rev.Kind)
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, AsRevert(nil))
	})
}

func TestRevertData(t *testing.T) {
	_, err := RevertData(errors.New("boom"))
	assert.ErrorIs(t, err, ErrNoRevertData)

	_, err = RevertData(&dataError{msg: "x", data: "0xzz"})
	assert.Error(t, err)

	_, err = RevertData(&dataError{msg: "x", data: 12})
	assert.Error(t, err)
}

func TestABIFor(t *testing.T) {
	parsed, ok := ABIFor(FundMeName)
	require.True(t, ok)
	assert.Contains(t, parsed.Methods, "cheaperWithdraw")
	assert.Contains(t, parsed.Errors, ErrNotOwner)

	parsed, ok = ABIFor(MockV3AggregatorName)
	require.True(t, ok)
	assert.Len(t, parsed.Constructor.Inputs, 2)

	_, ok = ABIFor("Unknown")
	assert.False(t, ok)
}
