package timelock

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

var (
	addressType, _      = abi.NewType("address", "", nil)
	uint256Type, _      = abi.NewType("uint256", "", nil)
	bytesType, _        = abi.NewType("bytes", "", nil)
	bytes32Type, _      = abi.NewType("bytes32", "", nil)
	addressArrayType, _ = abi.NewType("address[]", "", nil)
	uint256ArrayType, _ = abi.NewType("uint256[]", "", nil)
	bytesArrayType, _   = abi.NewType("bytes[]", "", nil)

	operationArgs = abi.Arguments{
		{Type: addressType},
		{Type: uint256Type},
		{Type: bytesType},
		{Type: bytes32Type},
		{Type: bytes32Type},
	}
	batchArgs = abi.Arguments{
		{Type: addressArrayType},
		{Type: uint256ArrayType},
		{Type: bytesArrayType},
		{Type: bytes32Type},
		{Type: bytes32Type},
	}
)

// HashOperation returns the id of a single-call operation:
// keccak256(abi.encode(target, value, data, predecessor, salt)).
func HashOperation(call domain.Call, predecessor, salt common.Hash) (common.Hash, error) {
	packed, err := operationArgs.Pack(call.Target, toBig(call.Value), nonNil(call.Data), [32]byte(predecessor), [32]byte(salt))
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}

// HashOperationBatch returns the id of a batch operation:
// keccak256(abi.encode(targets, values, payloads, predecessor, salt)).
func HashOperationBatch(calls []domain.Call, predecessor, salt common.Hash) (common.Hash, error) {
	targets, values, payloads := SplitCalls(calls)
	packed, err := batchArgs.Pack(targets, values, payloads, [32]byte(predecessor), [32]byte(salt))
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}

// SplitCalls returns the parallel target/value/payload arrays of calls in
// their abi-encodable forms.
func SplitCalls(calls []domain.Call) ([]common.Address, []*big.Int, [][]byte) {
	targets := make([]common.Address, len(calls))
	values := make([]*big.Int, len(calls))
	payloads := make([][]byte, len(calls))
	for i, c := range calls {
		targets[i] = c.Target
		values[i] = toBig(c.Value)
		payloads[i] = nonNil(c.Data)
	}
	return targets, values, payloads
}

func toBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
