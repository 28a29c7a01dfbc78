package governor

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
)

var proposalArgs = func() abi.Arguments {
	addressArray, _ := abi.NewType("address[]", "", nil)
	uint256Array, _ := abi.NewType("uint256[]", "", nil)
	bytesArray, _ := abi.NewType("bytes[]", "", nil)
	bytes32, _ := abi.NewType("bytes32", "", nil)
	return abi.Arguments{{Type: addressArray}, {Type: uint256Array}, {Type: bytesArray}, {Type: bytes32}}
}()

// DescriptionHash is keccak256 of the description bytes.
func DescriptionHash(description string) common.Hash {
	return crypto.Keccak256Hash([]byte(description))
}

// HashProposal computes the proposal id:
// keccak256(abi.encode(targets, values, calldatas, descriptionHash)).
func HashProposal(calls []domain.Call, descriptionHash common.Hash) (domain.ProposalID, error) {
	targets, values, calldatas := timelock.SplitCalls(calls)
	packed, err := proposalArgs.Pack(targets, values, calldatas, [32]byte(descriptionHash))
	if err != nil {
		return domain.ProposalID{}, err
	}
	return domain.ProposalIDFromHash(crypto.Keccak256Hash(packed)), nil
}

// timelockSalt is bytes20(governor) XOR descriptionHash, which keeps
// operations of different governors sharing a timelock apart.
func timelockSalt(governor common.Address, descriptionHash common.Hash) common.Hash {
	salt := descriptionHash
	for i := 0; i < common.AddressLength; i++ {
		salt[i] ^= governor[i]
	}
	return salt
}
