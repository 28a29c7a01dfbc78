package usecase

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/dao"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/governor"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
)

// AccountAddress derives the address of a named scenario account.
// Names are case-insensitive.
func AccountAddress(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("trebgov:" + strings.ToLower(name))))
}

// resolver turns scenario account references into addresses.
type resolver struct {
	addrs       dao.Addresses
	hasTimelock bool
}

func (r resolver) address(ref string) (common.Address, error) {
	ref = strings.TrimSpace(ref)
	switch strings.ToLower(ref) {
	case "":
		return common.Address{}, fmt.Errorf("missing account")
	case "zero":
		return domain.ZeroAddress, nil
	case "governor":
		return r.addrs.Governor, nil
	case "token":
		return r.addrs.Token, nil
	case "timelock":
		if !r.hasTimelock {
			return common.Address{}, fmt.Errorf("%w: no timelock deployed", domain.ErrNotFound)
		}
		return r.addrs.Timelock, nil
	}
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	return AccountAddress(ref), nil
}

// encodeCall resolves a scenario call into a proposal call.
func (r resolver) encodeCall(c domain.ScenarioCall) (domain.Call, error) {
	target, err := r.address(c.Target)
	if err != nil {
		return domain.Call{}, fmt.Errorf("call target: %w", err)
	}

	value := uint256.NewInt(0)
	if c.Value != "" {
		if value, err = domain.ParseTokenAmount(c.Value); err != nil {
			return domain.Call{}, fmt.Errorf("call value: %w", err)
		}
	}

	var data []byte
	switch {
	case c.Data != "" && c.Method != "":
		return domain.Call{}, fmt.Errorf("call to %s sets both method and data", c.Target)
	case c.Data != "":
		if data, err = hexutil.Decode(c.Data); err != nil {
			return domain.Call{}, fmt.Errorf("call data: %w", err)
		}
	case c.Method != "":
		if data, err = r.pack(target, c.Method, c.Args); err != nil {
			return domain.Call{}, err
		}
	}

	return domain.Call{Target: target, Value: value, Data: data}, nil
}

// pack encodes a governance method call. The target picks the ABI; other
// targets accept any known method.
func (r resolver) pack(target common.Address, method string, args []string) ([]byte, error) {
	abis := []abi.ABI{governor.SettingsABI, timelock.AdminABI}
	if target == r.addrs.Governor {
		abis = abis[:1]
	} else if r.hasTimelock && target == r.addrs.Timelock {
		abis = abis[1:]
	}

	for _, contract := range abis {
		m, ok := contract.Methods[method]
		if !ok {
			continue
		}
		if len(args) != len(m.Inputs) {
			return nil, fmt.Errorf("%s takes %d arguments, got %d", m.Sig, len(m.Inputs), len(args))
		}
		values := make([]any, len(args))
		for i, in := range m.Inputs {
			v, err := r.convertArg(in.Type, args[i])
			if err != nil {
				return nil, fmt.Errorf("%s argument %s: %w", method, in.Name, err)
			}
			values[i] = v
		}
		return contract.Pack(method, values...)
	}
	return nil, fmt.Errorf("%w: method %q", domain.ErrUnknownCall, method)
}

func (r resolver) convertArg(typ abi.Type, raw string) (any, error) {
	switch typ.T {
	case abi.AddressTy:
		return r.address(raw)
	case abi.FixedBytesTy:
		if typ.Size != 32 {
			break
		}
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil, err
		}
		return [32]byte(role), nil
	case abi.UintTy:
		n, err := parseUint(raw)
		if err != nil {
			return nil, err
		}
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("%s overflows %s", raw, typ)
		}
		switch typ.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		case 64:
			return n.Uint64(), nil
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported argument type %s", typ)
}

// parseUint accepts plain integers, token amounts ("5 tokens") and durations
// ("48h", as seconds).
func parseUint(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if amount, ok := strings.CutSuffix(raw, "tokens"); ok {
		v, err := domain.ParseTokenAmount(strings.TrimSpace(amount))
		if err != nil {
			return nil, err
		}
		return v.ToBig(), nil
	}
	if n, ok := new(big.Int).SetString(raw, 10); ok {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s", raw)
		}
		return n, nil
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return new(big.Int).SetUint64(uint64(d / time.Second)), nil
	}
	return nil, fmt.Errorf("invalid unsigned value %q", raw)
}
