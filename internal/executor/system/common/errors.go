package common

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/axiomesh/axiom-custody/pkg/packer"
)

var (
	AddressType, _      = abi.NewType("address", "", nil)
	AddressSliceType, _ = abi.NewType("address[]", "", nil)
	BigIntType, _       = abi.NewType("uint256", "", nil)
	Bytes32Type, _      = abi.NewType("bytes32", "", nil)
)

// NewRevertError packs a solidity style custom error for contracts that do
// not declare it in their own abi.
func NewRevertError(name string, inputs abi.Arguments, args []any) error {
	abiErr := abi.NewError(name, inputs)
	selector := ethcommon.CopyBytes(abiErr.ID.Bytes()[:4])
	packed, err := inputs.Pack(args...)
	if err != nil {
		return err
	}
	return &packer.RevertError{
		Err:  vm.ErrExecutionReverted,
		Data: append(selector, packed...),
		Str:  fmt.Sprintf("%s, args: %v", abiErr.String(), args),
	}
}
