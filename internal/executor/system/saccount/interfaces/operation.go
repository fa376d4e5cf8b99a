package interfaces

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

// Operation is the request bundle a relayer submits on behalf of an account.
// Field names follow the abi tuple so it can be passed to validateOperation as is.
type Operation struct {
	Sender               ethcommon.Address `json:"sender"`
	Nonce                *big.Int          `json:"nonce"`
	CallData             []byte            `json:"callData"`
	CallGasLimit         *big.Int          `json:"callGasLimit"`
	VerificationGasLimit *big.Int          `json:"verificationGasLimit"`
	PreVerificationGas   *big.Int          `json:"preVerificationGas"`
	MaxFeePerGas         *big.Int          `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *big.Int          `json:"maxPriorityFeePerGas"`
	Signature            []byte            `json:"signature"`
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// PackForSignature encodes every field except the signature, dynamic
// fields are replaced by their hash.
func PackForSignature(op *Operation) []byte {
	args := abi.Arguments{
		{Name: "sender", Type: common.AddressType},
		{Name: "nonce", Type: common.BigIntType},
		{Name: "callData", Type: common.Bytes32Type},
		{Name: "callGasLimit", Type: common.BigIntType},
		{Name: "verificationGasLimit", Type: common.BigIntType},
		{Name: "preVerificationGas", Type: common.BigIntType},
		{Name: "maxFeePerGas", Type: common.BigIntType},
		{Name: "maxPriorityFeePerGas", Type: common.BigIntType},
	}
	packed, _ := args.Pack(
		op.Sender,
		orZero(op.Nonce),
		crypto.Keccak256Hash(op.CallData),
		orZero(op.CallGasLimit),
		orZero(op.VerificationGasLimit),
		orZero(op.PreVerificationGas),
		orZero(op.MaxFeePerGas),
		orZero(op.MaxPriorityFeePerGas),
	)

	return packed
}

// GetOperationHash returns the hash of the op + entryPoint address + chainID.
func GetOperationHash(op *Operation, entryPoint ethcommon.Address, chainID *big.Int) ethcommon.Hash {
	return crypto.Keccak256Hash(
		crypto.Keccak256(PackForSignature(op)),
		ethcommon.LeftPadBytes(entryPoint.Bytes(), 32),
		ethcommon.LeftPadBytes(orZero(chainID).Bytes(), 32),
	)
}
