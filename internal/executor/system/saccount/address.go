package saccount

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

// Hasher is the hash function of the address scheme, the derived address
// is the last 20 bytes of its output.
type Hasher interface {
	Hash(data ...[]byte) []byte
}

type KeccakHasher struct{}

func (KeccakHasher) Hash(data ...[]byte) []byte {
	return crypto.Keccak256(data...)
}

var (
	saltArgs = abi.Arguments{
		{Name: "owner", Type: common.AddressType},
		{Name: "salt", Type: common.BigIntType},
	}
	implementationArgs = abi.Arguments{
		{Name: "implementation", Type: common.AddressType},
	}
)

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// AccountSalt binds the user salt to the owner, two owners using the same
// salt get different accounts.
func AccountSalt(hasher Hasher, owner ethcommon.Address, salt *big.Int) [32]byte {
	// both are static 32 bytes words, packing cannot fail
	packed, _ := saltArgs.Pack(owner, bigOrZero(salt))
	var s [32]byte
	copy(s[:], hasher.Hash(packed))
	return s
}

// AccountInitCode is the creation code of an account proxy pointing at implementation.
func AccountInitCode(implementation ethcommon.Address) []byte {
	packed, _ := implementationArgs.Pack(implementation)
	return append(ethcommon.CopyBytes(common.ProxyCreationCode), packed...)
}

// DeriveAddress computes hash(0xff ++ factory ++ salt ++ hash(initCode))[12:].
func DeriveAddress(hasher Hasher, factory, owner ethcommon.Address, salt *big.Int, implementation ethcommon.Address) ethcommon.Address {
	accountSalt := AccountSalt(hasher, owner, salt)
	initCodeHash := hasher.Hash(AccountInitCode(implementation))
	return ethcommon.BytesToAddress(hasher.Hash([]byte{0xff}, factory.Bytes(), accountSalt[:], initCodeHash)[12:])
}
