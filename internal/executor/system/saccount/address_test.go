package saccount

import (
	"crypto/sha256"
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

type sha256Hasher struct{}

func (sha256Hasher) Hash(data ...[]byte) []byte {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

func TestDeriveAddress(t *testing.T) {
	factory := ethcommon.HexToAddress(common.AccountFactoryContractAddr)
	impl := ethcommon.HexToAddress(common.AccountImplementationV1Addr)
	owner := ethcommon.HexToAddress("0x82C6D3ed4cD33d8EC1E51d0B5Cc1d822Eaa0c3dC")

	addr := DeriveAddress(KeccakHasher{}, factory, owner, big.NewInt(1), impl)
	assert.Equal(t, addr, DeriveAddress(KeccakHasher{}, factory, owner, big.NewInt(1), impl))

	// same layout as the CREATE2 opcode
	salt := AccountSalt(KeccakHasher{}, owner, big.NewInt(1))
	assert.Equal(t, crypto.CreateAddress2(factory, salt, crypto.Keccak256(AccountInitCode(impl))), addr)

	// the salt is abi.encode(owner, salt)
	expectedSalt := crypto.Keccak256(ethcommon.LeftPadBytes(owner.Bytes(), 32), ethcommon.LeftPadBytes([]byte{1}, 32))
	assert.Equal(t, expectedSalt, salt[:])

	// init code ends with the abi encoded implementation
	initCode := AccountInitCode(impl)
	assert.Equal(t, common.ProxyCreationCode, initCode[:len(common.ProxyCreationCode)])
	assert.Equal(t, ethcommon.LeftPadBytes(impl.Bytes(), 32), initCode[len(common.ProxyCreationCode):])

	assert.NotEqual(t, addr, DeriveAddress(KeccakHasher{}, factory, owner, big.NewInt(2), impl))
	assert.NotEqual(t, addr, DeriveAddress(KeccakHasher{}, factory, factory, big.NewInt(1), impl))
	assert.NotEqual(t, addr, DeriveAddress(KeccakHasher{}, owner, owner, big.NewInt(1), impl))
	assert.NotEqual(t, addr, DeriveAddress(KeccakHasher{}, factory, owner, big.NewInt(1), ethcommon.HexToAddress(common.AccountImplementationV2Addr)))

	// nil salt is salt zero
	assert.Equal(t, DeriveAddress(KeccakHasher{}, factory, owner, big.NewInt(0), impl), DeriveAddress(KeccakHasher{}, factory, owner, nil, impl))

	// hasher is pluggable
	assert.NotEqual(t, addr, DeriveAddress(sha256Hasher{}, factory, owner, big.NewInt(1), impl))
}
