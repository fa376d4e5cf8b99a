package common

import (
	"bytes"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-custody/internal/ledger"
)

// ProxyImplementationSlot holds the logic address an account delegates to.
const ProxyImplementationSlot = "eip1967.proxy.implementation"

var (
	// ProxyRuntimeCode marks an account whose calls are served by the logic
	// stored under ProxyImplementationSlot.
	ProxyRuntimeCode = ethcommon.FromHex("0x363d3d373d3d3d363d7f360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc545af43d82803e903d91602b57fd5bf3")

	// ProxyCreationCode returns ProxyRuntimeCode when executed, constructor
	// arguments are appended after it.
	ProxyCreationCode = append([]byte{0x3d, 0x60, byte(len(ProxyRuntimeCode)), 0x80, 0x60, 0x0a, 0x3d, 0x39, 0x81, 0xf3}, ProxyRuntimeCode...)
)

func IsProxyCode(code []byte) bool {
	return bytes.Equal(code, ProxyRuntimeCode)
}

// InstallProxy turns account into a proxy of implementation.
func InstallProxy(account ledger.IAccount, implementation ethcommon.Address) error {
	account.SetCodeAndHash(ProxyRuntimeCode)
	return SetProxyImplementation(account, implementation)
}

func SetProxyImplementation(account ledger.IAccount, implementation ethcommon.Address) error {
	return NewVMSlot[ethcommon.Address](account, ProxyImplementationSlot).Put(implementation)
}

// GetProxyImplementation returns false if account is not an initialized proxy.
func GetProxyImplementation(account ledger.IAccount) (ethcommon.Address, bool, error) {
	if !IsProxyCode(account.Code()) {
		return ethcommon.Address{}, false, nil
	}
	exist, implementation, err := NewVMSlot[ethcommon.Address](account, ProxyImplementationSlot).Get()
	if err != nil {
		return ethcommon.Address{}, false, err
	}
	return implementation, exist, nil
}
