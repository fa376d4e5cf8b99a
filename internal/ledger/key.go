package ledger

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	accountKey   = "account-"
	storageKey   = "storage-"
	codeKey      = "code-"
	chainMetaKey = "chain-meta"
)

func compositeAccountKey(addr common.Address) []byte {
	return append([]byte(accountKey), addr.Bytes()...)
}

func compositeStorageKey(addr common.Address, key []byte) []byte {
	k := append([]byte(storageKey), addr.Bytes()...)
	return append(k, key...)
}

func compositeCodeKey(codeHash []byte) []byte {
	return append([]byte(codeKey), codeHash...)
}
