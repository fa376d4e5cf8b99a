package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/storage/kv"
)

var _ IAccount = (*SimpleAccount)(nil)

type bytesLazyLogger struct {
	bytes []byte
}

func (l *bytesLazyLogger) String() string {
	return fmt.Sprintf("%x", l.bytes)
}

// InnerAccount is the persisted part of an account besides storage and code.
type InnerAccount struct {
	Nonce    uint64   `json:"nonce"`
	Balance  *big.Int `json:"balance"`
	CodeHash []byte   `json:"code_hash"`
}

func (o *InnerAccount) CopyOrNewIfEmpty() *InnerAccount {
	if o == nil {
		return &InnerAccount{Balance: big.NewInt(0)}
	}

	return &InnerAccount{
		Nonce:    o.Nonce,
		Balance:  new(big.Int).Set(o.Balance),
		CodeHash: common.CopyBytes(o.CodeHash),
	}
}

type SimpleAccount struct {
	logger        logrus.FieldLogger
	Addr          common.Address
	originAccount *InnerAccount
	dirtyAccount  *InnerAccount

	// committed state loaded from the backend
	originState map[string][]byte

	// state written since the last commit
	dirtyState map[string][]byte

	originCode []byte
	dirtyCode  []byte

	backend kv.Storage
	changer *stateChanger
}

func NewMockAccount(addr common.Address) *SimpleAccount {
	return NewAccount(kv.NewMemory(), addr, newChanger())
}

func NewAccount(backend kv.Storage, addr common.Address, changer *stateChanger) *SimpleAccount {
	return &SimpleAccount{
		logger:      loggers.Logger(loggers.Ledger),
		Addr:        addr,
		originState: make(map[string][]byte),
		dirtyState:  make(map[string][]byte),
		backend:     backend,
		changer:     changer,
	}
}

func (o *SimpleAccount) String() string {
	return fmt.Sprintf("{origin: %v, dirty: %v, code length: %v}", o.originAccount, o.dirtyAccount, len(o.Code()))
}

func (o *SimpleAccount) GetAddress() common.Address {
	return o.Addr
}

// GetState Get state from local cache, if not found, then get it from DB
func (o *SimpleAccount) GetState(key []byte) (bool, []byte) {
	if value, exist := o.dirtyState[string(key)]; exist {
		return value != nil, value
	}

	if value, exist := o.originState[string(key)]; exist {
		return value != nil, value
	}

	start := time.Now()
	val := o.backend.Get(compositeStorageKey(o.Addr, key))
	stateReadDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	o.logger.Debugf("[GetState] get from storage, addr: %v, key: %v, state: %v", o.Addr, &bytesLazyLogger{bytes: key}, &bytesLazyLogger{bytes: val})

	o.originState[string(key)] = val

	return val != nil, val
}

// SetState Set account state
func (o *SimpleAccount) SetState(key []byte, value []byte) {
	_, prev := o.GetState(key)
	o.changer.append(storageChange{
		account:  o.Addr,
		key:      common.CopyBytes(key),
		prevalue: prev,
	})
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.CopyOrNewIfEmpty()
	}
	o.logger.Debugf("[SetState] addr: %v, key: %v, before state: %v, after state: %v", o.Addr, &bytesLazyLogger{bytes: key}, &bytesLazyLogger{bytes: prev}, &bytesLazyLogger{bytes: value})
	o.setState(key, common.CopyBytes(value))
}

func (o *SimpleAccount) setState(key []byte, value []byte) {
	o.dirtyState[string(key)] = value
}

// SetCodeAndHash Set the contract code and hash
func (o *SimpleAccount) SetCodeAndHash(code []byte) {
	o.changer.append(codeChange{
		account:  o.Addr,
		prevcode: o.Code(),
	})
	o.logger.Debugf("[SetCodeAndHash] addr: %v, before code hash: %v, code length: %d", o.Addr, &bytesLazyLogger{bytes: o.CodeHash()}, len(code))
	o.setCodeAndHash(code)
}

func (o *SimpleAccount) setCodeAndHash(code []byte) {
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.CopyOrNewIfEmpty()
	}
	if len(code) == 0 {
		o.dirtyAccount.CodeHash = nil
		o.dirtyCode = []byte{}
		return
	}
	o.dirtyAccount.CodeHash = crypto.Keccak256Hash(code).Bytes()
	o.dirtyCode = code
}

// Code return the contract code
func (o *SimpleAccount) Code() []byte {
	if o.dirtyCode != nil {
		return o.dirtyCode
	}

	if o.originCode != nil {
		return o.originCode
	}

	codeHash := o.CodeHash()
	if len(codeHash) == 0 {
		return nil
	}

	start := time.Now()
	code := o.backend.Get(compositeCodeKey(codeHash))
	codeReadDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	o.originCode = code

	return code
}

func (o *SimpleAccount) CodeHash() []byte {
	if o.dirtyAccount != nil {
		return o.dirtyAccount.CodeHash
	}
	if o.originAccount != nil {
		return o.originAccount.CodeHash
	}
	return nil
}

// SetNonce Set the nonce which indicates the contract number
func (o *SimpleAccount) SetNonce(nonce uint64) {
	o.changer.append(nonceChange{
		account: o.Addr,
		prev:    o.GetNonce(),
	})
	o.setNonce(nonce)
}

func (o *SimpleAccount) setNonce(nonce uint64) {
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.CopyOrNewIfEmpty()
	}
	o.dirtyAccount.Nonce = nonce
}

// GetNonce Get the nonce from user account
func (o *SimpleAccount) GetNonce() uint64 {
	if o.dirtyAccount != nil {
		return o.dirtyAccount.Nonce
	}
	if o.originAccount != nil {
		return o.originAccount.Nonce
	}
	return 0
}

// GetBalance Get the balance from the account
func (o *SimpleAccount) GetBalance() *big.Int {
	if o.dirtyAccount != nil {
		return new(big.Int).Set(o.dirtyAccount.Balance)
	}
	if o.originAccount != nil {
		return new(big.Int).Set(o.originAccount.Balance)
	}
	return new(big.Int)
}

// SetBalance Set the balance to the account
func (o *SimpleAccount) SetBalance(balance *big.Int) {
	o.changer.append(balanceChange{
		account: o.Addr,
		prev:    o.GetBalance(),
	})
	o.logger.Debugf("[SetBalance] addr: %v, before balance: %v, after balance: %v", o.Addr, o.GetBalance(), balance)
	o.setBalance(balance)
}

func (o *SimpleAccount) setBalance(balance *big.Int) {
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.CopyOrNewIfEmpty()
	}
	o.dirtyAccount.Balance = new(big.Int).Set(balance)
}

// SubBalance Sub the balance from the account
func (o *SimpleAccount) SubBalance(amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	o.SetBalance(new(big.Int).Sub(o.GetBalance(), amount))
}

// AddBalance Add balance to the account
func (o *SimpleAccount) AddBalance(amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	o.SetBalance(new(big.Int).Add(o.GetBalance(), amount))
}

func (o *SimpleAccount) IsEmpty() bool {
	return o.GetBalance().Sign() == 0 && o.GetNonce() == 0 && len(o.CodeHash()) == 0
}

func (o *SimpleAccount) isDirty() bool {
	return o.dirtyAccount != nil || len(o.dirtyState) != 0
}

// commit writes dirty data into batch and promotes it to origin.
func (o *SimpleAccount) commit(batch kv.Batch) error {
	if !o.isDirty() {
		return nil
	}

	if o.dirtyAccount != nil {
		if o.dirtyCode != nil && len(o.dirtyAccount.CodeHash) != 0 && !bytes.Equal(o.dirtyAccount.CodeHash, o.originCodeHash()) {
			batch.Put(compositeCodeKey(o.dirtyAccount.CodeHash), o.dirtyCode)
		}
		data, err := json.Marshal(o.dirtyAccount)
		if err != nil {
			return err
		}
		batch.Put(compositeAccountKey(o.Addr), data)
		o.originAccount = o.dirtyAccount
		o.dirtyAccount = nil
		if o.dirtyCode != nil {
			o.originCode = o.dirtyCode
			o.dirtyCode = nil
		}
	}

	for k, v := range o.dirtyState {
		if v == nil {
			batch.Delete(compositeStorageKey(o.Addr, []byte(k)))
		} else {
			batch.Put(compositeStorageKey(o.Addr, []byte(k)), v)
		}
		o.originState[k] = v
	}
	o.dirtyState = make(map[string][]byte)
	return nil
}

func (o *SimpleAccount) originCodeHash() []byte {
	if o.originAccount == nil {
		return nil
	}
	return o.originAccount.CodeHash
}
