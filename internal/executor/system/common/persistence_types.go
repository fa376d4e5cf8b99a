package common

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-custody/internal/ledger"
)

// stored values carry a one byte presence flag in front of their json form
const (
	flagDeleted byte = 0
	flagPresent byte = 1
)

func loadValue[V any](account ledger.IAccount, key []byte) (bool, V, error) {
	var v V
	exist, data := account.GetState(key)
	if !exist || len(data) == 0 || data[0] == flagDeleted {
		return false, v, nil
	}
	if err := json.Unmarshal(data[1:], &v); err != nil {
		return false, v, errors.Wrapf(err, "decode state %s of %s", key, account.GetAddress())
	}
	return true, v, nil
}

func storeValue[V any](account ledger.IAccount, key []byte, v V) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode state %s of %s", key, account.GetAddress())
	}
	account.SetState(key, append([]byte{flagPresent}, data...))
	return nil
}

// VMMap is a named mapping persisted in the storage of a contract account.
type VMMap[K, V any] struct {
	contractAccount ledger.IAccount
	mapName         string
	keyToString     func(key K) string
}

func NewVMMap[K, V any](contractAccount ledger.IAccount, mapName string, keyToString func(key K) string) *VMMap[K, V] {
	return &VMMap[K, V]{
		contractAccount: contractAccount,
		mapName:         mapName,
		keyToString:     keyToString,
	}
}

func (m *VMMap[K, V]) stateKey(key K) []byte {
	return []byte(fmt.Sprintf("%s_%s", m.mapName, m.keyToString(key)))
}

func (m *VMMap[K, V]) Get(k K) (exist bool, v V, err error) {
	return loadValue[V](m.contractAccount, m.stateKey(k))
}

func (m *VMMap[K, V]) MustGet(k K) (V, error) {
	exist, v, err := m.Get(k)
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("contract[%s] map[%s] key[%s] not exist", m.contractAccount.GetAddress(), m.mapName, m.keyToString(k))
	}
	return v, nil
}

func (m *VMMap[K, V]) Has(k K) bool {
	exist, _, err := m.Get(k)
	return exist && err == nil
}

func (m *VMMap[K, V]) Put(k K, v V) error {
	return storeValue(m.contractAccount, m.stateKey(k), v)
}

func (m *VMMap[K, V]) Delete(k K) {
	m.contractAccount.SetState(m.stateKey(k), []byte{flagDeleted})
}

// VMSlot is a single named value persisted in the storage of a contract account.
type VMSlot[V any] struct {
	contractAccount ledger.IAccount
	slotName        string
}

func NewVMSlot[V any](contractAccount ledger.IAccount, slotName string) *VMSlot[V] {
	return &VMSlot[V]{
		contractAccount: contractAccount,
		slotName:        slotName,
	}
}

func (s *VMSlot[V]) Name() string {
	return s.slotName
}

func (s *VMSlot[V]) Get() (exist bool, v V, err error) {
	return loadValue[V](s.contractAccount, []byte(s.slotName))
}

func (s *VMSlot[V]) MustGet() (V, error) {
	exist, v, err := s.Get()
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("contract[%s] slot[%s] not exist", s.contractAccount.GetAddress(), s.slotName)
	}
	return v, nil
}

// GetOrDefault returns the zero value of V for an unset slot.
func (s *VMSlot[V]) GetOrDefault() (V, error) {
	_, v, err := s.Get()
	return v, err
}

func (s *VMSlot[V]) Has() bool {
	exist, _, err := s.Get()
	return exist && err == nil
}

func (s *VMSlot[V]) Put(v V) error {
	return storeValue(s.contractAccount, []byte(s.slotName), v)
}

// Update loads the slot (zero value if unset), applies fn and stores the
// result, nothing is written when fn fails.
func (s *VMSlot[V]) Update(fn func(v *V) error) error {
	v, err := s.GetOrDefault()
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return s.Put(v)
}

func (s *VMSlot[V]) Delete() {
	s.contractAccount.SetState([]byte(s.slotName), []byte{flagDeleted})
}
