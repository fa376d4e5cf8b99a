package packer

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/axiomesh/axiom-custody/pkg/types"
)

type Event interface {
	Pack(abi abi.ABI) (*types.EvmLog, error)
}

type Error interface {
	Pack(abi abi.ABI) error
}

func PackEvent(eventStruct any, event abi.Event) (*types.EvmLog, error) {
	if eventStruct == nil {
		return nil, errors.New("event struct is nil")
	}
	// indexed arguments go to topics, the rest is abi encoded into data
	var noIndexedArgs []any
	topicArgs := [][]any{
		{event.ID},
	}
	v := reflect.ValueOf(eventStruct).Elem()
	for _, input := range event.Inputs {
		field := v.FieldByName(abi.ToCamelCase(input.Name))
		if !field.IsValid() {
			return nil, errors.Errorf("event %s missing field %s", event.Name, abi.ToCamelCase(input.Name))
		}
		if !input.Indexed {
			noIndexedArgs = append(noIndexedArgs, field.Interface())
		} else {
			topicArgs = append(topicArgs, []any{field.Interface()})
		}
	}

	topics, err := abi.MakeTopics(topicArgs...)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s make topics error", event.Name)
	}

	packedData, err := event.Inputs.NonIndexed().Pack(noIndexedArgs...)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s pack args error", event.Name)
	}

	return &types.EvmLog{
		Topics: lo.Map(topics, func(t []common.Hash, _ int) common.Hash {
			return t[0]
		}),
		Data:    packedData,
		Removed: false,
	}, nil
}

type RevertError struct {
	Err error

	// Data is encoded reverted reason, or result
	Data []byte

	// reverted result
	Str string
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("%s errdata %s", e.Err.Error(), e.Str)
}

// Is reports whether target is a revert with the same error selector,
// arguments are ignored.
func (e *RevertError) Is(target error) bool {
	t, ok := target.(*RevertError)
	if !ok {
		return false
	}
	if len(e.Data) < 4 || len(t.Data) < 4 {
		return bytes.Equal(e.Data, t.Data)
	}
	return bytes.Equal(e.Data[:4], t.Data[:4])
}

func (e *RevertError) Unwrap() error {
	return e.Err
}

// Selector returns the 4 bytes error id, zero when the revert carries no data.
func (e *RevertError) Selector() [4]byte {
	var s [4]byte
	if len(e.Data) >= 4 {
		copy(s[:], e.Data[:4])
	}
	return s
}

func PackError(errStruct any, abiErr abi.Error) error {
	if errStruct == nil {
		return errors.New("error struct is nil")
	}
	selector := common.CopyBytes(abiErr.ID.Bytes()[:4])
	var args []any
	v := reflect.ValueOf(errStruct).Elem()
	for _, input := range abiErr.Inputs {
		args = append(args, v.FieldByName(abi.ToCamelCase(input.Name)).Interface())
	}
	packed, err := abiErr.Inputs.Pack(args...)
	if err != nil {
		return err
	}

	return &RevertError{
		Err:  vm.ErrExecutionReverted,
		Data: append(selector, packed...),
		Str:  fmt.Sprintf("%s, args: %v", abiErr.String(), args),
	}
}

// UnpackError resolves revert data against the errors declared in contractABI.
func UnpackError(contractABI abi.ABI, data []byte) (string, []any, error) {
	if len(data) < 4 {
		return "", nil, errors.New("revert data too short")
	}
	for name, abiErr := range contractABI.Errors {
		if !bytes.Equal(abiErr.ID.Bytes()[:4], data[:4]) {
			continue
		}
		args, err := abiErr.Inputs.Unpack(data[4:])
		if err != nil {
			return name, nil, errors.Wrapf(err, "unpack error %s", name)
		}
		return name, args, nil
	}
	return "", nil, errors.Errorf("unknown error selector %x", data[:4])
}
