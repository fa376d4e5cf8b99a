package saccount

import (
	"context"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	recoveryStateIdle   = "idle"
	recoveryStateActive = "active"

	recoveryEventInitiate = "initiate"
	recoveryEventApprove  = "approve"
	recoveryEventExecute  = "execute"
	recoveryEventCancel   = "cancel"
)

// RecoveryRequest is stored only while a recovery is active.
type RecoveryRequest struct {
	PendingOwner ethcommon.Address   `json:"pending_owner"`
	InitiatedAt  uint64              `json:"initiated_at"`
	Approvals    []ethcommon.Address `json:"approvals"`
}

// recoveryMachine restores the recovery lifecycle from storage, transitions
// do their checks and writes in before callbacks so a failed check leaves
// both state and storage untouched.
func (sa *SmartAccount) recoveryMachine() *fsm.FSM {
	state := recoveryStateIdle
	if sa.recoveryRequest.Has() {
		state = recoveryStateActive
	}

	handle := func(fn func(args ...any) error) fsm.Callback {
		return func(_ context.Context, e *fsm.Event) {
			if err := fn(e.Args...); err != nil {
				e.Cancel(err)
			}
		}
	}

	return fsm.NewFSM(
		state,
		fsm.Events{
			{Name: recoveryEventInitiate, Src: []string{recoveryStateIdle}, Dst: recoveryStateActive},
			{Name: recoveryEventApprove, Src: []string{recoveryStateActive}, Dst: recoveryStateActive},
			{Name: recoveryEventExecute, Src: []string{recoveryStateActive}, Dst: recoveryStateIdle},
			{Name: recoveryEventCancel, Src: []string{recoveryStateActive}, Dst: recoveryStateIdle},
		},
		fsm.Callbacks{
			"before_" + recoveryEventInitiate: handle(func(args ...any) error {
				return sa.onInitiateRecovery(args[0].(ethcommon.Address))
			}),
			"before_" + recoveryEventApprove: handle(func(...any) error {
				return sa.onApproveRecovery()
			}),
			"before_" + recoveryEventExecute: handle(func(...any) error {
				return sa.onExecuteRecovery()
			}),
			"before_" + recoveryEventCancel: handle(func(...any) error {
				return sa.onCancelRecovery()
			}),
		},
	)
}

func (sa *SmartAccount) fireRecoveryEvent(event string, args ...any) error {
	err := sa.recoveryMachine().Event(context.Background(), event, args...)
	if err == nil {
		return nil
	}

	var (
		canceled     fsm.CanceledError
		noTransition fsm.NoTransitionError
		invalidEvent fsm.InvalidEventError
	)
	switch {
	case errors.As(err, &canceled):
		return canceled.Err
	case errors.As(err, &noTransition):
		// approve stays in active
		return noTransition.Err
	case errors.As(err, &invalidEvent):
		if invalidEvent.State == recoveryStateActive {
			return sa.Revert(&ErrorRecoveryAlreadyActive{})
		}
		return sa.Revert(&ErrorRecoveryNotActive{})
	}
	return err
}

// InitiateRecovery opens a request to hand the account to newOwner, the
// initiator has to approve it like any other guardian.
func (sa *SmartAccount) InitiateRecovery(newOwner ethcommon.Address) error {
	if err := sa.checkGuardian(); err != nil {
		return err
	}
	return sa.fireRecoveryEvent(recoveryEventInitiate, newOwner)
}

func (sa *SmartAccount) onInitiateRecovery(newOwner ethcommon.Address) error {
	owner, err := sa.Owner()
	if err != nil {
		return err
	}
	if newOwner == (ethcommon.Address{}) || newOwner == owner {
		return sa.Revert(&ErrorInvalidOwner{})
	}

	if err := sa.recoveryRequest.Put(RecoveryRequest{
		PendingOwner: newOwner,
		InitiatedAt:  sa.Ctx.BlockTime,
		Approvals:    []ethcommon.Address{},
	}); err != nil {
		return err
	}
	sa.EmitEvent(&EventRecoveryInitiated{
		NewOwner:    newOwner,
		InitiatedAt: new(big.Int).SetUint64(sa.Ctx.BlockTime),
	})
	sa.Logger.Infof("smart account %s recovery initiated by %s, new owner: %s", sa.EthAddress, sa.Ctx.From, newOwner)
	return nil
}

func (sa *SmartAccount) ApproveRecovery() error {
	if err := sa.checkGuardian(); err != nil {
		return err
	}
	return sa.fireRecoveryEvent(recoveryEventApprove)
}

func (sa *SmartAccount) onApproveRecovery() error {
	request, err := sa.recoveryRequest.MustGet()
	if err != nil {
		return err
	}
	if lo.Contains(request.Approvals, sa.Ctx.From) {
		return sa.Revert(&ErrorAlreadyApproved{})
	}

	request.Approvals = append(request.Approvals, sa.Ctx.From)
	if err := sa.recoveryRequest.Put(request); err != nil {
		return err
	}
	sa.EmitEvent(&EventRecoveryApproved{
		Guardian:      sa.Ctx.From,
		ApprovalCount: big.NewInt(int64(len(request.Approvals))),
	})
	return nil
}

// ExecuteRecovery can be called by anyone once the delay passed and enough
// guardians approved.
func (sa *SmartAccount) ExecuteRecovery() error {
	return sa.fireRecoveryEvent(recoveryEventExecute)
}

func (sa *SmartAccount) onExecuteRecovery() error {
	request, err := sa.recoveryRequest.MustGet()
	if err != nil {
		return err
	}

	delay, err := sa.recoveryDelaySeconds()
	if err != nil {
		return err
	}
	if sa.Ctx.BlockTime < request.InitiatedAt+delay {
		return sa.Revert(&ErrorRecoveryDelayNotPassed{})
	}

	threshold, err := sa.threshold.GetOrDefault()
	if err != nil {
		return err
	}
	if uint64(len(request.Approvals)) < max(threshold, 1) {
		return sa.Revert(&ErrorInsufficientApprovals{})
	}

	oldOwner, err := sa.Owner()
	if err != nil {
		return err
	}
	sa.recoveryRequest.Delete()
	if err := sa.setOwner(request.PendingOwner); err != nil {
		return err
	}
	sa.EmitEvent(&EventRecoveryExecuted{
		OldOwner: oldOwner,
		NewOwner: request.PendingOwner,
	})
	recoveryExecutedCounter.Inc()
	sa.Logger.Infof("smart account %s recovered, owner %s -> %s, approvals: %d", sa.EthAddress, oldOwner, request.PendingOwner, len(request.Approvals))
	return nil
}

func (sa *SmartAccount) CancelRecovery() error {
	if err := sa.checkOwner(); err != nil {
		return err
	}
	return sa.fireRecoveryEvent(recoveryEventCancel)
}

func (sa *SmartAccount) onCancelRecovery() error {
	sa.recoveryRequest.Delete()
	sa.EmitEvent(&EventRecoveryCancelled{})
	return nil
}

func (sa *SmartAccount) GetRecoveryRequest() (bool, ethcommon.Address, *big.Int, []ethcommon.Address, error) {
	exist, request, err := sa.recoveryRequest.Get()
	if err != nil {
		return false, ethcommon.Address{}, nil, nil, err
	}
	if !exist {
		return false, ethcommon.Address{}, big.NewInt(0), []ethcommon.Address{}, nil
	}
	return true, request.PendingOwner, new(big.Int).SetUint64(request.InitiatedAt), request.Approvals, nil
}
