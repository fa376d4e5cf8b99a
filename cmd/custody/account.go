package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-custody/internal/executor"
	syscommon "github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/saccount"
	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/packer"
)

var accountAddressArgs = struct {
	Owner string
	Salt  uint64
}{}

var accountCreateArgs = struct {
	Owner         string
	Salt          uint64
	Guardians     cli.StringSlice
	Threshold     uint64
	RecoveryDelay time.Duration
}{}

var accountInfoArgs = struct {
	Account string
}{}

var accountCMD = &cli.Command{
	Name:  "account",
	Usage: "The custody account manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "address",
			Usage:  "Predict the account address of an owner and salt",
			Action: accountAddress,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "owner",
					Usage:       "owner address",
					Destination: &accountAddressArgs.Owner,
					Required:    true,
				},
				&cli.Uint64Flag{
					Name:        "salt",
					Usage:       "creation salt",
					Destination: &accountAddressArgs.Salt,
					Required:    false,
				},
			},
		},
		{
			Name:   "create",
			Usage:  "Create an account in the local ledger and commit a block",
			Action: accountCreate,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "owner",
					Usage:       "owner address, also the sender of the creation",
					Destination: &accountCreateArgs.Owner,
					Required:    true,
				},
				&cli.Uint64Flag{
					Name:        "salt",
					Usage:       "creation salt",
					Destination: &accountCreateArgs.Salt,
					Required:    false,
				},
				&cli.StringSliceFlag{
					Name:        "guardians",
					Usage:       "initial guardian addresses",
					Destination: &accountCreateArgs.Guardians,
					Required:    false,
				},
				&cli.Uint64Flag{
					Name:        "threshold",
					Usage:       "guardian approvals required by a recovery, 0 keeps the default",
					Destination: &accountCreateArgs.Threshold,
					Required:    false,
				},
				&cli.DurationFlag{
					Name:        "recovery-delay",
					Usage:       "wait between recovery initiation and execution, 0 keeps the default",
					Destination: &accountCreateArgs.RecoveryDelay,
					Required:    false,
				},
			},
		},
		{
			Name:   "info",
			Usage:  "Show owner, guardians and recovery state of an account",
			Action: accountInfo,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "account",
					Usage:       "account address",
					Destination: &accountInfoArgs.Account,
					Required:    true,
				},
			},
		},
	},
}

func parseAddress(name, s string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(s) {
		return ethcommon.Address{}, errors.Errorf("invalid %s address %q", name, s)
	}
	return ethcommon.HexToAddress(s), nil
}

// openExecutor opens the ledger of the repo, callers must Close it.
func openExecutor(ctx *cli.Context) (*executor.BlockExecutor, error) {
	r, err := loadRepo(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("repo not initialized")
	}
	if err := loggers.Initialize(ctx.Context, r, false); err != nil {
		return nil, err
	}
	return executor.NewWithRepo(r)
}

func call(ctx context.Context, exec *executor.BlockExecutor, contractABI *abi.ABI, to ethcommon.Address, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	ret, err := exec.Call(ctx, ethcommon.Address{}, to, data)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	return contractABI.Unpack(method, ret)
}

func accountAddress(ctx *cli.Context) error {
	owner, err := parseAddress("owner", accountAddressArgs.Owner)
	if err != nil {
		return err
	}
	exec, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	factory := ethcommon.HexToAddress(syscommon.AccountFactoryContractAddr)
	out, err := call(ctx.Context, exec, saccount.SmartAccountFactoryBuildConfig.MustGetABI(), factory, "getAddress", owner, new(big.Int).SetUint64(accountAddressArgs.Salt))
	if err != nil {
		return err
	}
	fmt.Println(out[0].(ethcommon.Address).Hex())
	return nil
}

func accountCreate(ctx *cli.Context) error {
	owner, err := parseAddress("owner", accountCreateArgs.Owner)
	if err != nil {
		return err
	}
	parsed := make([]ethcommon.Address, 0, len(accountCreateArgs.Guardians.Value()))
	for _, s := range accountCreateArgs.Guardians.Value() {
		guardian, err := parseAddress("guardian", s)
		if err != nil {
			return err
		}
		parsed = append(parsed, guardian)
	}

	var initData []byte
	if len(parsed) != 0 || accountCreateArgs.Threshold != 0 || accountCreateArgs.RecoveryDelay != 0 {
		initData, err = saccount.PackInitData(parsed, accountCreateArgs.Threshold, accountCreateArgs.RecoveryDelay)
		if err != nil {
			return err
		}
	}

	exec, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	factoryABI := saccount.SmartAccountFactoryBuildConfig.MustGetABI()
	data, err := factoryABI.Pack("createAccount", owner, new(big.Int).SetUint64(accountCreateArgs.Salt), initData)
	if err != nil {
		return err
	}
	receipt, err := exec.ApplyTransaction(ctx.Context, &executor.Transaction{
		From:  owner,
		To:    ethcommon.HexToAddress(syscommon.AccountFactoryContractAddr),
		Nonce: exec.GetNonce(owner),
		Data:  data,
	})
	if err != nil {
		return err
	}
	if !receipt.IsSuccess() {
		if name, _, unpackErr := packer.UnpackError(*factoryABI, receipt.Ret); unpackErr == nil {
			return errors.Errorf("create account reverted: %s", name)
		}
		if name, _, unpackErr := packer.UnpackError(*saccount.SmartAccountBuildABI(), receipt.Ret); unpackErr == nil {
			return errors.Errorf("create account reverted: %s", name)
		}
		return errors.Errorf("create account failed: %s", receipt.Err)
	}
	meta, err := exec.Commit()
	if err != nil {
		return err
	}

	out, err := factoryABI.Unpack("createAccount", receipt.Ret)
	if err != nil {
		return err
	}
	fmt.Printf("account %s created at height %d, tx %s\n", out[0].(ethcommon.Address).Hex(), meta.Height, receipt.TxHash.Hex())
	return nil
}

type accountInfoView struct {
	Account        ethcommon.Address   `json:"account"`
	Owner          ethcommon.Address   `json:"owner"`
	Implementation ethcommon.Address   `json:"implementation"`
	Version        uint64              `json:"version"`
	Nonce          *big.Int            `json:"nonce"`
	Guardians      []ethcommon.Address `json:"guardians"`
	Threshold      *big.Int            `json:"threshold"`
	RecoveryDelay  string              `json:"recovery_delay"`
	Recovery       *recoveryView       `json:"recovery,omitempty"`
}

type recoveryView struct {
	PendingOwner ethcommon.Address   `json:"pending_owner"`
	InitiatedAt  *big.Int            `json:"initiated_at"`
	Approvals    []ethcommon.Address `json:"approvals"`
}

func accountInfo(ctx *cli.Context) error {
	account, err := parseAddress("account", accountInfoArgs.Account)
	if err != nil {
		return err
	}
	exec, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	factory := ethcommon.HexToAddress(syscommon.AccountFactoryContractAddr)
	out, err := call(ctx.Context, exec, saccount.SmartAccountFactoryBuildConfig.MustGetABI(), factory, "isAccount", account)
	if err != nil {
		return err
	}
	if !out[0].(bool) {
		return errors.Errorf("%s is not a custody account", account)
	}

	accountABI := saccount.SmartAccountBuildABI()
	view := &accountInfoView{Account: account}
	single := func(method string) (any, error) {
		out, err := call(ctx.Context, exec, accountABI, account, method)
		if err != nil {
			return nil, err
		}
		return out[0], nil
	}
	for method, assign := range map[string]func(v any){
		"owner":          func(v any) { view.Owner = v.(ethcommon.Address) },
		"implementation": func(v any) { view.Implementation = v.(ethcommon.Address) },
		"version":        func(v any) { view.Version = v.(uint64) },
		"getNonce":       func(v any) { view.Nonce = v.(*big.Int) },
		"getGuardians":   func(v any) { view.Guardians = v.([]ethcommon.Address) },
		"threshold":      func(v any) { view.Threshold = v.(*big.Int) },
		"recoveryDelay": func(v any) {
			view.RecoveryDelay = (time.Duration(v.(*big.Int).Int64()) * time.Second).String()
		},
	} {
		v, err := single(method)
		if err != nil {
			return err
		}
		assign(v)
	}

	out, err = call(ctx.Context, exec, accountABI, account, "getRecoveryRequest")
	if err != nil {
		return err
	}
	if out[0].(bool) {
		view.Recovery = &recoveryView{
			PendingOwner: out[1].(ethcommon.Address),
			InitiatedAt:  out[2].(*big.Int),
			Approvals:    out[3].([]ethcommon.Address),
		}
	}

	raw, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
