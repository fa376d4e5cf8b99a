package jsonrpc

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/internal/executor"
)

const Namespace = "custody"

type ChainBrokerService struct {
	logger logrus.FieldLogger
	rpc    *rpc.Server
	server *http.Server
}

// NewChainBrokerService registers the custody namespace, the handler serves json-rpc
// over http POST.
func NewChainBrokerService(exec executor.Executor, logger logrus.FieldLogger) (*ChainBrokerService, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(Namespace, NewCustodyAPI(exec, logger)); err != nil {
		return nil, errors.Wrapf(err, "register %s namespace", Namespace)
	}
	return &ChainBrokerService{logger: logger, rpc: srv}, nil
}

func (cbs *ChainBrokerService) Handler() http.Handler {
	return cbs.rpc
}

// Start listens on listen in the background until Stop.
func (cbs *ChainBrokerService) Start(listen string) {
	cbs.server = &http.Server{
		Addr:              listen,
		Handler:           cbs.rpc,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := cbs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cbs.logger.WithField("err", err).Error("JSON-RPC service stopped")
		}
	}()
	cbs.logger.WithField("listen", listen).Info("JSON-RPC service started")
}

func (cbs *ChainBrokerService) Stop() error {
	cbs.rpc.Stop()
	if cbs.server == nil {
		return nil
	}
	return cbs.server.Close()
}
