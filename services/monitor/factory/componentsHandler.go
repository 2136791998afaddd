package factory

import (
	"github.com/iulianpascalau/device-health-check/services/monitor/api"
	"github.com/iulianpascalau/device-health-check/services/monitor/config"
	"github.com/iulianpascalau/device-health-check/services/monitor/storage"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("factory")

type componentsHandler struct {
	store  api.Storage
	server Server
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(
	sqlitePath string,
	serviceKeyApi string,
	cfg config.Config,
) (*componentsHandler, error) {
	store, err := storage.NewSQLiteStorage(sqlitePath, cfg.RetentionSeconds, cfg.HistoryLength)
	if err != nil {
		return nil, err
	}

	serverArgs := api.ArgsWebServer{
		ServiceKeyApi:  serviceKeyApi,
		ListenAddress:  cfg.ListenAddress,
		Storage:        store,
		GeneralHandler: api.CORSMiddleware,
	}

	server, err := api.NewServer(serverArgs)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &componentsHandler{
		store:  store,
		server: server,
	}, nil
}

// GetStore returns the storage component
func (ch *componentsHandler) GetStore() api.Storage {
	return ch.store
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the inner components
func (ch *componentsHandler) Start() error {
	return ch.server.Start()
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	err := ch.server.Close()
	if err != nil {
		log.Warn("failed to close the server", "error", err)
	}

	err = ch.store.Close()
	if err != nil {
		log.Warn("failed to close the storage", "error", err)
	}
}
