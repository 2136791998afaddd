package factory

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start() error
	Address() string
	Close() error
	IsInterfaceNil() bool
}
