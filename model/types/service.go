package types

// Service groups related actions under a common name (e.g. cards,
// transactions). Each method is an agent-invocable action.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}

type Proxy func(base Service) Service
