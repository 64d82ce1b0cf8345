package workflow

import (
	"context"
	"fmt"
)

// Service is a named business collaborator callable from service steps.
// The result shape is method-specific and interpreted only by the step
// that declared the call.
type Service interface {
	Call(ctx context.Context, method string, params map[string]any) (map[string]any, error)
}

// ServiceRegistry looks up business services by name. It is populated at
// startup and read-only afterwards, so concurrent reads need no locking.
type ServiceRegistry struct {
	services map[string]Service
}

// NewServiceRegistry creates an empty registry.
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[string]Service)}
}

// Register adds a service under the given name. Startup-only.
func (r *ServiceRegistry) Register(name string, s Service) {
	r.services[name] = s
}

// Call dispatches to the named service.
func (r *ServiceRegistry) Call(ctx context.Context, name, method string, params map[string]any) (map[string]any, error) {
	s, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("service not registered: %s", name)
	}
	return s.Call(ctx, method, params)
}

// Has reports whether a service is registered.
func (r *ServiceRegistry) Has(name string) bool {
	_, ok := r.services[name]
	return ok
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context, method string, params map[string]any) (map[string]any, error)

func (f ServiceFunc) Call(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	return f(ctx, method, params)
}
