package platform

import (
	"context"

	"github.com/aretw0/notegraph/pkg/core"
)

// New opens the storage described by uri and the options, and returns a
// loaded service over it.
//
//	svc, err := platform.New(ctx, "./vault", platform.WithAutoInit(true))
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	storage, err := initStorage(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	eventBuffer, _ := o.config["event_buffer"].(int)
	service := core.NewService(storage, core.ServiceConfig{
		Namespace:   o.namespace,
		TitlePolicy: o.titlePolicy,
		Logger:      o.logger,
		Now:         o.now,
		NewID:       o.newID,
		EventBuffer: eventBuffer,
	})

	if err := service.Load(ctx); err != nil {
		return nil, err
	}
	return service, nil
}
