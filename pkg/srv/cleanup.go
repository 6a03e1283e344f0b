package srv

import "context"

// funcService adapts plain functions to Service.
type funcService struct {
	start    func(ctx context.Context) error
	shutdown func(ctx context.Context) error
}

func (f *funcService) Start(ctx context.Context) error {
	if f.start == nil {
		return nil
	}
	return f.start(ctx)
}

func (f *funcService) Shutdown(ctx context.Context) error {
	if f.shutdown == nil {
		return nil
	}
	return f.shutdown(ctx)
}

// NewCleanup wraps a closer that runs on shutdown.
func NewCleanup(fn func() error) Service {
	return &funcService{
		shutdown: func(context.Context) error {
			if fn == nil {
				return nil
			}
			return fn()
		},
	}
}

// NewFunc builds a Service from start and shutdown callbacks. Either may be nil.
func NewFunc(start, shutdown func(ctx context.Context) error) Service {
	return &funcService{start: start, shutdown: shutdown}
}
