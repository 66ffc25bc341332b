package ports

import "context"

// Presenter shows a resolution target to the user.
type Presenter interface {
	// Present opens target, preferably in a secondary window. It returns
	// a nil Window when nothing can be closed afterwards.
	Present(ctx context.Context, target string) (Window, error)
}

// Window is an opened secondary window.
type Window interface {
	Close() error
}
