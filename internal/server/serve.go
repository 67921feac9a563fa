package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Serve runs srv on ln until ctx is cancelled, then shuts it down allowing
// in-flight requests up to grace to finish. It returns only once shutdown
// has completed.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	shutdown := make(chan error, 1)
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
			shutdown <- nil
			return
		}
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		shutdown <- srv.Shutdown(sctx)
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		close(stop)
		<-shutdown
		return err
	}
	return <-shutdown
}
