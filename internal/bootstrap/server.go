package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/dakshgoel/schedulr/api"
	"github.com/dakshgoel/schedulr/config"
	"github.com/dakshgoel/schedulr/internal/service/meetings"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, meetingSvc meetings.MeetingUseCase) error {
	router := gin.Default()

	meetingHandler := api.NewMeetingHandler(meetingSvc)
	meetingHandler.Register(router.Group("/api/meetings"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
