package worker

import (
	"context"

	"github.com/spec-kit/casting-service/internal/service"
)

// StartAuditWorker registers the audit handlers on the dispatcher and starts
// forwarding in the background. The returned channel closes once forwarding
// has stopped after ctx is cancelled.
func StartAuditWorker(ctx context.Context, auditService *service.AuditService) <-chan struct{} {
	done := make(chan struct{})
	if auditService == nil {
		close(done)
		return done
	}
	auditService.RegisterHandlers()
	go func() {
		defer close(done)
		auditService.Run(ctx)
	}()
	return done
}
