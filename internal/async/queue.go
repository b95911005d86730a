package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Job asks a worker to scan one card file.
type Job struct {
	Path        string
	Mode        constants.ScanMethod
	Persist     bool
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
