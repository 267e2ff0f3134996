package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/consumer"
)

type UnembeddedLister interface {
	ListUsersWithUnembedded(ctx context.Context) ([]int64, error)
}

// ResyncJob sweeps for users who still have rows without vectors, catching
// triggers the stream lost. Each user is processed with the same pipeline the
// trigger consumer uses, one at a time; a failing user does not stop the
// sweep.
type ResyncJob struct {
	exercises UnembeddedLister
	workouts  UnembeddedLister
	ingestor  consumer.Ingestor
}

func NewResyncJob(exercises, workouts UnembeddedLister, ingestor consumer.Ingestor) *ResyncJob {
	return &ResyncJob{exercises: exercises, workouts: workouts, ingestor: ingestor}
}

func (j *ResyncJob) Name() string {
	return "embedding_resync"
}

func (j *ResyncJob) Run(ctx context.Context) error {
	users := map[int64]struct{}{}
	exUsers, err := j.exercises.ListUsersWithUnembedded(ctx)
	if err != nil {
		return err
	}
	for _, id := range exUsers {
		users[id] = struct{}{}
	}
	woUsers, err := j.workouts.ListUsersWithUnembedded(ctx)
	if err != nil {
		return err
	}
	for _, id := range woUsers {
		users[id] = struct{}{}
	}
	if len(users) == 0 {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	logger.Info("resync sweep found stale users", zap.Int("count", len(users)))
	for id := range users {
		if err := j.ingestor.ProcessUser(ctx, id); err != nil {
			logger.Error("resync failed for user", zap.Int64("user_id", id), zap.Error(err))
		}
	}
	return nil
}
