package scheduler

import (
	"context"

	"anoa.com/bloodlink/pkg/logger"
	"go.uber.org/zap"
)

const CounterReconcileJobName = "counter-reconcile"

type CounterReconciler interface {
	ReconcileResponseCounts(ctx context.Context) (int64, error)
}

// CounterReconcileJob rewrites alert response counters that drifted from the
// pledge rows they summarize.
type CounterReconcileJob struct {
	reconciler CounterReconciler
	schedule   string
}

func NewCounterReconcileJob(reconciler CounterReconciler, schedule string) *CounterReconcileJob {
	return &CounterReconcileJob{reconciler: reconciler, schedule: schedule}
}

func (j *CounterReconcileJob) GetName() string     { return CounterReconcileJobName }
func (j *CounterReconcileJob) GetSchedule() string { return j.schedule }

func (j *CounterReconcileJob) Execute(ctx context.Context) error {
	fixed, err := j.reconciler.ReconcileResponseCounts(ctx)
	if err != nil {
		return err
	}
	if fixed > 0 {
		logger.Info("response counters reconciled", zap.Int64("alerts_fixed", fixed))
	}
	return nil
}
