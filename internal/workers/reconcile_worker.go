// Package workers hosts the scheduled background jobs.
package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"academy_backend/internal/logger"
	"academy_backend/internal/repositories"
)

// ReconcileWorker periodically recomputes the denormalized student
// counters from the enrollment table and sweeps expired verification and
// password reset tokens. The counters are hints kept fresh on the write
// path; this job repairs whatever drift crashes or races left behind.
type ReconcileWorker struct {
	repos *repositories.Registry
	cron  *cron.Cron
}

func NewReconcileWorker(repos *repositories.Registry) *ReconcileWorker {
	return &ReconcileWorker{
		repos: repos,
		cron:  cron.New(),
	}
}

// Start schedules the job on the given spec (e.g. "@hourly") and runs the
// cron loop until Stop is called.
func (w *ReconcileWorker) Start(spec string) error {
	_, err := w.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := w.RunOnce(ctx); err != nil {
			logger.WorkerLog("reconcile", "scheduled run", err)
		}
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

func (w *ReconcileWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs a single reconciliation pass across all tenants.
func (w *ReconcileWorker) RunOnce(ctx context.Context) error {
	started := time.Now()

	fixedCourses, err := w.reconcileCourses(ctx)
	if err != nil {
		return err
	}
	fixedCohorts, err := w.reconcileCohorts(ctx)
	if err != nil {
		return err
	}
	swept, err := w.repos.Users.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		return err
	}

	logger.Info("reconciliation pass finished",
		"courses_fixed", fixedCourses,
		"cohorts_fixed", fixedCohorts,
		"tokens_swept", swept,
		"duration", time.Since(started).String(),
	)
	return nil
}

func (w *ReconcileWorker) reconcileCourses(ctx context.Context) (int, error) {
	courses, err := w.repos.Courses.AllCourses(ctx)
	if err != nil {
		return 0, err
	}
	fixed := 0
	for i := range courses {
		course := &courses[i]
		actual, err := w.repos.Enrollments.CountActiveByCourse(ctx, course.SiteID, course.ID)
		if err != nil {
			return fixed, err
		}
		if int(actual) == course.TotalStudents {
			continue
		}
		if err := w.repos.Courses.SetCourseStudents(ctx, course.SiteID, course.ID, int(actual)); err != nil {
			return fixed, err
		}
		logger.Info("course counter reconciled",
			"course_id", course.ID, "was", course.TotalStudents, "now", actual)
		fixed++
	}
	return fixed, nil
}

func (w *ReconcileWorker) reconcileCohorts(ctx context.Context) (int, error) {
	cohorts, err := w.repos.Courses.AllCohorts(ctx)
	if err != nil {
		return 0, err
	}
	fixed := 0
	for i := range cohorts {
		cohort := &cohorts[i]
		actual, err := w.repos.Enrollments.CountActiveByCohort(ctx, cohort.SiteID, cohort.ID)
		if err != nil {
			return fixed, err
		}
		if int(actual) == cohort.TotalStudents {
			continue
		}
		if err := w.repos.Courses.SetCohortStudents(ctx, cohort.SiteID, cohort.ID, int(actual)); err != nil {
			return fixed, err
		}
		logger.Info("cohort counter reconciled",
			"cohort_id", cohort.ID, "was", cohort.TotalStudents, "now", actual)
		fixed++
	}
	return fixed, nil
}
