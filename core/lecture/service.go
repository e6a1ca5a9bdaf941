package lecture

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("lecture summary not found")
	errNoAudioFile = errors.New("no audio file uploaded")
)

type (
	Repository interface {
		CreateSummary(ctx context.Context, sum Summary, exec ...core.DBExecutor) (Summary, error)
		// GetSummary applies every set GetFilter field as one query predicate.
		GetSummary(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Summary, error)
		// QueryTeacherSummaries returns a teacher's summaries, newest first.
		QueryTeacherSummaries(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Summary, error)
		// QueryPublishedSummaries returns published summaries, most recently published first.
		QueryPublishedSummaries(ctx context.Context, exec ...core.DBExecutor) ([]Summary, error)
		UpdateSummary(ctx context.Context, sum Summary, exec ...core.DBExecutor) (Summary, error)
		// DeleteSummary removes summaries matching the filter and reports how many rows went.
		DeleteSummary(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Ingest(ctx context.Context, teacherID string, ns NewSummary) (Summary, error)
		QueryForTeacher(ctx context.Context, teacherID string) ([]Summary, error)
		QueryPublished(ctx context.Context) ([]Summary, error)
		Publish(ctx context.Context, teacherID, id string) (Summary, error)
		Delete(ctx context.Context, teacherID, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// Ingest records a freshly uploaded recording for the calling teacher.
// The owner is always the caller; nothing client-supplied can override it.
func (svc *service) Ingest(ctx context.Context, teacherID string, ns NewSummary) (Summary, error) {
	if err := ns.Validate(); err != nil {
		return Summary{}, err
	}

	now := time.Now().UTC()
	sum := Summary{
		Title:     ns.Title,
		Subject:   ns.Subject,
		TeacherID: teacherID,
		AudioFile: ns.AudioFile,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSummary(ctx, sum)
}

func (svc *service) QueryForTeacher(ctx context.Context, teacherID string) ([]Summary, error) {
	return svc.repo.QueryTeacherSummaries(ctx, teacherID)
}

func (svc *service) QueryPublished(ctx context.Context) ([]Summary, error) {
	return svc.repo.QueryPublishedSummaries(ctx)
}

// Publish makes a summary visible to students and parents. Only the owning
// teacher may publish; anyone else gets ErrNotFound, same as for a summary
// that does not exist. Publishing an already-published summary is a no-op
// and leaves PublishedAt untouched.
func (svc *service) Publish(ctx context.Context, teacherID, id string) (Summary, error) {
	sum, err := svc.repo.GetSummary(ctx, GetFilter{ID: id, TeacherID: teacherID})
	if err != nil {
		return Summary{}, err
	}
	if sum.IsPublished() {
		return sum, nil
	}

	now := time.Now().UTC()
	sum.Status = StatusPublished
	sum.PublishedAt = &now
	sum.UpdatedAt = now
	sum, err = svc.repo.UpdateSummary(ctx, sum)
	if err != nil {
		return Summary{}, errors.Wrap(err, "publishing summary")
	}
	return sum, nil
}

// Delete removes a summary under the same ownership constraint as Publish.
// The stored audio file is left behind in blob storage.
func (svc *service) Delete(ctx context.Context, teacherID, id string) error {
	cnt, err := svc.repo.DeleteSummary(ctx, GetFilter{ID: id, TeacherID: teacherID})
	if err != nil {
		return errors.Wrap(err, "deleting summary")
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}
