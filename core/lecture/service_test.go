package lecture_test

import (
	"context"
	"testing"
	"time"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/lecture"
	dummydb "github.com/darasahq/darasa/storage/database/dummy"
	testutil "github.com/darasahq/darasa/tests"
)

func setup(t *testing.T) (lecture.ServiceInterface, lecture.Repository) {
	t.Helper()
	testutil.SetupConf()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	repo := dummydb.NewLectureRepository(db)
	return lecture.NewService(repo), repo
}

func TestService_Ingest(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	t.Run("audio file is required", func(t *testing.T) {
		_, err := svc.Ingest(ctx, "t1", lecture.NewSummary{Title: "Algebra"})
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			t.Fatalf("Ingest() error = %v, want *core.ValidationError", err)
		}
		if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "audio" {
			t.Errorf("Ingest() fields = %+v, want one error on \"audio\"", vErr.Fields)
		}
	})

	t.Run("title and subject default when omitted", func(t *testing.T) {
		sum, err := svc.Ingest(ctx, "t1", lecture.NewSummary{
			AudioFile: lecture.AudioFile{URL: "/uploads/1.mp3", Filename: "1.mp3"},
		})
		if err != nil {
			t.Fatalf("Ingest(): %v", err)
		}
		if sum.Title != "Untitled Lecture" {
			t.Errorf("Title = %q, want %q", sum.Title, "Untitled Lecture")
		}
		if sum.Subject != "General" {
			t.Errorf("Subject = %q, want %q", sum.Subject, "General")
		}
	})

	t.Run("owner and status are set by the service", func(t *testing.T) {
		sum, err := svc.Ingest(ctx, "t1", lecture.NewSummary{
			Title:     "Algebra II",
			Subject:   "Math",
			AudioFile: lecture.AudioFile{URL: "/uploads/2.mp3", Filename: "2.mp3"},
		})
		if err != nil {
			t.Fatalf("Ingest(): %v", err)
		}
		if sum.ID == "" {
			t.Error("ID not assigned")
		}
		if sum.TeacherID != "t1" {
			t.Errorf("TeacherID = %q, want %q", sum.TeacherID, "t1")
		}
		if sum.Status != lecture.StatusPending {
			t.Errorf("Status = %q, want %q", sum.Status, lecture.StatusPending)
		}
		if sum.PublishedAt != nil {
			t.Errorf("PublishedAt = %v, want nil", sum.PublishedAt)
		}
		if sum.CreatedAt.IsZero() || sum.UpdatedAt.IsZero() {
			t.Error("timestamps not set")
		}
	})
}

func TestService_Publish(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	sum := testutil.CreateSummary(t, repo, "Cells", "Biology", "t1", lecture.StatusPending)

	t.Run("someone else's summary looks missing", func(t *testing.T) {
		if _, err := svc.Publish(ctx, "t2", sum.ID); err != lecture.ErrNotFound {
			t.Errorf("Publish() error = %v, wantErr %v", err, lecture.ErrNotFound)
		}
	})

	t.Run("unknown summary", func(t *testing.T) {
		if _, err := svc.Publish(ctx, "t1", "b5bb4b77-086e-4cdd-9a85-0e49f6db7d54"); err != lecture.ErrNotFound {
			t.Errorf("Publish() error = %v, wantErr %v", err, lecture.ErrNotFound)
		}
	})

	var publishedAt time.Time

	t.Run("owner publishes", func(t *testing.T) {
		pub, err := svc.Publish(ctx, "t1", sum.ID)
		if err != nil {
			t.Fatalf("Publish(): %v", err)
		}
		if pub.Status != lecture.StatusPublished {
			t.Errorf("Status = %q, want %q", pub.Status, lecture.StatusPublished)
		}
		if pub.PublishedAt == nil {
			t.Fatal("PublishedAt not set")
		}
		publishedAt = *pub.PublishedAt
	})

	t.Run("re-publish is a no-op", func(t *testing.T) {
		pub, err := svc.Publish(ctx, "t1", sum.ID)
		if err != nil {
			t.Fatalf("Publish(): %v", err)
		}
		if pub.PublishedAt == nil || !pub.PublishedAt.Equal(publishedAt) {
			t.Errorf("PublishedAt = %v, want %v unchanged", pub.PublishedAt, publishedAt)
		}
	})
}

func TestService_Delete(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	sum := testutil.CreateSummary(t, repo, "Optics", "Physics", "t1", lecture.StatusPending)

	t.Run("someone else's summary looks missing", func(t *testing.T) {
		if err := svc.Delete(ctx, "t2", sum.ID); err != lecture.ErrNotFound {
			t.Errorf("Delete() error = %v, wantErr %v", err, lecture.ErrNotFound)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if err := svc.Delete(ctx, "t1", sum.ID); err != nil {
			t.Fatalf("Delete(): %v", err)
		}
		if _, err := repo.GetSummary(ctx, lecture.GetFilter{ID: sum.ID}); err != lecture.ErrNotFound {
			t.Errorf("GetSummary() error = %v, wantErr %v", err, lecture.ErrNotFound)
		}
	})

	t.Run("delete twice", func(t *testing.T) {
		if err := svc.Delete(ctx, "t1", sum.ID); err != lecture.ErrNotFound {
			t.Errorf("Delete() error = %v, wantErr %v", err, lecture.ErrNotFound)
		}
	})
}

func TestService_Queries(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	old := testutil.CreateSummary(t, repo, "Lesson 1", "Math", "t1", lecture.StatusPending, now.Add(-2*time.Hour))
	recent := testutil.CreateSummary(t, repo, "Lesson 2", "Math", "t1", lecture.StatusPending, now.Add(-time.Hour))
	other := testutil.CreateSummary(t, repo, "Lesson 3", "Bio", "t2", lecture.StatusPending, now)

	firstPub, err := svc.Publish(ctx, "t1", old.ID)
	if err != nil {
		t.Fatalf("Publish(): %v", err)
	}
	lastPub, err := svc.Publish(ctx, "t2", other.ID)
	if err != nil {
		t.Fatalf("Publish(): %v", err)
	}

	t.Run("teacher sees only their own, newest first", func(t *testing.T) {
		sums, err := svc.QueryForTeacher(ctx, "t1")
		if err != nil {
			t.Fatalf("QueryForTeacher(): %v", err)
		}
		if len(sums) != 2 {
			t.Fatalf("len = %d, want 2", len(sums))
		}
		if sums[0].ID != recent.ID || sums[1].ID != old.ID {
			t.Errorf("order = [%s %s], want [%s %s]", sums[0].Title, sums[1].Title, recent.Title, old.Title)
		}
	})

	t.Run("published feed crosses teachers, most recent first", func(t *testing.T) {
		sums, err := svc.QueryPublished(ctx)
		if err != nil {
			t.Fatalf("QueryPublished(): %v", err)
		}
		if len(sums) != 2 {
			t.Fatalf("len = %d, want 2", len(sums))
		}
		if sums[0].ID != lastPub.ID || sums[1].ID != firstPub.ID {
			t.Errorf("order = [%s %s], want [%s %s]", sums[0].Title, sums[1].Title, lastPub.Title, firstPub.Title)
		}
		for _, sum := range sums {
			if !sum.IsPublished() {
				t.Errorf("summary %s is %q, want %q", sum.Title, sum.Status, lecture.StatusPublished)
			}
		}
	})
}
