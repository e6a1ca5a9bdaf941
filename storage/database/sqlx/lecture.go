package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/lecture"
)

const lectureTable = "lecture_summary"

type lectureRow struct {
	ID            string      `db:"id"`
	Title         null.String `db:"title"`
	Subject       null.String `db:"subject"`
	TeacherID     null.String `db:"teacher_id"`
	AudioURL      null.String `db:"audio_url"`
	AudioFilename null.String `db:"audio_filename"`
	Transcription null.String `db:"transcription"`
	Summary       null.JSON   `db:"summary"`
	Status        null.String `db:"status"`
	PublishedAt   null.Time   `db:"published_at"`
	CreatedAt     null.Time   `db:"created_at"`
	UpdatedAt     null.Time   `db:"updated_at"`
}

type lectureRepository struct {
	db *sqlx.DB
}

var _ lecture.Repository = (*lectureRepository)(nil) // interface compliance check

func NewLectureRepository(db *sqlx.DB) *lectureRepository {
	return &lectureRepository{db: db}
}

func (repo lectureRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		switch exe := svcExec[0].(type) {
		case sqlx.ExtContext:
			return exe
		case *sql.Tx:
			return &sqlx.Tx{Tx: exe, Mapper: repo.db.Mapper}
		}
	}
	return repo.db
}

func (repo lectureRepository) toRow(sum lecture.Summary) (lectureRow, error) {
	row := lectureRow{
		ID:            sum.ID,
		Title:         null.NewString(sum.Title, sum.Title != ""),
		Subject:       null.NewString(sum.Subject, sum.Subject != ""),
		TeacherID:     null.NewString(sum.TeacherID, sum.TeacherID != ""),
		AudioURL:      null.NewString(sum.AudioFile.URL, sum.AudioFile.URL != ""),
		AudioFilename: null.NewString(sum.AudioFile.Filename, sum.AudioFile.Filename != ""),
		Transcription: null.NewString(sum.Transcription, sum.Transcription != ""),
		Status:        null.NewString(string(sum.Status), sum.Status != ""),
		PublishedAt:   null.TimeFromPtr(sum.PublishedAt),
		CreatedAt:     null.NewTime(sum.CreatedAt.UTC(), !sum.CreatedAt.IsZero()),
		UpdatedAt:     null.NewTime(sum.UpdatedAt.UTC(), !sum.UpdatedAt.IsZero()),
	}
	if sum.Content != nil {
		raw, err := json.Marshal(sum.Content)
		if err != nil {
			return lectureRow{}, errors.Wrap(err, "marshalling summary content")
		}
		row.Summary = null.JSONFrom(raw)
	}
	return row, nil
}

func (repo lectureRepository) fromRow(row lectureRow) (lecture.Summary, error) {
	sum := lecture.Summary{
		ID:        row.ID,
		Title:     row.Title.String,
		Subject:   row.Subject.String,
		TeacherID: row.TeacherID.String,
		AudioFile: lecture.AudioFile{
			URL:      row.AudioURL.String,
			Filename: row.AudioFilename.String,
		},
		Transcription: row.Transcription.String,
		Status:        lecture.Status(row.Status.String),
		PublishedAt:   row.PublishedAt.Ptr(),
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
	if row.Summary.Valid {
		var content lecture.Content
		if err := json.Unmarshal(row.Summary.JSON, &content); err != nil {
			return lecture.Summary{}, errors.Wrap(err, "unmarshalling summary content")
		}
		sum.Content = &content
	}
	return sum, nil
}

func (repo lectureRepository) fromRowSlice(rows []lectureRow) ([]lecture.Summary, error) {
	sums := make([]lecture.Summary, 0, len(rows))
	for _, row := range rows {
		sum, err := repo.fromRow(row)
		if err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, nil
}

// trapNoRowsErr maps psql "no rows" err to lecture.ErrNotFound
func (repo lectureRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return lecture.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo lectureRepository) CreateSummary(ctx context.Context, sum lecture.Summary, exec ...core.DBExecutor) (lecture.Summary, error) {
	sum.ID = uuid.New().String()
	row, err := repo.toRow(sum)
	if err != nil {
		return lecture.Summary{}, err
	}

	query := `
INSERT INTO ` + lectureTable + ` (id, title, subject, teacher_id, audio_url, audio_filename, transcription, summary, status, published_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = repo.getExec(exec).ExecContext(
		ctx, query,
		row.ID, row.Title, row.Subject, row.TeacherID, row.AudioURL, row.AudioFilename,
		row.Transcription, row.Summary, row.Status, row.PublishedAt, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return lecture.Summary{}, errors.Wrap(err, "inserting lecture summary")
	}
	return sum, nil
}

func (repo lectureRepository) GetSummary(ctx context.Context, filter lecture.GetFilter, exec ...core.DBExecutor) (lecture.Summary, error) {
	if filter.ID == "" {
		return lecture.Summary{}, lecture.ErrNotFound
	}
	if _, err := uuid.Parse(filter.ID); err != nil {
		return lecture.Summary{}, lecture.ErrNotFound
	}

	query := `SELECT * FROM ` + lectureTable + ` WHERE id = $1`
	args := []interface{}{filter.ID}
	if filter.TeacherID != "" {
		query += ` AND teacher_id = $2`
		args = append(args, filter.TeacherID)
	}

	var row lectureRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, query, args...); err != nil {
		return lecture.Summary{}, repo.trapNoRowsErr(err, "finding lecture summary")
	}
	return repo.fromRow(row)
}

func (repo lectureRepository) QueryTeacherSummaries(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]lecture.Summary, error) {
	query := `SELECT * FROM ` + lectureTable + ` WHERE teacher_id = $1 ORDER BY created_at DESC`

	var rows []lectureRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying teacher lecture summaries")
	}
	return repo.fromRowSlice(rows)
}

func (repo lectureRepository) QueryPublishedSummaries(ctx context.Context, exec ...core.DBExecutor) ([]lecture.Summary, error) {
	query := `SELECT * FROM ` + lectureTable + ` WHERE status = $1 ORDER BY published_at DESC`

	var rows []lectureRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, lecture.StatusPublished); err != nil {
		return nil, errors.Wrap(err, "querying published lecture summaries")
	}
	return repo.fromRowSlice(rows)
}

func (repo lectureRepository) UpdateSummary(ctx context.Context, sum lecture.Summary, exec ...core.DBExecutor) (lecture.Summary, error) {
	row, err := repo.toRow(sum)
	if err != nil {
		return lecture.Summary{}, err
	}

	query := `
UPDATE ` + lectureTable + `
SET title = $2, subject = $3, transcription = $4, summary = $5, status = $6, published_at = $7, updated_at = $8
WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, query,
		row.ID, row.Title, row.Subject, row.Transcription, row.Summary, row.Status, row.PublishedAt, row.UpdatedAt,
	)
	if err != nil {
		return lecture.Summary{}, errors.Wrap(err, "updating lecture summary")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return lecture.Summary{}, lecture.ErrNotFound
	}
	return sum, nil
}

func (repo lectureRepository) DeleteSummary(ctx context.Context, filter lecture.GetFilter, exec ...core.DBExecutor) (int, error) {
	if filter.ID == "" {
		return 0, nil
	}
	if _, err := uuid.Parse(filter.ID); err != nil {
		return 0, nil
	}

	query := `DELETE FROM ` + lectureTable + ` WHERE id = $1`
	args := []interface{}{filter.ID}
	if filter.TeacherID != "" {
		query += ` AND teacher_id = $2`
		args = append(args, filter.TeacherID)
	}

	res, err := repo.getExec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting lecture summary")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting lecture summary")
	}
	return int(cnt), nil
}
