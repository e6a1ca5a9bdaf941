package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/lecture"
)

type lectureRepository struct {
	db *lectureTable
}

var _ lecture.Repository = (*lectureRepository)(nil) // interface compliance check

func NewLectureRepository(db *DB) *lectureRepository {
	return &lectureRepository{db: db.lecture}
}

func (repo *lectureRepository) matches(sum *lecture.Summary, filter lecture.GetFilter) bool {
	if filter.ID != "" && sum.ID != filter.ID {
		return false
	}
	if filter.TeacherID != "" && sum.TeacherID != filter.TeacherID {
		return false
	}
	return true
}

func (repo *lectureRepository) CreateSummary(ctx context.Context, sum lecture.Summary, exec ...core.DBExecutor) (lecture.Summary, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sum.ID = uuid.New().String()
	repo.db.table[sum.ID] = &sum
	return sum, nil
}

func (repo *lectureRepository) GetSummary(ctx context.Context, filter lecture.GetFilter, exec ...core.DBExecutor) (lecture.Summary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if sum, ok := repo.db.table[filter.ID]; ok && repo.matches(sum, filter) {
			return *sum, nil
		}
	}
	return lecture.Summary{}, lecture.ErrNotFound
}

func (repo *lectureRepository) QueryTeacherSummaries(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]lecture.Summary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sums := make([]lecture.Summary, 0)
	for _, sum := range repo.db.table {
		if sum.TeacherID == teacherID {
			sums = append(sums, *sum)
		}
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].CreatedAt.After(sums[j].CreatedAt) })
	return sums, nil
}

func (repo *lectureRepository) QueryPublishedSummaries(ctx context.Context, exec ...core.DBExecutor) ([]lecture.Summary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sums := make([]lecture.Summary, 0)
	for _, sum := range repo.db.table {
		if sum.IsPublished() {
			sums = append(sums, *sum)
		}
	}
	sort.Slice(sums, func(i, j int) bool {
		ti, tj := sums[i].PublishedAt, sums[j].PublishedAt
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	return sums, nil
}

func (repo *lectureRepository) UpdateSummary(ctx context.Context, sum lecture.Summary, exec ...core.DBExecutor) (lecture.Summary, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sum.ID]; !ok {
		return lecture.Summary{}, lecture.ErrNotFound
	}
	repo.db.table[sum.ID] = &sum
	return sum, nil
}

func (repo *lectureRepository) DeleteSummary(ctx context.Context, filter lecture.GetFilter, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if filter.ID == "" {
		return 0, nil
	}
	var cnt int
	for id, sum := range repo.db.table {
		if repo.matches(sum, filter) {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
