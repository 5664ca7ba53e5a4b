package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/thread"
)

const (
	insertThreadQuery       = `INSERT INTO thread (id, email, title, body, date) VALUES (:id, :email, :title, :body, :date)`
	selectLatestThreadQuery = `SELECT id, email, title, body, date FROM thread ORDER BY date DESC LIMIT $1`
)

type threadRepository struct {
	db core.DB
}

var _ thread.Repository = (*threadRepository)(nil) // interface compliance check

func NewThreadRepository(db core.DB) *threadRepository {
	return &threadRepository{db: db}
}

func (repo threadRepository) CreateThread(ctx context.Context, th thread.Thread) (thread.Thread, error) {
	th.Date = th.Date.UTC()
	if _, err := repo.db.NamedExecContext(ctx, insertThreadQuery, th); err != nil {
		return thread.Thread{}, errors.Wrap(err, "inserting thread")
	}
	return th, nil
}

func (repo threadRepository) QueryLatestThreads(ctx context.Context, limit int) ([]thread.Thread, error) {
	threads := make([]thread.Thread, 0, limit)
	if err := repo.db.SelectContext(ctx, &threads, selectLatestThreadQuery, limit); err != nil {
		return nil, errors.Wrap(err, "selecting latest threads")
	}
	for i := range threads {
		threads[i].Date = threads[i].Date.UTC()
	}
	return threads, nil
}
