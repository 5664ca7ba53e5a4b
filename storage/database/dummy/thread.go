package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/gradebook/core/thread"
)

type threadRepository struct {
	db *threadTable
}

var _ thread.Repository = (*threadRepository)(nil) // interface compliance check

func NewThreadRepository(db *DB) thread.Repository {
	return &threadRepository{db: db.thread}
}

func (repo *threadRepository) CreateThread(_ context.Context, th thread.Thread) (thread.Thread, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = append(repo.db.table, th)
	return th, nil
}

func (repo *threadRepository) QueryLatestThreads(_ context.Context, limit int) ([]thread.Thread, error) {
	repo.db.RLock()
	threads := make([]thread.Thread, len(repo.db.table))
	copy(threads, repo.db.table)
	repo.db.RUnlock()

	sort.SliceStable(threads, func(i, j int) bool { return threads[i].Date.After(threads[j].Date) })
	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}
