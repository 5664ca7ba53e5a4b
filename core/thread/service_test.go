package thread_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/thread"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/testutil"
)

func newService(t *testing.T) *thread.Service {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)
	svc, err := thread.NewService(dummydb.NewThreadRepository(db))
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	_, err := thread.NewService(nil)
	assert.Error(t, err)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Create(ctx, "", thread.NewThread{Title: "Exams", Body: "When?"})
	assert.Equal(t, thread.ErrNoAuthor, err)

	before := time.Now().UTC()
	th, err := svc.Create(ctx, "jane@test.cd", thread.NewThread{Title: "Exams", Body: "When?"})
	require.NoError(t, err)
	assert.NotEmpty(t, th.ID)
	assert.Equal(t, "jane@test.cd", th.Email)
	assert.Equal(t, time.UTC, th.Date.Location())
	assert.False(t, th.Date.Before(before.Truncate(time.Second)))
}

func TestService_Latest(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for i := 0; i < thread.LatestLimit+3; i++ {
		_, err := svc.Create(ctx, "jane@test.cd", thread.NewThread{Title: fmt.Sprintf("thread %d", i), Body: "body"})
		require.NoError(t, err)
		time.Sleep(time.Millisecond) // distinct dates
	}

	tests := []struct {
		limit     int
		wantLen   int
		wantFirst string
	}{
		{limit: 0, wantLen: thread.LatestLimit, wantFirst: "thread 12"},
		{limit: 3, wantLen: 3, wantFirst: "thread 12"},
		{limit: 100, wantLen: thread.LatestLimit + 3, wantFirst: "thread 12"},
	}
	for _, tt := range tests {
		threads, err := svc.Latest(ctx, tt.limit)
		require.NoError(t, err)
		require.Len(t, threads, tt.wantLen)
		assert.Equal(t, tt.wantFirst, threads[0].Title)
		for i := 1; i < len(threads); i++ {
			assert.False(t, threads[i].Date.After(threads[i-1].Date))
		}
	}
}

func TestNewThread_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	tests := []struct {
		name    string
		nt      thread.NewThread
		wantErr bool
	}{
		{name: "valid", nt: thread.NewThread{Title: " Exams ", Body: "When?"}},
		{name: "blank title", nt: thread.NewThread{Title: "  ", Body: "When?"}, wantErr: true},
		{name: "no body", nt: thread.NewThread{Title: "Exams"}, wantErr: true},
		{name: "title too long", nt: thread.NewThread{Title: strings.Repeat("a", 257), Body: "When?"}, wantErr: true},
	}
	for _, tt := range tests {
		nt := tt.nt
		err := nt.Validate(validate)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		assert.NoError(t, err, tt.name)
		assert.Equal(t, "Exams", nt.Title)
	}
}
