package thread

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
)

// LatestLimit is the number of threads shown on the board.
const LatestLimit = 10

var ErrNoAuthor = errors.New("a thread needs an author")

type (
	Repository interface {
		CreateThread(ctx context.Context, th Thread) (Thread, error)
		// QueryLatestThreads returns at most limit threads, newest first.
		QueryLatestThreads(ctx context.Context, limit int) ([]Thread, error)
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) (*Service, error) {
	if err := vala.BeginValidation().Validate(vala.IsNotNil(repo, "repo")).Check(); err != nil {
		return nil, errors.Wrap(err, "creating thread service")
	}
	return &Service{repo: repo, now: time.Now}, nil
}

// Create posts a validated NewThread on behalf of author (an email).
func (svc *Service) Create(ctx context.Context, author string, nt NewThread) (Thread, error) {
	if author == "" {
		return Thread{}, ErrNoAuthor
	}
	th := Thread{
		ID:    uuid.NewString(),
		Email: author,
		Title: nt.Title,
		Body:  nt.Body,
		Date:  svc.now().UTC(),
	}
	th, err := svc.repo.CreateThread(ctx, th)
	return th, errors.Wrap(err, "creating thread")
}

// Latest returns the newest threads first; limit defaults to LatestLimit.
func (svc *Service) Latest(ctx context.Context, limit int) ([]Thread, error) {
	if limit <= 0 {
		limit = LatestLimit
	}
	threads, err := svc.repo.QueryLatestThreads(ctx, limit)
	return threads, errors.Wrap(err, "querying latest threads")
}
