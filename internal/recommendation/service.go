package recommendation

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/recommendations-backend/internal/apperr"
)

const (
	defaultRecentLimit = 10
	duplicateNameMsg   = "Recommendations names must be unique"
	notFoundMsg        = "Recommendation not found"
)

// Service provides the voting and selection logic on top of a Repository.
type Service struct {
	repo        Repository
	random      RandomSource
	recentLimit int
	log         logrus.FieldLogger
}

type Option func(*Service)

// WithRandom replaces the random source used by GetRandom.
func WithRandom(rnd RandomSource) Option {
	return func(s *Service) { s.random = rnd }
}

// WithRecentLimit sets how many entries List returns.
func WithRecentLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(repo Repository, opts ...Option) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		repo:        repo,
		random:      DefaultRandom,
		recentLimit: defaultRecentLimit,
		log:         discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert creates a recommendation with score 0.
func (s *Service) Insert(ctx context.Context, in CreateInput) (*Recommendation, error) {
	if err := in.validate(); err != nil {
		return nil, apperr.NewUnprocessable(err.Error())
	}
	// only the link is normalised; names are kept exactly as sent
	in.YoutubeLink = strings.TrimSpace(in.YoutubeLink)

	existing, err := s.repo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.NewConflict(duplicateNameMsg)
	}

	created, err := s.repo.Create(ctx, Recommendation{Name: in.Name, YoutubeLink: in.YoutubeLink})
	if errors.Is(err, ErrDuplicateName) {
		return nil, apperr.Wrap(apperr.Conflict, duplicateNameMsg, err)
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"id": created.ID, "name": created.Name}).Info("recommendation created")
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Recommendation, error) {
	return s.mustFind(ctx, id)
}

func (s *Service) Upvote(ctx context.Context, id int64) error {
	_, _, err := s.vote(ctx, id, Upvote)
	return err
}

// Downvote lowers the score and removes the entry once it drops below
// RemovalThreshold. The update and the removal are separate store calls.
func (s *Service) Downvote(ctx context.Context, id int64) error {
	updated, remove, err := s.vote(ctx, id, Downvote)
	if err != nil {
		return err
	}
	if !remove {
		return nil
	}

	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"id": id, "score": updated.Score}).Info("recommendation removed")
	return nil
}

// vote persists the score change atomically and reports whether the stored
// result calls for removal.
func (s *Service) vote(ctx context.Context, id int64, v Vote) (*Recommendation, bool, error) {
	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, false, err
	}

	updated, err := s.repo.UpdateScore(ctx, id, v.Delta())
	if err != nil {
		return nil, false, err
	}
	if updated == nil {
		// removed between the lookup and the update
		return nil, false, apperr.NewNotFound(notFoundMsg)
	}

	// Apply from the score the store held just before this update.
	_, remove := Apply(v, updated.Score-v.Delta())

	s.log.WithFields(logrus.Fields{"id": id, "op": v.String(), "score": updated.Score}).Info("recommendation voted")
	return updated, remove, nil
}

// List returns the most recently created entries, newest first.
func (s *Service) List(ctx context.Context) ([]Recommendation, error) {
	return s.repo.FindRecent(ctx, s.recentLimit)
}

func (s *Service) GetRandom(ctx context.Context) (*Recommendation, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, apperr.NewNotFound("There are no recommendations yet")
	}

	picked, err := Pick(all, s.random)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "There are no recommendations yet", err)
	}
	return &picked, nil
}

// GetTop returns up to amount entries ordered by score, highest first.
func (s *Service) GetTop(ctx context.Context, amount int) ([]Recommendation, error) {
	if amount <= 0 {
		return []Recommendation{}, nil
	}
	return s.repo.TopByScore(ctx, amount)
}

func (s *Service) mustFind(ctx context.Context, id int64) (*Recommendation, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NewNotFound(notFoundMsg)
	}
	return rec, nil
}
