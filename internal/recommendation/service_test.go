package recommendation

import (
	"context"
	"errors"
	"testing"

	"github.com/wichananm65/recommendations-backend/internal/apperr"
)

const wilianLink = "https://www.youtube.com/watch?v=GqLrlHHeww0"

// spyRepository counts gateway calls on top of the in-memory store.
type spyRepository struct {
	*InMemoryRepository
	creates, updates, removes, findAlls int
	failFindAll                        error
}

func newSpy(seed []Recommendation) *spyRepository {
	return &spyRepository{InMemoryRepository: NewInMemoryRepository(seed)}
}

func (s *spyRepository) Create(ctx context.Context, rec Recommendation) (*Recommendation, error) {
	s.creates++
	return s.InMemoryRepository.Create(ctx, rec)
}

func (s *spyRepository) UpdateScore(ctx context.Context, id int64, delta int) (*Recommendation, error) {
	s.updates++
	return s.InMemoryRepository.UpdateScore(ctx, id, delta)
}

func (s *spyRepository) Remove(ctx context.Context, id int64) error {
	s.removes++
	return s.InMemoryRepository.Remove(ctx, id)
}

func (s *spyRepository) FindAll(ctx context.Context) ([]Recommendation, error) {
	s.findAlls++
	if s.failFindAll != nil {
		return nil, s.failFindAll
	}
	return s.InMemoryRepository.FindAll(ctx)
}

func TestService_InsertCreatesWithZeroScore(t *testing.T) {
	repo := newSpy(nil)
	svc := NewService(repo)

	created, err := svc.Insert(context.Background(), CreateInput{Name: "wilian", YoutubeLink: wilianLink})
	if err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}
	if created.Score != 0 || created.ID == 0 {
		t.Fatalf("unexpected created entry %+v", created)
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly one create call, got %d", repo.creates)
	}

	all, _ := repo.FindAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected one stored entry, got %d", len(all))
	}
}

func TestService_InsertDuplicateNameConflicts(t *testing.T) {
	repo := newSpy([]Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink, Score: 3}})
	svc := NewService(repo)

	_, err := svc.Insert(context.Background(), CreateInput{Name: "wilian", YoutubeLink: "https://youtu.be/abc"})
	if !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("store must not be touched on conflict, got %d creates", repo.creates)
	}

	stored, _ := repo.FindByID(context.Background(), 1)
	if stored.Score != 3 || stored.YoutubeLink != wilianLink {
		t.Fatalf("existing entry mutated: %+v", stored)
	}
}

// raceRepository hides the existing row from FindByName to simulate a
// concurrent insert slipping in between the check and the create.
type raceRepository struct {
	*InMemoryRepository
}

func (raceRepository) FindByName(ctx context.Context, name string) (*Recommendation, error) {
	return nil, nil
}

func TestService_InsertStoreDuplicateConflicts(t *testing.T) {
	repo := raceRepository{NewInMemoryRepository([]Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink}})}
	svc := NewService(repo)

	_, err := svc.Insert(context.Background(), CreateInput{Name: "wilian", YoutubeLink: wilianLink})
	if !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict from store, got %v", err)
	}
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName in chain, got %v", err)
	}
}

func TestService_InsertValidation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "  ", YoutubeLink: wilianLink}},
		{"empty link", CreateInput{Name: "song"}},
		{"not youtube", CreateInput{Name: "song", YoutubeLink: "https://vimeo.com/123"}},
		{"no scheme", CreateInput{Name: "song", YoutubeLink: "www.youtube.com/watch?v=1"}},
		{"no video path", CreateInput{Name: "song", YoutubeLink: "https://www.youtube.com/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newSpy(nil)
			_, err := NewService(repo).Insert(context.Background(), tt.in)
			if !apperr.Is(err, apperr.Unprocessable) {
				t.Fatalf("expected unprocessable, got %v", err)
			}
			if repo.creates != 0 {
				t.Fatalf("invalid input must not reach the store")
			}
		})
	}

	for _, link := range []string{wilianLink, "https://youtu.be/GqLrlHHeww0", "http://m.youtube.com/watch?v=x"} {
		if _, err := NewService(newSpy(nil)).Insert(context.Background(), CreateInput{Name: "ok", YoutubeLink: link}); err != nil {
			t.Fatalf("expected %s to be accepted, got %v", link, err)
		}
	}
}

func TestService_Upvote(t *testing.T) {
	repo := newSpy([]Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink, Score: -6}})
	svc := NewService(repo)

	if err := svc.Upvote(context.Background(), 1); err != nil {
		t.Fatalf("expected upvote to succeed, got %v", err)
	}
	rec, _ := repo.FindByID(context.Background(), 1)
	if rec == nil || rec.Score != -5 {
		t.Fatalf("expected score -5 after upvote, got %+v", rec)
	}
	if repo.updates != 1 || repo.removes != 0 {
		t.Fatalf("expected 1 update and no removes, got %d/%d", repo.updates, repo.removes)
	}
}

func TestService_VoteUnknownID(t *testing.T) {
	repo := newSpy(nil)
	svc := NewService(repo)

	if err := svc.Upvote(context.Background(), 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found on upvote, got %v", err)
	}
	if err := svc.Downvote(context.Background(), 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found on downvote, got %v", err)
	}
	if repo.updates != 0 || repo.removes != 0 {
		t.Fatalf("unknown ids must not reach update/remove")
	}
}

func TestService_DownvoteKeepsRecommendation(t *testing.T) {
	repo := newSpy([]Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink, Score: 4}})
	svc := NewService(repo)

	if err := svc.Downvote(context.Background(), 1); err != nil {
		t.Fatalf("expected downvote to succeed, got %v", err)
	}
	rec, _ := repo.FindByID(context.Background(), 1)
	if rec == nil || rec.Score != 3 {
		t.Fatalf("expected score 3, got %+v", rec)
	}
	if repo.updates != 1 || repo.removes != 0 {
		t.Fatalf("expected update without remove, got %d/%d", repo.updates, repo.removes)
	}
}

func TestService_DownvoteAtThresholdKeeps(t *testing.T) {
	repo := newSpy([]Recommendation{{ID: 1, Name: "edge", YoutubeLink: wilianLink, Score: -4}})
	if err := NewService(repo).Downvote(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := repo.FindByID(context.Background(), 1)
	if rec == nil || rec.Score != -5 {
		t.Fatalf("expected entry kept at -5, got %+v", rec)
	}
}

func TestService_DownvoteRemovesRecommendation(t *testing.T) {
	repo := newSpy([]Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink, Score: -5}})
	svc := NewService(repo)

	if err := svc.Downvote(context.Background(), 1); err != nil {
		t.Fatalf("expected downvote to succeed, got %v", err)
	}
	if repo.updates != 1 || repo.removes != 1 {
		t.Fatalf("expected update then remove, got %d/%d", repo.updates, repo.removes)
	}
	rec, _ := repo.FindByID(context.Background(), 1)
	if rec != nil {
		t.Fatalf("expected entry removed, still have %+v", rec)
	}

	// the deleted state is terminal
	if err := svc.Upvote(context.Background(), 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
}

func TestService_InsertKeepsNameExactly(t *testing.T) {
	repo := newSpy(nil)
	svc := NewService(repo)
	ctx := context.Background()

	padded, err := svc.Insert(ctx, CreateInput{Name: "wilian ", YoutubeLink: wilianLink})
	if err != nil {
		t.Fatalf("expected padded name to be accepted, got %v", err)
	}
	if padded.Name != "wilian " {
		t.Fatalf("expected name stored as sent, got %q", padded.Name)
	}
	if _, err := svc.Insert(ctx, CreateInput{Name: "wilian", YoutubeLink: wilianLink}); err != nil {
		t.Fatalf("expected distinct name to be accepted, got %v", err)
	}
	if _, err := svc.Insert(ctx, CreateInput{Name: "wilian ", YoutubeLink: wilianLink}); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected exact repeat to conflict, got %v", err)
	}
	if repo.creates != 2 {
		t.Fatalf("expected 2 creates, got %d", repo.creates)
	}
}

// vanishingRepository loses the row between FindByID and UpdateScore.
type vanishingRepository struct {
	*spyRepository
}

func (r vanishingRepository) UpdateScore(ctx context.Context, id int64, delta int) (*Recommendation, error) {
	r.updates++
	return nil, nil
}

func TestService_VoteOnRowRemovedMidway(t *testing.T) {
	repo := vanishingRepository{newSpy([]Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink, Score: -5}})}
	svc := NewService(repo)

	if err := svc.Upvote(context.Background(), 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found on upvote, got %v", err)
	}
	if err := svc.Downvote(context.Background(), 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found on downvote, got %v", err)
	}
	if repo.updates != 2 || repo.removes != 0 {
		t.Fatalf("expected 2 updates and no removes, got %d/%d", repo.updates, repo.removes)
	}
}

// concurrentDownvotes simulates other downvotes landing between the lookup
// and this update, so the stored score ends lower than the looked-up one.
type concurrentDownvotes struct {
	*spyRepository
	extra int
}

func (r concurrentDownvotes) UpdateScore(ctx context.Context, id int64, delta int) (*Recommendation, error) {
	if _, err := r.InMemoryRepository.UpdateScore(ctx, id, -r.extra); err != nil {
		return nil, err
	}
	return r.spyRepository.UpdateScore(ctx, id, delta)
}

func TestService_DownvoteRemovalUsesStoredScore(t *testing.T) {
	repo := concurrentDownvotes{spyRepository: newSpy([]Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink, Score: 0}}), extra: 6}
	svc := NewService(repo)

	// looked-up score 0 would give -1, but the store ends at -7
	if err := svc.Downvote(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.removes != 1 {
		t.Fatalf("expected removal decided from stored score, got %d removes", repo.removes)
	}
	if rec, _ := repo.FindByID(context.Background(), 1); rec != nil {
		t.Fatalf("expected entry removed, still have %+v", rec)
	}
}

func TestService_List(t *testing.T) {
	seed := make([]Recommendation, 0, 12)
	for i := int64(1); i <= 12; i++ {
		seed = append(seed, Recommendation{ID: i, Name: string(rune('a' + i)), YoutubeLink: wilianLink})
	}
	svc := NewService(newSpy(seed))

	first, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(first) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(first))
	}
	if first[0].ID != 12 || first[9].ID != 3 {
		t.Fatalf("expected newest first, got ids %d..%d", first[0].ID, first[9].ID)
	}

	second, _ := svc.List(context.Background())
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("listing without mutations changed at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	small, _ := NewService(newSpy(seed), WithRecentLimit(3)).List(context.Background())
	if len(small) != 3 {
		t.Fatalf("expected configured limit 3, got %d", len(small))
	}
}

func TestService_GetRandom(t *testing.T) {
	seed := []Recommendation{{ID: 1, Name: "wilian", YoutubeLink: wilianLink, Score: 4}}

	for _, r := range []float64{0.8, 0.6} {
		rnd := &fixedRandom{floats: []float64{r}, ints: []int{0}}
		svc := NewService(newSpy(seed), WithRandom(rnd))

		got, err := svc.GetRandom(context.Background())
		if err != nil {
			t.Fatalf("r=%v: unexpected error %v", r, err)
		}
		if got.Name != "wilian" {
			t.Fatalf("r=%v: expected wilian, got %q", r, got.Name)
		}
	}
}

func TestService_GetRandomEmpty(t *testing.T) {
	rnd := &fixedRandom{}
	repo := newSpy(nil)
	svc := NewService(repo, WithRandom(rnd))

	_, err := svc.GetRandom(context.Background())
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.findAlls != 1 {
		t.Fatalf("expected one FindAll call, got %d", repo.findAlls)
	}
	if rnd.floatHit != 0 || len(rnd.intArgs) != 0 {
		t.Fatalf("no random draw expected on empty store")
	}
}

func TestService_GetRandomPropagatesStoreErrors(t *testing.T) {
	repo := newSpy(nil)
	repo.failFindAll = errors.New("connection refused")

	_, err := NewService(repo).GetRandom(context.Background())
	if err == nil || apperr.KindOf(err) != apperr.Unexpected {
		t.Fatalf("expected unexpected error, got %v", err)
	}
}

func TestService_GetTop(t *testing.T) {
	seed := []Recommendation{
		{ID: 1, Name: "a", Score: 4},
		{ID: 2, Name: "b", Score: 40},
		{ID: 3, Name: "c", Score: -2},
		{ID: 4, Name: "d", Score: 40},
	}
	svc := NewService(newSpy(seed))

	top, err := svc.GetTop(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].Score < top[i].Score {
			t.Fatalf("entries not in descending score order: %+v", top)
		}
	}
	if top[0].ID != 2 || top[1].ID != 4 || top[2].ID != 1 {
		t.Fatalf("unexpected order %+v", top)
	}

	all, _ := svc.GetTop(context.Background(), 100)
	if len(all) != 4 {
		t.Fatalf("expected every entry when amount exceeds count, got %d", len(all))
	}

	none, err := svc.GetTop(context.Background(), 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result for 0, got %v / %v", none, err)
	}
}
