package selector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/repositories/post/posttest"
	mock_post "github.com/w3wave/social-digest/internal/repositories/post/mocks"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/mock/gomock"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *posttest.Memory, posts ...domain.Post) {
	t.Helper()
	for _, p := range posts {
		if _, err := repo.InsertIfAbsent(context.Background(), p); err != nil {
			t.Fatalf("seed %s: %v", p.ExternalID, err)
		}
	}
}

func withLikes(id string, likes int, at time.Time) domain.Post {
	return domain.Post{ExternalID: id, AuthorHandle: "macro_alpha", Content: id, CreatedAt: at, Metrics: domain.Metrics{Likes: likes}}
}

func ids(posts []domain.Post) []string {
	return domain.ExternalIDs(posts)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelectOrdersByScore(t *testing.T) {
	repo := posttest.NewMemory()
	seed(t, repo,
		withLikes("low", 10, day.Add(1*time.Hour)),
		withLikes("mid", 60, day.Add(2*time.Hour)),
		withLikes("top", 80, day.Add(3*time.Hour)),
	)

	s := NewWithLocation(repo, logger.Nop(), time.UTC)
	got, err := s.Select(context.Background(), day, 50)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !equal(ids(got), []string{"top", "mid"}) {
		t.Errorf("selected = %v, want [top mid]", ids(got))
	}
	for _, p := range got {
		if p.Processed {
			t.Errorf("%s selected as processed", p.ExternalID)
		}
	}
}

func TestSelectFiltersDateAndProcessed(t *testing.T) {
	repo := posttest.NewMemory()
	seed(t, repo,
		withLikes("yesterday", 500, day.Add(-time.Second)),
		withLikes("midnight", 500, day),
		withLikes("last-second", 500, day.Add(24*time.Hour-time.Second)),
		withLikes("tomorrow", 500, day.Add(24*time.Hour)),
		withLikes("done", 500, day.Add(time.Hour)),
	)
	if err := repo.MarkProcessed(context.Background(), []string{"done"}); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	got, err := NewWithLocation(repo, logger.Nop(), time.UTC).Select(context.Background(), day, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !equal(ids(got), []string{"midnight", "last-second"}) {
		t.Errorf("selected = %v", ids(got))
	}
}

func TestSelectUsesConfiguredTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	repo := posttest.NewMemory()
	// 03:00 UTC on Jan 2 is 22:00 on Jan 1 in New York.
	seed(t, repo, withLikes("late", 100, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)))

	s := NewWithLocation(repo, logger.Nop(), ny)
	got, _ := s.Select(context.Background(), time.Date(2024, 1, 1, 12, 0, 0, 0, ny), 50)
	if len(got) != 1 {
		t.Errorf("selected = %v, want the late post on the New York calendar day", ids(got))
	}
}

func TestSelectThresholdMonotonic(t *testing.T) {
	repo := posttest.NewMemory()
	for i, likes := range []int{0, 5, 49, 50, 51, 100, 300} {
		seed(t, repo, withLikes(string(rune('a'+i)), likes, day.Add(time.Duration(i)*time.Minute)))
	}
	s := NewWithLocation(repo, logger.Nop(), time.UTC)

	prev := map[string]bool{}
	first := true
	for _, threshold := range []int{300, 100, 51, 50, 10, 0} {
		got, err := s.Select(context.Background(), day, threshold)
		if err != nil {
			t.Fatalf("Select(%d): %v", threshold, err)
		}
		cur := map[string]bool{}
		for _, p := range got {
			cur[p.ExternalID] = true
		}
		if !first {
			for id := range prev {
				if !cur[id] {
					t.Errorf("lowering threshold to %d dropped %s", threshold, id)
				}
			}
		}
		prev, first = cur, false
	}
}

func TestSelectNegativeThresholdClampsToZero(t *testing.T) {
	repo := posttest.NewMemory()
	seed(t, repo, withLikes("zero", 0, day.Add(time.Hour)))
	got, _ := NewWithLocation(repo, logger.Nop(), time.UTC).Select(context.Background(), day, -10)
	if len(got) != 1 {
		t.Errorf("selected = %v", ids(got))
	}
}

func TestSelectEmptyIsNotAnError(t *testing.T) {
	repo := posttest.NewMemory()
	seed(t, repo, withLikes("quiet", 3, day.Add(time.Hour)))
	got, err := NewWithLocation(repo, logger.Nop(), time.UTC).Select(context.Background(), day, 50)
	if err != nil || len(got) != 0 {
		t.Errorf("Select = (%v, %v), want empty and nil", ids(got), err)
	}
}

func TestSortIsTotalAndDeterministic(t *testing.T) {
	at := day.Add(time.Hour)
	posts := []domain.Post{
		withLikes("c", 60, at),
		withLikes("b", 60, at),
		withLikes("a", 60, at.Add(time.Minute)),
		withLikes("z", 90, at.Add(time.Hour)),
	}
	want := []string{"z", "b", "c", "a"}

	for i := 0; i < 5; i++ {
		shuffled := append([]domain.Post(nil), posts...)
		shuffled[0], shuffled[len(shuffled)-1-i%len(shuffled)] = shuffled[len(shuffled)-1-i%len(shuffled)], shuffled[0]
		Sort(shuffled)
		if !equal(ids(shuffled), want) {
			t.Errorf("round %d: order = %v, want %v", i, ids(shuffled), want)
		}
	}
}

func TestSelectPropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	repo.EXPECT().ListUnprocessed(gomock.Any(), domain.Day(day, time.UTC)).Return(nil, errors.New("connection refused"))

	if _, err := NewWithLocation(repo, logger.Nop(), time.UTC).Select(context.Background(), day, 50); err == nil {
		t.Error("expected store error")
	}
}
