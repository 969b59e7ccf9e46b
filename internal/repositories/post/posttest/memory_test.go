package posttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/repositories/post"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixture(id string, likes int) domain.Post {
	return domain.Post{
		ExternalID:   id,
		AuthorHandle: "macro_alpha",
		Content:      "post " + id,
		CreatedAt:    day.Add(time.Hour),
		Metrics:      domain.Metrics{Likes: likes},
	}
}

func TestInsertIfAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	first, err := repo.InsertIfAbsent(ctx, fixture("1", 10))
	if err != nil || first != post.Inserted {
		t.Fatalf("first insert = (%v, %v)", first, err)
	}

	second, err := repo.InsertIfAbsent(ctx, fixture("1", 999))
	if err != nil || second != post.Duplicate {
		t.Fatalf("second insert = (%v, %v)", second, err)
	}

	got, _ := repo.GetByExternalID(ctx, "1")
	if got.Metrics.Likes != 10 {
		t.Errorf("duplicate insert changed metrics to %d", got.Metrics.Likes)
	}
	if repo.Len() != 1 {
		t.Errorf("Len = %d, want 1", repo.Len())
	}
}

func TestMarkProcessedAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	_, _ = repo.InsertIfAbsent(ctx, fixture("1", 10))
	_, _ = repo.InsertIfAbsent(ctx, fixture("2", 10))

	err := repo.MarkProcessed(ctx, []string{"1", "missing"})
	if !errors.Is(err, post.ErrPartialMark) {
		t.Fatalf("err = %v, want ErrPartialMark", err)
	}
	if p, _ := repo.GetByExternalID(ctx, "1"); p.Processed {
		t.Error("post 1 must stay unprocessed after a failed mark")
	}

	if err := repo.MarkProcessed(ctx, []string{"1", "2", "1"}); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	left, _ := repo.ListUnprocessed(ctx, domain.Day(day, time.UTC))
	if len(left) != 0 {
		t.Errorf("unprocessed = %d, want 0", len(left))
	}

	n, _ := repo.ResetProcessed(ctx, day, day.AddDate(0, 0, 1))
	if n != 2 {
		t.Errorf("reset = %d, want 2", n)
	}
}
