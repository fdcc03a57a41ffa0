package tracker_test

import (
	"context"
	"testing"

	"slate/internal/tracker"
)

type recordingService struct {
	filters []tracker.Filter
}

func (s *recordingService) FindOne(_ context.Context, _ string, filters []tracker.Filter, _ []string) (map[string]any, error) {
	s.filters = filters
	return nil, nil
}

// ByID returns a ready-to-use filter list, so callers pass it to FindOne
// without wrapping it in another slice.
func TestByIDFiltersFindOne(t *testing.T) {
	svc := &recordingService{}
	if _, err := svc.FindOne(context.Background(), "Shot", tracker.ByID(7), []string{"code"}); err != nil {
		t.Fatalf("FindOne returned error: %v", err)
	}

	if len(svc.filters) != 1 {
		t.Fatalf("expected one filter, got %v", svc.filters)
	}
	f := svc.filters[0]
	if f.Field != "id" || f.Operator != "is" || f.Value != 7 {
		t.Errorf("unexpected filter: %+v", f)
	}
}

func TestDescribeFilters(t *testing.T) {
	got := tracker.DescribeFilters(tracker.ByID(42))
	if got != "[id is 42]" {
		t.Errorf("DescribeFilters = %q", got)
	}
}
