package repository

import "testing"

func TestListParamsNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         ListParams
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{name: "zero values", in: ListParams{}, wantPage: 1, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "third page", in: ListParams{Page: 3, Limit: 20}, wantPage: 3, wantLimit: 20, wantOffset: 40},
		{name: "limit clamped", in: ListParams{Page: 1, Limit: 5000}, wantPage: 1, wantLimit: MaxLimit, wantOffset: 0},
		{name: "negative page", in: ListParams{Page: -2, Limit: 10}, wantPage: 1, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit || got.Offset() != tt.wantOffset {
				t.Fatalf("got page=%d limit=%d offset=%d", got.Page, got.Limit, got.Offset())
			}
		})
	}
}

func TestNonNil(t *testing.T) {
	var tags []string
	if got := nonNil(tags); got == nil || len(got) != 0 {
		t.Fatalf("nonNil(nil) = %#v", got)
	}
	if got := nonNil([]string{"a"}); len(got) != 1 {
		t.Fatalf("nonNil kept %d items", len(got))
	}
}
