package params

import (
	"net/url"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{"defaults", "", 15, 1, 0},
		{"explicit", "limit=10&page=3", 10, 3, 20},
		{"limit capped", "limit=100", 30, 1, 0},
		{"zero limit falls back", "limit=0", 15, 1, 0},
		{"negative page ignored", "page=-2", 15, 1, 0},
		{"garbage ignored", "limit=abc&page=xyz", 15, 1, 0},
		{"whitespace trimmed", "limit=%2020%20&page=2", 20, 2, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			p := ParsePagination(q)
			if p.Limit != tt.wantLimit || p.Page != tt.wantPage || p.Offset != tt.wantOffset {
				t.Errorf("got limit=%d page=%d offset=%d, want limit=%d page=%d offset=%d",
					p.Limit, p.Page, p.Offset, tt.wantLimit, tt.wantPage, tt.wantOffset)
			}
		})
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2, Offset: 10}
	p.ComputeMeta(35)

	if p.Total != 35 {
		t.Errorf("Total = %d, want 35", p.Total)
	}
	if p.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", p.TotalPages)
	}
	if !p.HasNext {
		t.Error("HasNext = false, want true")
	}
	if !p.HasPrev {
		t.Error("HasPrev = false, want true")
	}

	last := Pagination{Limit: 10, Page: 4}
	last.ComputeMeta(35)
	if last.HasNext {
		t.Error("HasNext on last page = true, want false")
	}
}
