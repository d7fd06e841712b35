package tools

import (
	"reflect"
	"testing"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       string
		wantNumber int
		wantPages  int
		wantOffset int
	}{
		{"missing page", 40, "", 1, 3, 0},
		{"not a number", 40, "abc", 1, 3, 0},
		{"second page", 40, "2", 2, 3, 15},
		{"past the end", 40, "9", 3, 3, 30},
		{"zero", 40, "0", 1, 3, 0},
		{"negative", 40, "-4", 1, 3, 0},
		{"no items", 0, "5", 1, 1, 0},
		{"exact multiple", 30, "2", 2, 2, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, 15, tt.page)
			if p.Number != tt.wantNumber || p.TotalPages != tt.wantPages || p.Offset != tt.wantOffset {
				t.Errorf("Paginate(%d, 15, %q) = %+v", tt.total, tt.page, p)
			}
		})
	}
}

func TestMakePaginationRange(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		current   int
		want      []int
		wantFirst bool
		wantLast  bool
	}{
		{"start", 20, 1, []int{1, 2, 3, 4, 5, 6}, false, true},
		{"middle", 20, 10, []int{8, 9, 10, 11, 12, 13}, true, true},
		{"near end", 20, 18, []int{15, 16, 17, 18, 19, 20}, true, false},
		{"end", 20, 20, []int{15, 16, 17, 18, 19, 20}, true, false},
		{"fewer pages than window", 3, 2, []int{1, 2, 3}, false, false},
		{"single page", 1, 1, []int{1}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MakePaginationRange(tt.total, 6, tt.current)
			if !reflect.DeepEqual(r.Pagination, tt.want) {
				t.Errorf("pages = %v, want %v", r.Pagination, tt.want)
			}
			if r.FirstPageOutOfRange != tt.wantFirst || r.LastPageOutOfRange != tt.wantLast {
				t.Errorf("first/last out of range = %v/%v, want %v/%v",
					r.FirstPageOutOfRange, r.LastPageOutOfRange, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestMakePaginationRangeWidth(t *testing.T) {
	for _, qty := range []int{2, 4, 6, 10} {
		for total := 1; total <= 30; total++ {
			for current := 1; current <= total; current++ {
				r := MakePaginationRange(total, qty, current)

				want := qty
				if total < want {
					want = total
				}
				if len(r.Pagination) != want {
					t.Fatalf("qty=%d total=%d current=%d: len = %d, want %d (%v)",
						qty, total, current, len(r.Pagination), want, r.Pagination)
				}

				found := false
				for _, p := range r.Pagination {
					found = found || p == current
				}
				if !found {
					t.Fatalf("qty=%d total=%d current=%d: %v misses current page", qty, total, current, r.Pagination)
				}
			}
		}
	}
}

func TestComputeWindow(t *testing.T) {
	p, r := ComputeWindow(100, 15, 6, "99")
	if p.Number != 7 || p.TotalPages != 7 {
		t.Fatalf("page = %+v", p)
	}
	if !reflect.DeepEqual(r.Pagination, []int{2, 3, 4, 5, 6, 7}) || r.CurrentPage != 7 {
		t.Errorf("range = %+v", r)
	}
}
