package pdf

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		end     int
		total   int
		want    []int
		wantErr bool
	}{
		{name: "full range", start: 1, end: 0, total: 3, want: []int{1, 2, 3}},
		{name: "sub range", start: 2, end: 4, total: 10, want: []int{2, 3, 4}},
		{name: "end clamped to total", start: 8, end: 99, total: 10, want: []int{8, 9, 10}},
		{name: "start clamped to one", start: 0, end: 2, total: 10, want: []int{1, 2}},
		{name: "single page", start: 5, end: 5, total: 10, want: []int{5}},
		{name: "start past end", start: 7, end: 3, total: 10, wantErr: true},
		{name: "start past total", start: 11, end: 0, total: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.start, tt.end, tt.total)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	pages := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := Chunk(pages, 4)
	want := [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestChunkNonConsecutivePages(t *testing.T) {
	// Gaps from already-extracted pages still chunk in order.
	pages := []int{3, 7, 8, 12, 13}
	got := Chunk(pages, 2)
	want := [][]int{{3, 7}, {8, 12}, {13}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestChunkCoversAllPages(t *testing.T) {
	pages := make([]int, 23)
	for i := range pages {
		pages[i] = i + 1
	}

	for batchSize := 1; batchSize <= 25; batchSize++ {
		seen := map[int]bool{}
		for _, chunk := range Chunk(pages, batchSize) {
			if len(chunk) > batchSize {
				t.Errorf("batchSize %d: chunk %v exceeds size", batchSize, chunk)
			}
			for _, p := range chunk {
				if seen[p] {
					t.Errorf("batchSize %d: page %d appears twice", batchSize, p)
				}
				seen[p] = true
			}
		}
		if len(seen) != len(pages) {
			t.Errorf("batchSize %d: covered %d of %d pages", batchSize, len(seen), len(pages))
		}
	}
}

func TestChunkEmptyInput(t *testing.T) {
	if got := Chunk(nil, 4); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
