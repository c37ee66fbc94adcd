package pdf

import "fmt"

// Resolve turns a 1-based inclusive page range into the list of target
// page numbers. end=0 means the last page. Out-of-bounds endpoints are
// clamped; an empty range after clamping is an error.
func Resolve(start, end, total int) ([]int, error) {
	first := start
	if first < 1 {
		first = 1
	}
	last := total
	if end > 0 && end < total {
		last = end
	}
	if first > last {
		return nil, fmt.Errorf("invalid page range: %d to %d (total pages: %d)", start, end, total)
	}

	pages := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pages = append(pages, p)
	}
	return pages, nil
}

// Chunk splits an ordered page list into consecutive groups of at most
// batchSize pages. The last group may be smaller.
func Chunk(pages []int, batchSize int) [][]int {
	if batchSize < 1 {
		batchSize = 1
	}
	var chunks [][]int
	for i := 0; i < len(pages); i += batchSize {
		end := i + batchSize
		if end > len(pages) {
			end = len(pages)
		}
		chunk := make([]int, end-i)
		copy(chunk, pages[i:end])
		chunks = append(chunks, chunk)
	}
	return chunks
}
