package store

import (
	"cmp"
	"slices"
)

// GenreCount is the number of movies of one genre.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// YearBucket holds the movies released in one year, in set order.
type YearBucket struct {
	Year   int       `json:"year"`
	Movies RecordSet `json:"movies"`
}

// Count is the number of movies in the bucket.
func (b YearBucket) Count() int {
	return len(b.Movies)
}

// Index is the aggregate view of an active record set. It is rebuilt
// wholesale whenever the active set changes and must not be modified.
type Index struct {
	Genres []GenreCount `json:"genres"`
	Years  []YearBucket `json:"years"`
	Total  int          `json:"total"`
}

// Clone returns a copy that shares no slices with idx.
func (idx Index) Clone() Index {
	out := Index{Genres: slices.Clone(idx.Genres), Total: idx.Total}
	if idx.Years != nil {
		out.Years = make([]YearBucket, len(idx.Years))
		for i, b := range idx.Years {
			out.Years[i] = YearBucket{Year: b.Year, Movies: slices.Clone(b.Movies)}
		}
	}
	return out
}

// BuildIndex computes both aggregates for set.
func BuildIndex(set RecordSet) Index {
	return Index{
		Genres: AggregateByGenre(set),
		Years:  AggregateByYear(set),
		Total:  len(set),
	}
}

// GenreCount returns the count for genre, zero when absent.
func (idx Index) GenreCount(genre string) int {
	for _, gc := range idx.Genres {
		if gc.Genre == genre {
			return gc.Count
		}
	}
	return 0
}

// AggregateByGenre counts movies per genre. The result is ordered by
// descending count; equal counts keep the order in which the genre was first
// seen in set. Treemap rectangle order depends on this.
func AggregateByGenre(set RecordSet) []GenreCount {
	counts := make([]GenreCount, 0)
	pos := make(map[string]int)
	for _, m := range set {
		i, ok := pos[m.Genre]
		if !ok {
			i = len(counts)
			pos[m.Genre] = i
			counts = append(counts, GenreCount{Genre: m.Genre})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b GenreCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return counts
}

// AggregateByYear groups movies by release year, years ascending. Movies in
// a bucket keep their set order.
func AggregateByYear(set RecordSet) []YearBucket {
	pos := make(map[int]int)
	buckets := make([]YearBucket, 0)
	for _, m := range set {
		i, ok := pos[m.Year]
		if !ok {
			i = len(buckets)
			pos[m.Year] = i
			buckets = append(buckets, YearBucket{Year: m.Year})
		}
		buckets[i].Movies = append(buckets[i].Movies, m)
	}

	slices.SortFunc(buckets, func(a, b YearBucket) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return buckets
}
