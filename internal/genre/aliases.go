package genre

// aliases maps common spellings onto the closed set.
//
//nolint:gochecknoglobals // Static lookup table for genre normalization
var aliases = map[string]string{
	"sci-fi":          SciFi,
	"scifi":           SciFi,
	"sf":              SciFi,
	"science-fiction": SciFi,
	"biopic":          Biography,
	"bio":             Biography,
	"animated":        Animation,
	"anime":           Animation,
	"cartoon":         Animation,
	"comedies":        Comedy,
	"romantic":        Romance,
	"romance-drama":   Romance,
	"suspense":        Thriller,
	"thrillers":       Thriller,
	"historical":      History,
	"sports":          Sport,
	"musicals":        Musical,
	"westerns":        Western,
	"kids":            Family,
	"children":        Family,
	"scary":           Horror,
}

// bySlug resolves slugs of labels and aliases to labels.
//
//nolint:gochecknoglobals // Built once from labels and aliases
var bySlug = func() map[string]string {
	m := make(map[string]string, len(labels)+len(aliases))
	for slug, label := range aliases {
		m[slug] = label
	}
	for _, label := range labels {
		m[Slugify(label)] = label
	}
	return m
}()
