package models

// FeedEntry is the single syndication entry picked for a run.
type FeedEntry struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link,omitempty"`
}

// Insight is the model-generated title and actionable body derived from a
// feed entry.
type Insight struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// FrontMatter is the metadata block the static-site generator reads from the
// top of every post.
type FrontMatter struct {
	Layout string `json:"layout"`
	Title  string `json:"title"`
}

// PublishedDocument is a rendered post and where it was (or would be) written.
type PublishedDocument struct {
	FrontMatter FrontMatter `json:"front_matter"`
	Body        string      `json:"body"`
	Filename    string      `json:"filename"`
	Path        string      `json:"path,omitempty"`
	Content     string      `json:"-"`
}
