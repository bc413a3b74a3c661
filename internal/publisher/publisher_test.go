package publisher

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/hoanghai1803/insightpost/internal/models"
	"gopkg.in/yaml.v3"
)

var fixedNow = func() time.Time {
	return time.Date(2025, time.November, 3, 8, 0, 0, 0, time.Local)
}

func newTestPublisher(t *testing.T, unique bool) (*Publisher, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "_posts")
	return New(Options{Dir: dir, Unique: unique, Now: fixedNow}), dir
}

func TestParseInsight(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantErr   error
		wantTitle string
		wantBody  string
	}{
		{
			name:      "bold title",
			raw:       "**Boost Sales Fast**\n\nOffer a limited-time discount to new subscribers to drive urgency.",
			wantTitle: "Boost Sales Fast",
			wantBody:  "Offer a limited-time discount to new subscribers to drive urgency.",
		},
		{
			name:      "plain title",
			raw:       "Boost Sales Fast\n\nBody.",
			wantTitle: "Boost Sales Fast",
			wantBody:  "Body.",
		},
		{
			name:      "heading marker and underscores",
			raw:       "## __Ship Faster__\n\nBody.",
			wantTitle: "Ship Faster",
			wantBody:  "Body.",
		},
		{
			name:      "number sign is kept",
			raw:       "**#1 Way to Boost Sales**\n\nDo it.",
			wantTitle: "#1 Way to Boost Sales",
			wantBody:  "Do it.",
		},
		{
			name:      "hashtag title",
			raw:       "#BlackFriday prep starts now\n\nBody.",
			wantTitle: "#BlackFriday prep starts now",
			wantBody:  "Body.",
		},
		{
			name:      "single emphasis wrapping title",
			raw:       "*Ship Faster*\n\nBody.",
			wantTitle: "Ship Faster",
			wantBody:  "Body.",
		},
		{
			name:      "trailing underscore is kept",
			raw:       "Rename your sku_\n\nBody.",
			wantTitle: "Rename your sku_",
			wantBody:  "Body.",
		},
		{
			name:      "inner asterisk is kept",
			raw:       "5* reviews sell\n\nBody.",
			wantTitle: "5* reviews sell",
			wantBody:  "Body.",
		},
		{
			name:      "splits on first blank line only",
			raw:       "Title\n\nFirst paragraph.\n\nSecond paragraph.",
			wantTitle: "Title",
			wantBody:  "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:      "body is trimmed",
			raw:       "Title\n\n\n   Body with padding.   \n",
			wantTitle: "Title",
			wantBody:  "Body with padding.",
		},
		{
			name:      "windows line endings",
			raw:       "**Title**\r\n\r\nBody.",
			wantTitle: "Title",
			wantBody:  "Body.",
		},
		{
			name:      "empty body is allowed",
			raw:       "Title\n\n",
			wantTitle: "Title",
			wantBody:  "",
		},
		{
			name:    "no blank line",
			raw:     "Boost Sales Fast\nOffer a discount.",
			wantErr: ErrMalformedInsight,
		},
		{
			name:    "single line",
			raw:     "Just one line",
			wantErr: ErrMalformedInsight,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: ErrMalformedInsight,
		},
		{
			name:    "title is only markers",
			raw:     "****\n\nBody.",
			wantErr: ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInsight(tt.raw)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseInsight() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInsight() unexpected error: %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", got.Body, tt.wantBody)
			}
		})
	}
}

func TestRender(t *testing.T) {
	insight := models.Insight{
		Title: "Boost Sales Fast",
		Body:  "Offer a limited-time discount to new subscribers to drive urgency.",
	}

	doc, err := Render(insight, fixedNow())
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	want := "---\nlayout: post\ntitle: \"Boost Sales Fast\"\n---\n\nOffer a limited-time discount to new subscribers to drive urgency."
	if doc.Content != want {
		t.Errorf("Content =\n%q\nwant\n%q", doc.Content, want)
	}
	if doc.Filename != "2025-11-03-boost-sales-fast.md" {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if doc.FrontMatter.Layout != "post" || doc.FrontMatter.Title != "Boost Sales Fast" {
		t.Errorf("FrontMatter = %+v", doc.FrontMatter)
	}
	if doc.Path != "" {
		t.Errorf("Path = %q, want empty for an unwritten document", doc.Path)
	}
}

func TestRender_QuotesAreEscaped(t *testing.T) {
	doc, err := Render(models.Insight{Title: `Say "Free": It Works`, Body: "b"}, fixedNow())
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if !strings.Contains(doc.Content, `title: "Say \"Free\": It Works"`) {
		t.Errorf("front matter did not escape the title:\n%s", doc.Content)
	}
}

func TestRender_FrontMatterRoundTrips(t *testing.T) {
	titles := []string{
		"Sale 🚀 now",
		"Promoção relâmpago: frete grátis",
		`Back\slash and "quotes"`,
		"#1 Way to Boost Sales",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			doc, err := Render(models.Insight{Title: title, Body: "b"}, fixedNow())
			if err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}

			block, _, found := strings.Cut(strings.TrimPrefix(doc.Content, "---\n"), "---\n\n")
			if !found {
				t.Fatalf("no front matter block in:\n%s", doc.Content)
			}
			var fm struct {
				Layout string `yaml:"layout"`
				Title  string `yaml:"title"`
			}
			if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
				t.Fatalf("front matter is not valid YAML: %v\n%s", err, block)
			}
			if fm.Title != title || fm.Layout != Layout {
				t.Errorf("front matter decoded to %+v, want title %q", fm, title)
			}
		})
	}
}

func TestPublish_WritesPost(t *testing.T) {
	p, dir := newTestPublisher(t, false)

	doc, err := p.Publish("**Boost Sales Fast**\n\nOffer a limited-time discount to new subscribers to drive urgency.")
	if err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}

	wantPath := filepath.Join(dir, "2025-11-03-boost-sales-fast.md")
	if doc.Path != wantPath {
		t.Errorf("Path = %q, want %q", doc.Path, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("reading post: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "---\nlayout: post\ntitle: \"Boost Sales Fast\"\n---\n\n") {
		t.Errorf("post does not start with front matter:\n%s", content)
	}
	if !strings.HasSuffix(content, "Offer a limited-time discount to new subscribers to drive urgency.") {
		t.Errorf("post does not end with body:\n%s", content)
	}
}

func TestPublish_MalformedWritesNothing(t *testing.T) {
	p, dir := newTestPublisher(t, false)

	doc, err := p.Publish("Boost Sales Fast\nOffer a discount.")
	if !errors.Is(err, ErrMalformedInsight) {
		t.Fatalf("Publish() error = %v, want ErrMalformedInsight", err)
	}
	if doc != nil {
		t.Errorf("Publish() returned %+v alongside error", doc)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("posts directory should not be created for a malformed insight (stat err = %v)", err)
	}
}

func TestPublish_OverwritesByDefault(t *testing.T) {
	p, dir := newTestPublisher(t, false)

	if _, err := p.Publish("Same Title\n\nfirst"); err != nil {
		t.Fatalf("first Publish() error: %v", err)
	}
	doc, err := p.Publish("Same Title\n\nsecond")
	if err != nil {
		t.Fatalf("second Publish() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading posts dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files, want 1", len(entries))
	}

	data, _ := os.ReadFile(doc.Path)
	if !strings.HasSuffix(string(data), "second") {
		t.Errorf("post was not overwritten:\n%s", data)
	}
}

func TestPublish_UniqueFilenames(t *testing.T) {
	p, dir := newTestPublisher(t, true)

	var names []string
	for _, body := range []string{"one", "two", "three"} {
		doc, err := p.Publish("Same Title\n\n" + body)
		if err != nil {
			t.Fatalf("Publish() error: %v", err)
		}
		names = append(names, doc.Filename)
	}

	want := []string{
		"2025-11-03-same-title.md",
		"2025-11-03-same-title-2.md",
		"2025-11-03-same-title-3.md",
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
		if _, err := os.Stat(filepath.Join(dir, want[i])); err != nil {
			t.Errorf("missing %s: %v", want[i], err)
		}
	}
}

func TestPublish_FilesystemError(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("creating blocker file: %v", err)
	}

	p := New(Options{Dir: filepath.Join(blocker, "_posts"), Now: fixedNow})

	doc, err := p.Publish("Title\n\nBody.")
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("Publish() error = %v, want ErrFilesystem", err)
	}
	if doc != nil {
		t.Errorf("Publish() returned %+v alongside error", doc)
	}
}

func TestPublish_ReadOnlyDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	p := New(Options{Dir: dir, Now: fixedNow})
	if _, err := p.Publish("Title\n\nBody."); !errors.Is(err, ErrFilesystem) {
		t.Fatalf("Publish() error = %v, want ErrFilesystem", err)
	}
}
