// Package publisher turns raw model output into a Jekyll-style post and
// writes it to the posts directory.
//
// A post is named {YYYY-MM-DD}-{slug}.md and starts with a YAML front matter
// block holding the layout and the quoted title.
package publisher

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hoanghai1803/insightpost/internal/models"
	"gopkg.in/yaml.v3"
)

// Layout is the front matter layout every post uses.
const Layout = "post"

const dateLayout = "2006-01-02"

// Sentinel errors for the ways publishing can fail.
var (
	ErrMalformedInsight = errors.New("insight is not in title/blank line/body form")
	ErrEmptyTitle       = errors.New("insight title is empty")
	ErrFilesystem       = errors.New("writing post failed")
)

var (
	emphasisReplacer = strings.NewReplacer("**", "", "__", "")
	headingMarker    = regexp.MustCompile(`^#{1,6}\s+`)
)

// Options controls where and how posts are written.
type Options struct {
	// Dir is the posts directory. It is created when missing.
	Dir string

	// Unique appends -2, -3, ... to the slug instead of overwriting a post
	// with the same name.
	Unique bool

	// Now returns the publication time. Defaults to time.Now.
	Now func() time.Time
}

// Publisher writes insights as posts.
type Publisher struct {
	opts Options
}

// New creates a Publisher.
func New(opts Options) *Publisher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Publisher{opts: opts}
}

// ParseInsight splits raw model text on its first blank line. The first part
// becomes the title with markdown emphasis removed; the rest is the body.
func ParseInsight(raw string) (models.Insight, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	titleRaw, bodyRaw, found := strings.Cut(raw, "\n\n")
	if !found {
		return models.Insight{}, ErrMalformedInsight
	}

	title := cleanTitle(titleRaw)
	if title == "" {
		return models.Insight{}, ErrEmptyTitle
	}

	return models.Insight{
		Title: title,
		Body:  strings.TrimSpace(bodyRaw),
	}, nil
}

// cleanTitle strips emphasis markers, a Markdown heading marker, and
// surrounding whitespace. A "#" not followed by whitespace is title text.
func cleanTitle(s string) string {
	s = emphasisReplacer.Replace(s)
	s = strings.TrimSpace(s)
	s = headingMarker.ReplaceAllString(s, "")
	return unwrapEmphasis(s)
}

// unwrapEmphasis removes single * or _ markers that enclose the whole title.
func unwrapEmphasis(s string) string {
	for len(s) >= 2 && (s[0] == '*' || s[0] == '_') && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// Render builds the post for insight as it would be published on date,
// without touching the filesystem. Path is left empty.
func Render(insight models.Insight, date time.Time) (*models.PublishedDocument, error) {
	fm, err := frontMatter(insight.Title)
	if err != nil {
		return nil, err
	}

	return &models.PublishedDocument{
		FrontMatter: models.FrontMatter{Layout: Layout, Title: insight.Title},
		Body:        insight.Body,
		Filename:    Filename(date, insight.Title),
		Content:     "---\n" + fm + "---\n\n" + insight.Body,
	}, nil
}

// Filename returns the post filename for a title published on date.
func Filename(date time.Time, title string) string {
	return fmt.Sprintf("%s-%s.md", date.Format(dateLayout), Slugify(title))
}

// frontMatter encodes the layout and title as YAML. The title is always
// double-quoted so colons, quotes and leading symbols survive.
func frontMatter(title string) (string, error) {
	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "layout"},
			{Kind: yaml.ScalarNode, Value: Layout},
			{Kind: yaml.ScalarNode, Value: "title"},
			{Kind: yaml.ScalarNode, Value: title, Style: yaml.DoubleQuotedStyle},
		},
	}

	out, err := yaml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}
	return string(out), nil
}

// Publish parses raw, renders it for today, and writes it to the posts
// directory. Format problems return ErrMalformedInsight or ErrEmptyTitle;
// filesystem problems wrap ErrFilesystem.
func (p *Publisher) Publish(raw string) (*models.PublishedDocument, error) {
	slog.Info("publishing insight", "dir", p.opts.Dir)

	insight, err := ParseInsight(raw)
	if err != nil {
		slog.Error("failed to parse insight", "error", err)
		return nil, err
	}

	doc, err := Render(insight, p.opts.Now())
	if err != nil {
		slog.Error("failed to render post", "error", err)
		return nil, err
	}

	if err := p.write(doc); err != nil {
		slog.Error("failed to write post", "dir", p.opts.Dir, "file", doc.Filename, "error", err)
		return nil, err
	}

	slog.Info("post saved", "path", doc.Path)
	return doc, nil
}

// write creates the posts directory and stores doc in it, filling in
// doc.Path (and doc.Filename when a suffix was needed).
func (p *Publisher) write(doc *models.PublishedDocument) error {
	if err := os.MkdirAll(p.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating posts directory %q: %v", ErrFilesystem, p.opts.Dir, err)
	}

	if p.opts.Unique {
		name, err := p.freeName(doc.Filename)
		if err != nil {
			return err
		}
		doc.Filename = name
	}

	path := filepath.Join(p.opts.Dir, doc.Filename)
	if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
		return fmt.Errorf("%w: writing %q: %v", ErrFilesystem, path, err)
	}

	doc.Path = path
	return nil
}

// freeName returns filename, or filename with the first free numeric suffix
// if a post of that name already exists.
func (p *Publisher) freeName(filename string) (string, error) {
	stem := strings.TrimSuffix(filename, ".md")
	name := filename
	for n := 2; ; n++ {
		_, err := os.Stat(filepath.Join(p.opts.Dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: checking %q: %v", ErrFilesystem, name, err)
		}
		name = fmt.Sprintf("%s-%d.md", stem, n)
	}
}
