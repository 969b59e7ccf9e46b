// Package digest renders a summary into the HTML and plain-text email bodies.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/summarizer"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/fx"
)

var sourceLine = regexp.MustCompile(`^\s*[-*]?\s*(Sources?:\s*@\w+)\s*[-–]\s*(https?://\S+)\s*$`)

const page = `<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; font-size: 14px; color: #333; line-height: 1.6;">
    <div style="max-width: 640px; margin: 0 auto; padding: 24px;">
      <h1 style="font-size: 20px; margin: 0 0 4px;">{{.Title}}</h1>
      <p style="color: #888; margin: 0 0 24px;">{{.Date}} · {{.Count}} posts · generated {{.GeneratedAt}}</p>
      {{.Body}}
    </div>
  </body>
</html>
`

type Opts struct {
	fx.In

	Config *config.Config
}

type Renderer struct {
	md         goldmark.Markdown
	policy     *bluemonday.Policy
	tmpl       *template.Template
	title      string
	subject    string
	recipients []string
	now        func() time.Time
}

func New(opts Opts) *Renderer {
	return NewRenderer(opts.Config.Digest.Title, opts.Config.Email.Subject, opts.Config.Recipients())
}

func NewRenderer(title, subject string, recipients []string) *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy:     policy,
		tmpl:       template.Must(template.New("digest").Parse(page)),
		title:      title,
		subject:    subject,
		recipients: recipients,
		now:        time.Now,
	}
}

// Render builds the email for one day's digest.
func (r *Renderer) Render(date, summary string, postCount int) (domain.Email, error) {
	var md bytes.Buffer
	if err := r.md.Convert([]byte(Markdown(summary)), &md); err != nil {
		return domain.Email{}, fmt.Errorf("render markdown: %w", err)
	}

	generatedAt := r.now().UTC().Format("2006-01-02 15:04 MST")

	var out bytes.Buffer
	err := r.tmpl.Execute(&out, map[string]any{
		"Title":       r.title,
		"Date":        date,
		"Count":       postCount,
		"GeneratedAt": generatedAt,
		"Body":        template.HTML(r.policy.SanitizeBytes(md.Bytes())),
	})
	if err != nil {
		return domain.Email{}, fmt.Errorf("render template: %w", err)
	}

	text := fmt.Sprintf("%s\n%s\nGenerated: %s\n\n%s\n", r.title, date, generatedAt, strings.TrimSpace(summary))

	return domain.Email{
		To:      r.recipients,
		Subject: fmt.Sprintf("%s - %s", r.subject, date),
		HTML:    out.String(),
		Text:    text,
	}, nil
}

// Markdown rewrites the model's loose output into markdown: known section lines
// become headings and attribution lines become links.
func Markdown(summary string) string {
	lines := strings.Split(strings.ReplaceAll(summary, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines)+8)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if h, ok := sectionHeader(trimmed); ok {
			out = append(out, "", "## "+h, "")
			continue
		}
		if m := sourceLine.FindStringSubmatch(line); m != nil {
			out = append(out, "", fmt.Sprintf("*%s* – [View Tweet](%s)", m[1], m[2]), "")
			continue
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func sectionHeader(line string) (string, bool) {
	clean := strings.TrimSpace(strings.Trim(line, "#*: "))
	for _, s := range summarizer.Sections {
		if clean == s {
			return s, true
		}
	}
	return "", false
}
