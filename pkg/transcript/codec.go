// Package transcript converts conversations to and from the flat Markdown
// transcript format:
//
//	### You (14:03:22)
//
//	How do I reverse a list?
//
//	### Assistant (14:03:25)
//
//	Use slices.Reverse.
//
// Decoding never fails. Unrecognized input simply yields fewer turns.
package transcript

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/papercomputeco/notechat/pkg/llm"
)

const (
	timeLayout     = "15:04:05"
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// Codec encodes and decodes transcripts for one label set.
type Codec struct {
	labels Labels
	dated  bool
	loc    *time.Location

	header *regexp.Regexp
	roles  map[string]llm.Role
}

// Option configures a Codec.
type Option func(*Codec)

// WithLabels sets the speaker labels written by Encode.
func WithLabels(l Labels) Option {
	return func(c *Codec) {
		c.labels = l
	}
}

// WithLanguage selects the label set registered for lang. Unknown
// languages leave the labels unchanged.
func WithLanguage(lang string) Option {
	return func(c *Codec) {
		if l, err := LabelsFor(lang); err == nil {
			c.labels = l
		}
	}
}

// WithDatedHeaders writes "YYYY-MM-DD HH:MM:SS" in headers instead of the
// time of day alone. Decode accepts both forms regardless.
func WithDatedHeaders(dated bool) Option {
	return func(c *Codec) {
		c.dated = dated
	}
}

// WithLocation sets the zone timestamps are written and read in.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Codec) {
		c.loc = loc
	}
}

// NewCodec creates a Codec. Without options it writes English labels and
// time-of-day headers.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		labels: English,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Headers written under any known label set are readable, so switching
	// language does not orphan older transcripts.
	c.roles = map[string]llm.Role{}
	sets := []Labels{c.labels}
	for _, lang := range Languages() {
		sets = append(sets, languages[lang])
	}
	for _, set := range sets {
		for _, role := range []llm.Role{llm.RoleUser, llm.RoleAssistant, llm.RoleSystem} {
			if label := set.Speaker(role); label != "" {
				if _, ok := c.roles[label]; !ok {
					c.roles[label] = role
				}
			}
		}
	}

	alternatives := make([]string, 0, len(c.roles))
	for label := range c.roles {
		alternatives = append(alternatives, regexp.QuoteMeta(label))
	}
	// Longest first so that no label shadows another it prefixes.
	slices.SortFunc(alternatives, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	c.header = regexp.MustCompile(
		`^###\s*(` + strings.Join(alternatives, "|") + `)\s*\(` +
			`(?:(\d{4}-\d{2}-\d{2})\s+)?(\d{1,2}:\d{2}:\d{2})\)`,
	)
	return c
}

// Labels returns the codec's label set.
func (c *Codec) Labels() Labels {
	return c.labels
}

// Encode serializes turns. Every turn becomes a header line, a blank line,
// its text and a trailing blank line. Text lines that would read as a
// header get a leading backslash, which Markdown renders away and Decode
// strips.
func (c *Codec) Encode(turns []llm.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		layout := timeLayout
		if c.dated {
			layout = dateTimeLayout
		}

		fmt.Fprintf(&b, "### %s (%s)\n\n", c.labels.Speaker(t.Role), t.Timestamp.In(c.loc).Format(layout))
		b.WriteString(c.escape(t.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// Decode parses content. Time-only headers are anchored to the zero date.
func (c *Codec) Decode(content string) []llm.Turn {
	return c.DecodeOn(content, time.Time{})
}

// DecodeOn parses content, anchoring time-only headers to the calendar
// day of day. Headers carrying a date keep their own.
func (c *Codec) DecodeOn(content string, day time.Time) []llm.Turn {
	var (
		turns   []llm.Turn
		current *llm.Turn
		lines   []string
	)

	flush := func() {
		if current == nil {
			return
		}
		text := strings.TrimSpace(strings.Join(lines, "\n"))
		if text != "" {
			current.Text = text
			turns = append(turns, *current)
		}
		current = nil
		lines = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")

		m := c.header.FindStringSubmatch(line)
		if m == nil {
			if current != nil {
				lines = append(lines, c.unescape(line))
			}
			continue
		}

		flush()
		current = &llm.Turn{
			Role:      c.roles[m[1]],
			Timestamp: c.parseTimestamp(m[2], m[3], day),
		}
	}
	flush()

	return turns
}

// escape prefixes a backslash to every line that is a header once its
// leading backslashes are removed.
func (c *Codec) escape(text string) string {
	if !strings.Contains(text, "###") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if c.isHeaderShaped(line) {
			lines[i] = `\` + line
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Codec) unescape(line string) string {
	if strings.HasPrefix(line, `\`) && c.isHeaderShaped(line) {
		return line[1:]
	}
	return line
}

func (c *Codec) isHeaderShaped(line string) bool {
	return c.header.MatchString(strings.TrimLeft(strings.TrimSuffix(line, "\r"), `\`))
}

// parseTimestamp combines the optional date and the time of day of a
// header. Out-of-range values fall back to the start of the day.
func (c *Codec) parseTimestamp(date, clock string, day time.Time) time.Time {
	year, month, dom := 0, time.January, 1
	if !day.IsZero() {
		year, month, dom = day.In(c.loc).Date()
	}
	if date != "" {
		if d, err := time.ParseInLocation(dateLayout, date, c.loc); err == nil {
			year, month, dom = d.Date()
		}
	}

	var h, m, s int
	if _, err := fmt.Sscanf(clock, "%d:%d:%d", &h, &m, &s); err != nil || h > 23 || m > 59 || s > 59 {
		h, m, s = 0, 0, 0
	}
	return time.Date(year, month, dom, h, m, s, 0, c.loc)
}
