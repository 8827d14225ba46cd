package query

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// Matcher does fnmatch-style wildcard matching (*, ?, [...], [!...]) over
// whole strings. Braces and backslashes have no special meaning. No
// separators are declared, so * also spans "/" inside content lines.
// Compiled patterns are kept in an LRU since the shell tends to repeat the
// same few patterns.
type Matcher struct {
	cache  *lru.Cache[string, glob.Glob]
	logger zerolog.Logger
}

func NewMatcher(cacheSize int, logger zerolog.Logger) (*Matcher, error) {
	cache, err := lru.New[string, glob.Glob](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create glob cache: %w", err)
	}
	return &Matcher{cache: cache, logger: logger}, nil
}

// Compile returns the cached glob for pattern, compiling it on first use. An
// unclosed "[" is a literal bracket. A pattern that still cannot be expressed
// matches itself literally.
func (m *Matcher) Compile(pattern string) glob.Glob {
	if g, ok := m.cache.Get(pattern); ok {
		return g
	}

	var g glob.Glob
	translated, ok := translatePattern(pattern)
	if ok {
		var err error
		if g, err = glob.Compile(translated); err != nil {
			m.logger.Debug().Err(err).Str("pattern", pattern).Msg("invalid glob, matching literally")
		}
	} else {
		m.logger.Debug().Str("pattern", pattern).Msg("unsupported character class, matching literally")
	}
	if g == nil {
		g = glob.MustCompile(glob.QuoteMeta(pattern))
	}

	m.cache.Add(pattern, g)
	return g
}

func (m *Matcher) Match(pattern, s string) bool {
	return m.Compile(pattern).Match(s)
}

// Cached reports how many compiled patterns are held.
func (m *Matcher) Cached() int {
	return m.cache.Len()
}

// translatePattern rewrites an fnmatch pattern into glob syntax. ok is false
// for a negated class mixing ranges with other members, which glob cannot
// express.
func translatePattern(pattern string) (string, bool) {
	rs := []rune(pattern)
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; r {
		case '{', '}', '\\', ']':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '[':
			end := classEnd(rs, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class, ok := translateClass(rs[i+1 : end])
			if !ok {
				return "", false
			}
			b.WriteString(class)
			i = end
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), true
}

// classEnd returns the index of the "]" closing the class opened at open, or
// -1. A "]" right after "[" or "[!" is a member, not the end.
func classEnd(rs []rune, open int) int {
	j := open + 1
	if j < len(rs) && rs[j] == '!' {
		j++
	}
	if j < len(rs) && rs[j] == ']' {
		j++
	}
	for j < len(rs) && rs[j] != ']' {
		j++
	}
	if j >= len(rs) {
		return -1
	}
	return j
}

type classItem struct {
	lo, hi rune
}

func (it classItem) render() string {
	if it.lo != it.hi {
		return string(it.lo) + "-" + string(it.hi)
	}
	return escapeClassRune(it.lo)
}

// translateClass turns the body of an fnmatch class into glob syntax. glob
// allows a single range or a run of single characters per class, so richer
// positive classes become an alternation of one-item classes.
func translateClass(body []rune) (string, bool) {
	negate := len(body) > 0 && body[0] == '!'
	if negate {
		body = body[1:]
	}

	var items []classItem
	singlesOnly := true
	for k := 0; k < len(body); k++ {
		if k+2 < len(body) && body[k+1] == '-' {
			items = append(items, classItem{lo: body[k], hi: body[k+2]})
			singlesOnly = false
			k += 2
			continue
		}
		if body[k] == '-' {
			singlesOnly = false
		}
		items = append(items, classItem{lo: body[k], hi: body[k]})
	}

	not := ""
	if negate {
		not = "!"
	}

	switch {
	case len(items) == 1 && items[0].lo != '!':
		return "[" + not + items[0].render() + "]", true
	case singlesOnly:
		var b strings.Builder
		b.WriteString("[" + not)
		for _, it := range items {
			b.WriteString(escapeClassRune(it.lo))
		}
		b.WriteString("]")
		return b.String(), true
	case negate:
		return "", false
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.lo != it.hi && it.lo == '!' {
			return "", false
		}
		parts = append(parts, "["+it.render()+"]")
	}
	return "{" + strings.Join(parts, ",") + "}", true
}

func escapeClassRune(r rune) string {
	switch r {
	case '!', ']', '\\':
		return `\` + string(r)
	}
	return string(r)
}
