package news

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Lexicons is the declarative classification configuration: trigger terms per
// category and per facet. Editing the YAML changes classification behavior
// without touching pipeline code.
type Lexicons struct {
	Categories map[Category][]string `yaml:"categories"`
	Genre      []string              `yaml:"genre"`
	Industry   []string              `yaml:"industry"`
	Region     []string              `yaml:"region"`
}

// LoadLexicons reads a lexicon file. Missing sections fall back to the
// built-in defaults so a partial override file is valid.
func LoadLexicons(path string) (*Lexicons, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicons: %w", err)
	}
	lex := &Lexicons{}
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("parse lexicons: %w", err)
	}
	def := DefaultLexicons()
	if len(lex.Categories) == 0 {
		lex.Categories = def.Categories
	}
	if len(lex.Genre) == 0 {
		lex.Genre = def.Genre
	}
	if len(lex.Industry) == 0 {
		lex.Industry = def.Industry
	}
	if len(lex.Region) == 0 {
		lex.Region = def.Region
	}
	return lex, nil
}

// DefaultLexicons returns the curated music-industry trigger terms.
func DefaultLexicons() *Lexicons {
	return &Lexicons{
		Categories: map[Category][]string{
			CategoryNews: {
				"breaking", "announces", "releases", "debuts", "launches", "drops",
				"premieres", "reveals", "confirms", "signs", "joins", "leaves",
				"cancels", "postpones", "reschedules", "dies", "passes away",
			},
			CategoryReport: {
				"report", "study", "research", "data", "statistics",
				"numbers", "sales", "charts", "revenue", "market",
				"trends", "growth", "decline", "according to",
			},
			CategoryInsight: {
				"opinion", "perspective", "analysis", "commentary", "think piece",
				"deep dive", "exploration", "examination", "investigation",
				"what makes", "understanding", "meaning", "behind the",
			},
			CategoryInterview: {
				"interview", "talks about", "talks with", "speaks about", "speaks with",
				"discusses", "conversation", "q&a", "tells", "opens up",
				"sits down with",
			},
			CategoryColumn: {
				"column", "editorial", "opinion piece", "blog",
				"thoughts", "reflections", "musings", "take on", "my take",
			},
		},
		Genre: []string{
			"rock", "pop", "hip hop", "rap", "jazz", "classical", "electronic", "edm",
			"country", "folk", "blues", "metal", "punk", "indie", "alternative", "r&b",
			"soul", "funk", "reggae", "latin", "world music", "ambient", "house",
			"techno", "dubstep", "trap", "drill", "afrobeat", "k-pop", "j-pop",
		},
		Industry: []string{
			"streaming", "record label", "music industry", "concert", "festival", "tour",
			"venue", "booking", "management", "publishing", "royalties", "licensing",
			"sync", "playlist", "radio", "podcast", "vinyl", "album", "single", "digital",
			"nft", "blockchain", "ai music", "music tech", "startup", "investment",
			"merger", "acquisition", "ipo", "revenue", "sales", "charts", "billboard",
			"grammy", "award", "nomination", "collaboration", "remix", "cover", "sample",
		},
		Region: []string{
			"us", "usa", "america", "american", "uk", "britain", "british", "europe",
			"european", "asia", "asian", "korea", "korean", "japan", "japanese",
			"china", "chinese", "india", "indian", "africa", "african", "latin america",
			"south america", "australia", "canadian", "mexico", "brazilian", "german",
			"french", "italian", "spanish", "nordic", "scandinavian", "global", "worldwide",
		},
	}
}

// Classifier assigns a category and facet tags from lexicon matches.
// Classify is pure: the same text always yields the same result.
type Classifier struct {
	lex *Lexicons
}

func NewClassifier(lex *Lexicons) *Classifier {
	if lex == nil {
		lex = DefaultLexicons()
	}
	return &Classifier{lex: lex}
}

// Classify matches the normalized title+description against the category and
// facet lexicons. When several category lexicons match, the earliest entry in
// CategoryPriority wins; no match at all defaults to NEWS. Facet tags are the
// union of matches, sorted for stable output; empty facets are valid.
func (c *Classifier) Classify(a CanonicalArticle) (Category, Tags) {
	text := NormalizeText(a.Title + " " + a.Description)

	category := CategoryNews
	for _, cat := range CategoryPriority {
		if matchesAny(text, c.lex.Categories[cat]) {
			category = cat
			break
		}
	}

	tags := Tags{
		Genre:    matchAll(text, c.lex.Genre),
		Industry: matchAll(text, c.lex.Industry),
		Region:   matchAll(text, c.lex.Region),
	}
	return category, tags
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases, folds diacritics and replaces punctuation with
// spaces so lexicon terms match a uniform token view. Ampersands survive for
// terms like "r&b".
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '&':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// matchesAny reports whether any term triggers. Phrases match as substrings;
// short tokens need word boundaries so "us" does not fire inside "music".
func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		if matchTerm(text, term) {
			return true
		}
	}
	return false
}

func matchAll(text string, terms []string) []string {
	var out []string
	for _, term := range terms {
		if matchTerm(text, term) {
			out = append(out, strings.ToLower(term))
		}
	}
	sort.Strings(out)
	return out
}

func matchTerm(text, term string) bool {
	term = NormalizeText(term)
	if term == "" {
		return false
	}
	if strings.Contains(term, " ") {
		return strings.Contains(text, term)
	}
	if len(term) <= 4 {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		return re.MatchString(text)
	}
	return strings.Contains(text, term)
}
