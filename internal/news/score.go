package news

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Weights for the score components. They sum to 1 so the clamped result
// stays a plain [0,1] blend.
const (
	weightRecency  = 0.40
	weightSource   = 0.30
	weightSignal   = 0.20
	weightRichness = 0.10

	signalSaturation   = 3   // keyword hits at which the signal component maxes out
	richnessSaturation = 600 // description length (runes) treated as fully rich
)

// SourceWeights maps a source host to its authority weight in [0,1].
type SourceWeights struct {
	Default float64            `yaml:"default"`
	Sources map[string]float64 `yaml:"sources"`
}

// LoadSourceWeights reads the authority table from YAML.
func LoadSourceWeights(path string) (*SourceWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source weights: %w", err)
	}
	sw := &SourceWeights{}
	if err := yaml.Unmarshal(data, sw); err != nil {
		return nil, fmt.Errorf("parse source weights: %w", err)
	}
	if sw.Default == 0 {
		sw.Default = 0.5
	}
	return sw, nil
}

// DefaultSourceWeights returns the built-in authority table for the known
// music trade and editorial sites.
func DefaultSourceWeights() *SourceWeights {
	return &SourceWeights{
		Default: 0.5,
		Sources: map[string]float64{
			"www.billboard.com":              0.9,
			"www.rollingstone.com":           0.9,
			"pitchfork.com":                  0.85,
			"variety.com":                    0.85,
			"www.musicbusinessworldwide.com": 0.8,
			"www.nme.com":                    0.75,
			"www.stereogum.com":              0.75,
			"consequenceofsound.net":         0.7,
		},
	}
}

// DefaultSignalKeywords are the high-signal terms that bump a score:
// chart and award news, major business moves.
var DefaultSignalKeywords = []string{
	"grammy", "billboard", "chart", "number one", "no. 1", "award",
	"record deal", "world tour", "stadium", "headline", "acquisition",
	"lawsuit", "billion", "million", "reunion", "farewell",
}

// Scorer computes the bounded importance score used for ranking and for the
// AI summary budget. All weights come from configuration, not learned state.
type Scorer struct {
	Weights  *SourceWeights
	Signals  []string
	HalfLife time.Duration
}

func NewScorer(weights *SourceWeights, signals []string, halfLife time.Duration) *Scorer {
	if weights == nil {
		weights = DefaultSourceWeights()
	}
	if len(signals) == 0 {
		signals = DefaultSignalKeywords
	}
	if halfLife <= 0 {
		halfLife = 48 * time.Hour
	}
	return &Scorer{Weights: weights, Signals: signals, HalfLife: halfLife}
}

// Score blends recency, source authority, keyword signal and description
// richness into [0,1]. Recency uses exponential decay with the configured
// half-life, so holding the other signals fixed a newer article never scores
// below an older one.
func (s *Scorer) Score(a CanonicalArticle, now time.Time) float64 {
	age := now.Sub(a.Published)
	if age < 0 {
		age = 0
	}
	recency := math.Exp2(-age.Hours() / s.HalfLife.Hours())

	source := s.sourceWeight(a)

	text := NormalizeText(a.Title + " " + a.Description)
	hits := 0
	for _, kw := range s.Signals {
		if matchTerm(text, kw) {
			hits++
		}
	}
	signal := math.Min(float64(hits)/signalSaturation, 1.0)

	richness := math.Min(float64(len([]rune(a.Description)))/richnessSaturation, 1.0)

	score := weightRecency*recency + weightSource*source + weightSignal*signal + weightRichness*richness
	return clamp01(score)
}

func (s *Scorer) sourceWeight(a CanonicalArticle) float64 {
	if w, ok := s.lookupHost(a.Source); ok {
		return w
	}
	if u, err := url.Parse(a.Link); err == nil && u.Host != "" {
		if w, ok := s.lookupHost(u.Host); ok {
			return w
		}
	}
	return s.Weights.Default
}

// lookupHost tolerates a www. prefix on either side of the comparison.
func (s *Scorer) lookupHost(host string) (float64, bool) {
	host = strings.ToLower(host)
	if w, ok := s.Weights.Sources[host]; ok {
		return w, true
	}
	if trimmed := strings.TrimPrefix(host, "www."); trimmed != host {
		if w, ok := s.Weights.Sources[trimmed]; ok {
			return w, true
		}
	} else if w, ok := s.Weights.Sources["www."+host]; ok {
		return w, true
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
