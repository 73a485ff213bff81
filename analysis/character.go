package analysis

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/text"
)

// Cut points for the classifier rules.
const (
	optimisticPolarity = 0.2
	criticalPolarity   = -0.2

	opinionatedSubjectivity = 0.6
	factualSubjectivity     = 0.3
	expressiveSubjectivity  = 0.7

	commenterRatio = 3

	wideRangingSubreddits  = 10
	focusedSubreddits      = 2
	focusedMinItems        = 10
	detailedWriterLength   = 300
	conciseWriterLength    = 50
	highlyActivePerDay     = 5
	moderatelyActivePerDay = 2

	contentFocusSize = 5

	insufficientTrait = "Insufficient data for analysis"
	unknownLabel      = "Unknown"
)

// Stats is everything the classifier rules look at.
type Stats struct {
	Posts              int
	Comments           int
	DistinctSubreddits int
	Analyzed           int
	MeanPolarity       float64
	MeanSubjectivity   float64
	MeanLength         float64
	ActiveDays         int
	ItemsPerActiveDay  float64
}

func (s Stats) Total() int {
	return s.Posts + s.Comments
}

type rule struct {
	label   string
	applies func(Stats) bool
}

// Every trait rule is evaluated; each one that applies adds its label in table order.
var traitRules = []rule{
	{"Optimistic", func(s Stats) bool { return s.MeanPolarity > optimisticPolarity }},
	{"Critical", func(s Stats) bool { return s.MeanPolarity < criticalPolarity }},
	{"Balanced", func(s Stats) bool {
		return s.MeanPolarity >= criticalPolarity && s.MeanPolarity <= optimisticPolarity
	}},
	{"Opinionated", func(s Stats) bool { return s.MeanSubjectivity > opinionatedSubjectivity }},
	{"Factual", func(s Stats) bool { return s.MeanSubjectivity < factualSubjectivity }},
	{"Moderate", func(s Stats) bool {
		return s.MeanSubjectivity >= factualSubjectivity && s.MeanSubjectivity <= opinionatedSubjectivity
	}},
	{"Content Creator", func(s Stats) bool { return s.Posts > s.Comments }},
	{"Active Commenter", func(s Stats) bool { return s.Comments > s.Posts*commenterRatio }},
	{"Wide-ranging Interests", func(s Stats) bool { return s.DistinctSubreddits >= wideRangingSubreddits }},
	{"Community Focused", func(s Stats) bool {
		return s.Total() >= focusedMinItems && s.DistinctSubreddits <= focusedSubreddits
	}},
	{"Detailed Writer", func(s Stats) bool { return s.MeanLength > detailedWriterLength }},
	{"Concise", func(s Stats) bool { return s.MeanLength > 0 && s.MeanLength < conciseWriterLength }},
}

// First match wins.
var styleRules = []rule{
	{"Expressive and Personal", func(s Stats) bool { return s.MeanSubjectivity > expressiveSubjectivity }},
	{"Objective and Factual", func(s Stats) bool { return s.MeanSubjectivity < factualSubjectivity }},
	{"Balanced and Thoughtful", func(Stats) bool { return true }},
}

// First match wins.
var engagementRules = []rule{
	{"Highly Active", func(s Stats) bool { return s.ItemsPerActiveDay > highlyActivePerDay }},
	{"Moderately Active", func(s Stats) bool { return s.ItemsPerActiveDay > moderatelyActivePerDay }},
	{"Casual User", func(s Stats) bool { return s.Total() > 0 }},
}

// CollectStats derives classifier inputs from the fetched items and the aggregated sentiment.
func CollectStats(items []models.ContentItem, sentiment models.SentimentAnalysis) Stats {
	stats := Stats{
		Analyzed:         sentiment.TotalAnalyzed,
		MeanPolarity:     sentiment.OverallPolarity,
		MeanSubjectivity: sentiment.OverallSubjectivity,
	}

	subreddits := make(map[string]struct{})
	days := make(map[string]struct{})
	lengths := make([]float64, 0, len(items))
	for _, item := range items {
		if item.Kind == enums.ItemKindPost {
			stats.Posts++
		} else {
			stats.Comments++
		}
		if item.Subreddit != "" {
			subreddits[strings.ToLower(item.Subreddit)] = struct{}{}
		}
		days[utcDay(item.CreatedAt).Format(dateLayout)] = struct{}{}
		if body := strings.TrimSpace(item.Text); body != "" && !text.IsDeleted(body) {
			lengths = append(lengths, float64(utf8.RuneCountInString(body)))
		}
	}

	stats.DistinctSubreddits = len(subreddits)
	stats.ActiveDays = len(days)
	if stats.ActiveDays > 0 {
		stats.ItemsPerActiveDay = float64(stats.Total()) / float64(stats.ActiveDays)
	}
	if len(lengths) > 0 {
		stats.MeanLength = math.Round(stat.Mean(lengths, nil))
	}

	return stats
}

// Classify turns the aggregated statistics into descriptive labels.
func Classify(items []models.ContentItem, sentiment models.SentimentAnalysis) models.CharacterProfile {
	stats := CollectStats(items, sentiment)

	profile := models.CharacterProfile{
		PersonalityTraits:  []string{insufficientTrait},
		ContentFocus:       TopSubreddits(items, contentFocusSize),
		CommunicationStyle: unknownLabel,
		EngagementLevel:    firstMatch(engagementRules, stats),
		SentimentSummary:   sentiment.SentimentSummary,
	}
	if stats.Analyzed == 0 {
		return profile
	}

	profile.PersonalityTraits = allMatches(traitRules, stats)
	profile.CommunicationStyle = firstMatch(styleRules, stats)

	return profile
}

// TopSubreddits ranks subreddits by item count, ignoring case the same way
// CollectStats does; equal counts are ordered alphabetically. Each name is shown
// with the casing it first appeared in.
func TopSubreddits(items []models.ContentItem, n int) []string {
	counts := make(map[string]int)
	display := make(map[string]string)
	for _, item := range items {
		if item.Subreddit == "" {
			continue
		}
		key := strings.ToLower(item.Subreddit)
		if _, ok := display[key]; !ok {
			display[key] = item.Subreddit
		}
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = display[key]
	}
	return names
}

func allMatches(rules []rule, s Stats) []string {
	labels := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.applies(s) {
			labels = append(labels, r.label)
		}
	}
	return labels
}

func firstMatch(rules []rule, s Stats) string {
	for _, r := range rules {
		if r.applies(s) {
			return r.label
		}
	}
	return unknownLabel
}
