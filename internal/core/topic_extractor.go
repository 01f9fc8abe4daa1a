// ABOUTME: TopicExtractor finds @mentions and keyword-implied topics in a user message
// ABOUTME: Resolution prefers explicit topics, then implicit, then all six
package core

import (
	"regexp"
	"strings"

	"github.com/harper/nutricoach/internal/models"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractedTopics holds both producers' output for one message
type ExtractedTopics struct {
	Explicit []models.TopicScope `json:"explicit"`
	Implicit []models.TopicScope `json:"implicit"`
}

// Resolve picks the topics to fetch: explicit if any, else implicit, else every topic
func (t ExtractedTopics) Resolve() []models.TopicScope {
	if len(t.Explicit) > 0 {
		return append([]models.TopicScope(nil), t.Explicit...)
	}
	if len(t.Implicit) > 0 {
		return append([]models.TopicScope(nil), t.Implicit...)
	}
	return models.AllTopics()
}

// WithExplicit returns a copy whose explicit list starts with extra, deduplicated
func (t ExtractedTopics) WithExplicit(extra []models.TopicScope) ExtractedTopics {
	if len(extra) == 0 {
		return t
	}
	merged := make([]string, 0, len(extra)+len(t.Explicit))
	for _, topic := range extra {
		merged = append(merged, string(topic))
	}
	for _, topic := range t.Explicit {
		merged = append(merged, string(topic))
	}
	return ExtractedTopics{Explicit: models.ParseTopics(merged), Implicit: t.Implicit}
}

type topicMatcher struct {
	topic   models.TopicScope
	pattern *regexp.Regexp
}

// TopicExtractor detects topic scopes in free text
type TopicExtractor struct {
	matchers []topicMatcher
}

// NewTopicExtractor compiles a keyword map; nil means DefaultKeywords
func NewTopicExtractor(keywords KeywordMap) *TopicExtractor {
	if keywords == nil {
		keywords = DefaultKeywords()
	}

	te := &TopicExtractor{}
	for _, topic := range models.AllTopics() {
		words := keywords[topic]
		if len(words) == 0 {
			continue
		}
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
		}
		te.matchers = append(te.matchers, topicMatcher{
			topic:   topic,
			pattern: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
		})
	}
	return te
}

// Extract runs both producers against message
func (te *TopicExtractor) Extract(message string) ExtractedTopics {
	return ExtractedTopics{
		Explicit: ExtractMentions(message),
		Implicit: te.implicit(message),
	}
}

// ExtractMentions returns valid @topic mentions in first-seen order without duplicates
func ExtractMentions(message string) []models.TopicScope {
	matches := mentionPattern.FindAllStringSubmatch(message, -1)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return models.ParseTopics(names)
}

func (te *TopicExtractor) implicit(message string) []models.TopicScope {
	lower := strings.ToLower(message)
	var topics []models.TopicScope
	for _, m := range te.matchers {
		if m.pattern.MatchString(lower) {
			topics = append(topics, m.topic)
		}
	}
	return topics
}
