// Package reporting decides which client errors reach the error sink and
// delivers the ones that do.
package reporting

import "strings"

// Classifier decides whether an error with the given message is already
// handled elsewhere and should not be reported. Implementations must be pure.
type Classifier interface {
	ShouldIgnore(message string) bool
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(message string) bool

// ShouldIgnore calls f.
func (f ClassifierFunc) ShouldIgnore(message string) bool { return f(message) }

// NeverIgnore reports every error.
var NeverIgnore Classifier = ClassifierFunc(func(string) bool { return false })

// MessageClassifier ignores a fixed set of messages, compared trimmed and case-insensitively.
type MessageClassifier struct {
	messages map[string]struct{}
}

// NewMessageClassifier returns a classifier ignoring the given messages.
// Blank entries are dropped, so an empty list ignores nothing.
func NewMessageClassifier(messages ...string) *MessageClassifier {
	c := &MessageClassifier{messages: make(map[string]struct{}, len(messages))}
	for _, m := range messages {
		if key := normalizeMessage(m); key != "" {
			c.messages[key] = struct{}{}
		}
	}
	return c
}

// ShouldIgnore implements Classifier.
func (c *MessageClassifier) ShouldIgnore(message string) bool {
	key := normalizeMessage(message)
	if key == "" {
		return false
	}
	_, ok := c.messages[key]
	return ok
}

func normalizeMessage(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}
