package chat

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/mokayaj857/vireya/internal/domain"
)

//go:embed topics.yaml
var defaultTopicsYAML []byte

// TopicRule maps a topic tag to the keywords that reveal it.
type TopicRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// TopicTable is an ordered keyword table plus the tags reported when no
// keyword matches.
type TopicTable struct {
	Topics   []TopicRule `yaml:"topics"`
	Fallback []string    `yaml:"fallback"`

	folded [][]string
}

// DefaultTopics returns the built-in table.
func DefaultTopics() TopicTable {
	t, err := ParseTopics(strings.NewReader(string(defaultTopicsYAML)))
	if err != nil {
		panic(fmt.Sprintf("embedded topics.yaml: %v", err))
	}
	return t
}

// LoadTopicsFile reads a table from a YAML file.
func LoadTopicsFile(path string) (TopicTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return TopicTable{}, err
	}
	defer f.Close()
	t, err := ParseTopics(f)
	if err != nil {
		return TopicTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTopics decodes and validates a YAML table.
func ParseTopics(r io.Reader) (TopicTable, error) {
	var t TopicTable
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return TopicTable{}, fmt.Errorf("decode topics: %w", err)
	}
	if len(t.Topics) == 0 {
		return TopicTable{}, errors.New("topics: at least one topic is required")
	}
	if len(t.Fallback) == 0 {
		return TopicTable{}, errors.New("topics: fallback must not be empty")
	}
	seen := make(map[string]bool, len(t.Topics))
	for _, rule := range t.Topics {
		if strings.TrimSpace(rule.Name) == "" {
			return TopicTable{}, errors.New("topics: rule without name")
		}
		if seen[rule.Name] {
			return TopicTable{}, fmt.Errorf("topics: duplicate rule %q", rule.Name)
		}
		seen[rule.Name] = true
		if len(rule.Keywords) == 0 {
			return TopicTable{}, fmt.Errorf("topics: rule %q has no keywords", rule.Name)
		}
	}
	t.fold()
	return t, nil
}

func (t *TopicTable) fold() {
	c := cases.Fold()
	t.folded = make([][]string, len(t.Topics))
	for i, rule := range t.Topics {
		kws := make([]string, 0, len(rule.Keywords))
		for _, k := range rule.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				kws = append(kws, c.String(k))
			}
		}
		t.folded[i] = kws
	}
}

// Names lists every tag the table can produce, rules first, then fallback.
func (t TopicTable) Names() []string {
	out := make([]string, 0, len(t.Topics)+len(t.Fallback))
	seen := map[string]bool{}
	for _, r := range t.Topics {
		if !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r.Name)
		}
	}
	for _, f := range t.Fallback {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Detect returns the tags whose keywords occur anywhere in the conversation,
// in table order, or the fallback tags when none do. It depends on msgs only.
func (t TopicTable) Detect(msgs []domain.ChatMessage) []string {
	if t.folded == nil {
		t.fold()
	}
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	text := cases.Fold().String(strings.Join(texts, " "))

	var out []string
	for i, rule := range t.Topics {
		for _, k := range t.folded[i] {
			if strings.Contains(text, k) {
				out = append(out, rule.Name)
				break
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), t.Fallback...)
	}
	return out
}
