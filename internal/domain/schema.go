package domain

import "fmt"

// Answer domains shipped with the tool. Schemas loaded from configuration may
// declare any finite set of values.
var (
	FivePointScale = []string{"1", "2", "3", "4", "5"}
	TriageScale    = []string{"Yes", "No", "Unclear"}
)

// Question is one evaluation question together with its permitted answers.
type Question struct {
	Text   string   `json:"text" yaml:"text"`
	Domain []string `json:"domain" yaml:"domain"`
}

// Default returns the answer a question falls back to when the annotator made
// no explicit choice. It is always the first value of the domain.
func (q Question) Default() string {
	if len(q.Domain) == 0 {
		return ""
	}
	return q.Domain[0]
}

// Allows reports whether the answer belongs to the question's domain.
func (q Question) Allows(answer string) bool {
	for _, v := range q.Domain {
		if v == answer {
			return true
		}
	}
	return false
}

// QuestionSchema is the ordered battery of questions presented for every task
// item of a session. Declaration order is presentation order. Loaded once per
// process and treated as read-only afterwards.
type QuestionSchema struct {
	Questions []Question
}

func NewQuestionSchema(questions []Question) *QuestionSchema {
	return &QuestionSchema{Questions: questions}
}

func (s *QuestionSchema) Len() int {
	return len(s.Questions)
}

// Lookup finds a question by its text.
func (s *QuestionSchema) Lookup(text string) (Question, bool) {
	for _, q := range s.Questions {
		if q.Text == text {
			return q, true
		}
	}
	return Question{}, false
}

func (s *QuestionSchema) Validate() error {
	if len(s.Questions) == 0 {
		return fmt.Errorf("at least one question is required")
	}
	seen := make(map[string]struct{}, len(s.Questions))
	for i, q := range s.Questions {
		if q.Text == "" {
			return fmt.Errorf("questions[%d] must have text defined", i)
		}
		if _, dup := seen[q.Text]; dup {
			return fmt.Errorf("questions[%d] duplicates question text %q", i, q.Text)
		}
		seen[q.Text] = struct{}{}
		if len(q.Domain) == 0 {
			return fmt.Errorf("questions[%d] (%q) must have a non-empty answer domain", i, q.Text)
		}
		values := make(map[string]struct{}, len(q.Domain))
		for _, v := range q.Domain {
			if v == "" {
				return fmt.Errorf("questions[%d] (%q) has an empty answer value", i, q.Text)
			}
			if _, dup := values[v]; dup {
				return fmt.Errorf("questions[%d] (%q) repeats answer value %q", i, q.Text, v)
			}
			values[v] = struct{}{}
		}
	}
	return nil
}

// DefaultSchema is the built-in portrait-quality battery on a five-point
// scale, used when no schema document is configured.
func DefaultSchema() *QuestionSchema {
	texts := []string{
		"Are fine details of the generated portion well defined?",
		"Is the overall composition coherent and consistent with the prompt?",
		"Are the colors natural and well-balanced, without unnatural saturation or color bleeding?",
		"Are there any objects in the image that seem out of place?",
		"Are the edges of the edited region sharp and well-defined?",
		"Is the image free from unnatural blending or merging of objects (e.g., extra limbs, distorted faces, impossible shapes)?",
	}
	questions := make([]Question, len(texts))
	for i, t := range texts {
		questions[i] = Question{Text: t, Domain: FivePointScale}
	}
	return NewQuestionSchema(questions)
}
