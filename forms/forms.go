// Package forms manages lead form definitions and the submissions collected
// through them.
package forms

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/foomo/contentserver-pages/service/vo"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionEmail    QuestionType = "email"
	QuestionURL      QuestionType = "url"
)

func (t QuestionType) valid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionSelect, QuestionCheckbox, QuestionEmail, QuestionURL:
		return true
	}
	return false
}

type Question struct {
	ID       string       `json:"id" yaml:"id"`
	Label    string       `json:"label" yaml:"label"`
	Type     QuestionType `json:"type" yaml:"type"`
	Required bool         `json:"required" yaml:"required"`
	Options  []string     `json:"options,omitempty" yaml:"options"`
}

type Form struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Title       string     `json:"title,omitempty" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Type        string     `json:"type" yaml:"type"`
	Questions   []Question `json:"questions" yaml:"questions"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"-"`
}

// Validate checks the definition. Question ids are derived from labels when
// missing and must be unique.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: form name is required", ErrInvalid)
	}
	if strings.TrimSpace(f.Type) == "" {
		return fmt.Errorf("%w: form type is required", ErrInvalid)
	}
	seen := map[string]struct{}{}
	for i := range f.Questions {
		q := &f.Questions[i]
		if q.ID == "" {
			q.ID = slugify(q.Label)
		}
		if q.ID == "" {
			return fmt.Errorf("%w: question %d needs an id or label", ErrInvalid, i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalid, q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Type == "" {
			q.Type = QuestionText
		}
		if !q.Type.valid() {
			return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalid, q.ID, q.Type)
		}
		if q.Type == QuestionSelect && len(q.Options) == 0 {
			return fmt.Errorf("%w: select question %q needs options", ErrInvalid, q.ID)
		}
	}
	return nil
}

func slugify(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Config is the shape a page hero references.
func (f Form) Config() *vo.FormConfig {
	config := &vo.FormConfig{
		ID:          f.ID,
		Name:        f.Name,
		Title:       f.Title,
		Description: f.Description,
		Type:        f.Type,
	}
	for _, q := range f.Questions {
		config.AdditionalFields = append(config.AdditionalFields, vo.FormField{
			Name:     q.ID,
			Label:    q.Label,
			Type:     string(q.Type),
			Required: q.Required,
			Options:  q.Options,
		})
	}
	return config
}

type Submission struct {
	ID        string            `json:"id" yaml:"id"`
	FormID    string            `json:"formId" yaml:"formId"`
	Name      string            `json:"name" yaml:"name"`
	Email     string            `json:"email" yaml:"email"`
	Answers   map[string]string `json:"answers,omitempty" yaml:"answers"`
	CreatedAt time.Time         `json:"createdAt" yaml:"createdAt"`
}

// validate checks a submission against its form.
func (s Submission) validate(form Form) error {
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return fmt.Errorf("%w: email %q: %v", ErrInvalid, s.Email, err)
	}
	known := make(map[string]Question, len(form.Questions))
	for _, q := range form.Questions {
		known[q.ID] = q
		if q.Required && strings.TrimSpace(s.Answers[q.ID]) == "" {
			return fmt.Errorf("%w: question %q is required", ErrInvalid, q.ID)
		}
	}
	for id, answer := range s.Answers {
		q, ok := known[id]
		if !ok {
			return fmt.Errorf("%w: unknown question %q", ErrInvalid, id)
		}
		if q.Type == QuestionSelect && answer != "" && !contains(q.Options, answer) {
			return fmt.Errorf("%w: %q is not an option of %q", ErrInvalid, answer, id)
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

type SubmissionFilter struct {
	FormID string
	// Query matches name or email, case insensitive
	Query  string
	From   time.Time
	// To is exclusive
	To     time.Time
	Limit  int
	Offset int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Normalize clamps paging and rejects inverted ranges.
func (f SubmissionFilter) Normalize() (SubmissionFilter, error) {
	if f.Offset < 0 {
		return f, fmt.Errorf("%w: offset must not be negative", ErrInvalid)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("%w: to is before from", ErrInvalid)
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	f.Query = strings.TrimSpace(f.Query)
	return f, nil
}
