package vo

type Markdown string

// Kind is the discriminant of a section. The set of kinds is open: anything the
// content store sends is a Kind, known or not.
type Kind string

func (k Kind) String() string {
	return string(k)
}

// Fields holds the kind specific values of a section as decoded from the store.
type Fields map[string]any

// String returns the named field if it is a string.
func (f Fields) String(name string) string {
	s, _ := f[name].(string)
	return s
}

// List returns the named field if it is a list of objects. Entries that are not
// objects are skipped.
func (f Fields) List(name string) []Fields {
	raw, ok := f[name].([]any)
	if !ok {
		return nil
	}
	list := make([]Fields, 0, len(raw))
	for _, entry := range raw {
		switch v := entry.(type) {
		case map[string]any:
			list = append(list, Fields(v))
		case Fields:
			list = append(list, v)
		}
	}
	return list
}

// Object returns the named field if it is an object.
func (f Fields) Object(name string) Fields {
	switch v := f[name].(type) {
	case map[string]any:
		return Fields(v)
	case Fields:
		return v
	}
	return nil
}

type Section struct {
	Kind   Kind   `json:"kind"`
	Key    string `json:"key,omitempty"` // empty when the store did not send one
	Fields Fields `json:"fields,omitempty"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type CTA struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Variant string `json:"variant,omitempty"`
}

type Screenshot struct {
	Image   Image  `json:"image"`
	Caption string `json:"caption,omitempty"`
}

type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// FormConfig is a form definition resolved by the content store and passed
// through to the hero.
type FormConfig struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Title            string      `json:"title,omitempty"`
	Description      string      `json:"description,omitempty"`
	Type             string      `json:"type"`
	AdditionalFields []FormField `json:"additionalFields,omitempty"`
}

type HeroBlock struct {
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle,omitempty"`
	CTAs        []CTA        `json:"ctas,omitempty"`
	Screenshots []Screenshot `json:"screenshots,omitempty"`
	FormConfig  *FormConfig  `json:"formConfig,omitempty"`
}

// PageDocument is fetched fresh for every render and never mutated.
type PageDocument struct {
	Title    string     `json:"title"`
	Hero     *HeroBlock `json:"hero,omitempty"`
	Sections []Section  `json:"sections"`
}
