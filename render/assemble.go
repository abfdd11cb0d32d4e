package render

import (
	"strconv"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/service/vo"
)

type Role string

const (
	RoleHero    Role = "hero"
	RoleSection Role = "section"
	RoleFooter  Role = "footer"
)

// Block is one entry of the render sequence.
type Block struct {
	Key       string
	Kind      vo.Kind
	Role      Role
	Component templ.Component
}

// Options tune one assembly pass.
type Options struct {
	// Exclude removes sections of these kinds before dispatch
	Exclude []vo.Kind
}

type HeroFunc func(hero *vo.HeroBlock) templ.Component

type AssemblerOption func(*Assembler)

// WithLogger sets the logger for unknown-kind diagnostics.
func WithLogger(logger *zap.Logger) AssemblerOption {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithUnknownHook is called once per skipped unknown section, e.g. for metrics.
func WithUnknownHook(fn func(kind vo.Kind)) AssemblerOption {
	return func(a *Assembler) {
		a.onUnknown = fn
	}
}

// Assembler turns a fetched page document into the ordered render sequence:
// hero, dispatched sections, then the global footer exactly once.
type Assembler struct {
	table     *Table
	hero      HeroFunc
	footer    templ.Component
	logger    *zap.Logger
	onUnknown func(kind vo.Kind)
}

func NewAssembler(table *Table, hero HeroFunc, footer templ.Component, options ...AssemblerOption) *Assembler {
	a := &Assembler{
		table:  table,
		hero:   hero,
		footer: footer,
		logger: zap.NewNop(),
	}
	for _, option := range options {
		if option != nil {
			option(a)
		}
	}
	return a
}

// Assemble never fails: unknown kinds are logged and skipped, excluded kinds are
// removed. Keys fall back to the section's index in the unfiltered list. A nil
// document yields no blocks.
func (a *Assembler) Assemble(doc *vo.PageDocument, opts Options) []Block {
	if doc == nil {
		return nil
	}
	exclude := make(map[vo.Kind]struct{}, len(opts.Exclude))
	for _, kind := range opts.Exclude {
		exclude[kind] = struct{}{}
	}

	blocks := make([]Block, 0, len(doc.Sections)+2)
	if doc.Hero != nil && a.hero != nil {
		blocks = append(blocks, Block{Key: "hero", Role: RoleHero, Component: a.hero(doc.Hero)})
	}
	for i, section := range doc.Sections {
		if _, skip := exclude[section.Kind]; skip {
			continue
		}
		key := section.Key
		if key == "" {
			key = strconv.Itoa(i)
		}
		resolution := a.table.Resolve(section.Kind)
		if !resolution.Known {
			a.logger.Warn("skipping section of unknown kind",
				zap.String("kind", string(section.Kind)),
				zap.String("key", key),
				zap.Int("index", i),
			)
			if a.onUnknown != nil {
				a.onUnknown(section.Kind)
			}
			continue
		}
		blocks = append(blocks, Block{
			Key:       key,
			Kind:      section.Kind,
			Role:      RoleSection,
			Component: resolution.Render(section.Fields),
		})
	}
	if a.footer != nil {
		blocks = append(blocks, Block{Key: "footer", Role: RoleFooter, Component: a.footer})
	}
	return blocks
}
