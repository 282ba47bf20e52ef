// Package builder consolidates schema fragments into one aggregate document.
//
// A Builder is created once per run. Fragments are registered in input
// order; each declaration is merged according to the rule for its kind:
//
//   - datasource: at most one. A repeated datasource must render identically.
//   - generator, type alias: keyed by name, equal-or-reject.
//   - enum: keyed by name, values and block attributes are unioned.
//   - model, composite type: keyed by name, fields are unioned; a field that
//     appears twice must render identically.
//
// Equality is decided by comparing canonical renderings. Registration fails
// fast on the first conflict. The builder performs no I/O.
package builder

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/sabinadams/aurora/pkg/schema"
	"github.com/sabinadams/aurora/pkg/schema/render"
)

// Renderer renders a declaration as a single-declaration document. Two
// declarations are equal when their renderings are byte-identical.
type Renderer func(schema.Declaration) []byte

// Outcome describes what happened to a registered declaration.
type Outcome string

const (
	OutcomeAppended     Outcome = "appended"
	OutcomeDeduplicated Outcome = "deduplicated"
	OutcomeMerged       Outcome = "merged"
	OutcomeConflict     Outcome = "conflict"
)

// Observer is notified once for every declaration the builder processes.
type Observer interface {
	DeclarationProcessed(kind schema.Kind, outcome Outcome)
}

// Option configures a Builder.
type Option func(*Builder)

// WithRenderer replaces the equality renderer.
func WithRenderer(r Renderer) Option {
	return func(b *Builder) { b.render = r }
}

// WithStrictEnums makes a same-named enum value with a different rendering a
// fatal conflict instead of a warning.
func WithStrictEnums(strict bool) Option {
	return func(b *Builder) { b.strictEnums = strict }
}

// WithLogger sets the logger used for merge decisions.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) { b.logger = logger.With().Str("component", "builder").Logger() }
}

// WithObserver registers an observer for per-declaration outcomes.
func WithObserver(o Observer) Option {
	return func(b *Builder) { b.observer = o }
}

// Result is the outcome of a consolidation run.
type Result struct {
	Document *schema.Document
	Source   []byte
	Warnings []Warning
}

// Builder accumulates fragments into an aggregate document.
type Builder struct {
	doc        *schema.Document
	names      map[string]map[string]schema.Declaration
	datasource *schema.Datasource
	provenance *Provenance
	warnings   []Warning
	fragments  int
	finalized  bool
	failed     error

	render      Renderer
	strictEnums bool
	logger      zerolog.Logger
	observer    Observer
}

// New returns an empty builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		doc:        schema.NewDocument(),
		names:      make(map[string]map[string]schema.Declaration),
		provenance: newProvenance(),
		render:     render.Declaration,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register merges every declaration of the fragment, in order. It returns
// the first *ConflictError encountered, or ErrFinalized. A conflict fails
// the builder: the aggregate may hold part of the conflicting declaration,
// so every later Register or Finalize returns the same conflict.
func (b *Builder) Register(fragment schema.Fragment) error {
	if b.failed != nil {
		return b.failed
	}
	if b.finalized {
		return ErrFinalized
	}
	b.fragments++

	b.logger.Debug().
		Str("origin", fragment.Origin).
		Int("declarations", fragment.Document.Len()).
		Msg("Registering fragment")

	if fragment.Document == nil {
		return nil
	}

	m := &merger{b: b, origin: fragment.Origin}
	for _, decl := range fragment.Document.Declarations {
		if err := decl.Accept(m); err != nil {
			b.failed = err
			b.observe(decl.Kind(), OutcomeConflict)
			b.logger.Debug().
				Err(err).
				Str("origin", fragment.Origin).
				Str("kind", string(decl.Kind())).
				Str("name", decl.DeclName()).
				Msg("Conflict detected")
			return err
		}
		b.observe(decl.Kind(), m.outcome)
	}
	return nil
}

// Finalize consumes the builder and returns the aggregate document with its
// canonical rendering. Later calls to Register or Finalize return ErrFinalized.
// A failed builder returns its conflict instead.
func (b *Builder) Finalize() (*Result, error) {
	if b.failed != nil {
		return nil, b.failed
	}
	if b.finalized {
		return nil, ErrFinalized
	}
	b.finalized = true

	parts := make([][]byte, 0, b.doc.Len())
	for _, decl := range b.doc.Declarations {
		parts = append(parts, b.render(decl))
	}

	b.logger.Debug().
		Int("fragments", b.fragments).
		Int("declarations", b.doc.Len()).
		Int("warnings", len(b.warnings)).
		Msg("Consolidation finalized")

	return &Result{
		Document: b.doc,
		Source:   bytes.Join(parts, []byte("\n")),
		Warnings: b.Warnings(),
	}, nil
}

// Provenance returns the provenance index built so far.
func (b *Builder) Provenance() *Provenance {
	return b.provenance
}

// Warnings returns the warnings recorded so far.
func (b *Builder) Warnings() []Warning {
	out := make([]Warning, len(b.warnings))
	copy(out, b.warnings)
	return out
}

func (b *Builder) observe(kind schema.Kind, outcome Outcome) {
	if b.observer != nil {
		b.observer.DeclarationProcessed(kind, outcome)
	}
}

func (b *Builder) lookup(kind schema.Kind, name string) (schema.Declaration, bool) {
	decl, ok := b.names[kind.Namespace()][name]
	return decl, ok
}

// appendDeclaration stores a clone of decl and records its provenance.
func (b *Builder) appendDeclaration(origin string, decl schema.Declaration) schema.Declaration {
	owned := decl.CloneDeclaration()
	b.doc.Append(owned)

	ns := decl.Kind().Namespace()
	if b.names[ns] == nil {
		b.names[ns] = make(map[string]schema.Declaration)
	}
	b.names[ns][decl.DeclName()] = owned
	b.provenance.record(Key{Kind: decl.Kind(), Name: decl.DeclName()}, origin)
	return owned
}

func (b *Builder) origin(kind schema.Kind, name, member string) string {
	origin, _ := b.provenance.Origin(Key{Kind: kind, Name: name, Member: member})
	return origin
}

func (b *Builder) equal(a, c schema.Declaration) (bool, string, string) {
	left := b.render(a)
	right := b.render(c)
	return bytes.Equal(left, right), string(left), string(right)
}
