// Package htmlcore wires the streaming parse pipeline together: byte
// chunks go into the input buffer, the tokenizer turns them into token
// batches, the tree builder folds tokens into patch batches, and the
// DOM store commits each batch under a new version. One Pipeline drives
// one document.
package htmlcore

import (
	"github.com/riverrun/htmlcore/atom"
	"github.com/riverrun/htmlcore/dom"
	"github.com/riverrun/htmlcore/html5"
	"github.com/riverrun/htmlcore/html5/tree"
)

// Options configures a Pipeline.
type Options struct {
	Tokenizer html5.Options
	Builder   tree.Options
}

// Pipeline is the streaming-parse driver. It is not safe for
// concurrent use; independent documents get independent Pipelines
// (which may share one atom table).
type Pipeline struct {
	atoms   *atom.Table
	input   *html5.Input
	tk      *html5.Tokenizer
	builder *tree.Builder
	store   *dom.Store
	handle  dom.Handle
	version uint64
	done    bool
}

// NewPipeline returns a Pipeline parsing into a fresh document inside
// store. A nil atoms creates a private table.
func NewPipeline(atoms *atom.Table, store *dom.Store, opts Options) *Pipeline {
	if atoms == nil {
		atoms = atom.NewTable()
	}
	in := html5.NewInput()
	return &Pipeline{
		atoms:   atoms,
		input:   in,
		tk:      html5.NewTokenizer(atoms, in, opts.Tokenizer),
		builder: tree.NewBuilder(atoms, opts.Builder),
		store:   store,
		handle:  store.Create(),
	}
}

// PushChunk feeds one byte chunk of the document, advancing the
// pipeline as far as the bytes allow and committing any resulting
// patches.
func (p *Pipeline) PushChunk(chunk []byte) error {
	p.input.PushChunk(chunk)
	p.tk.PushInput()
	return p.pump()
}

// Finish closes the byte stream: pending text is finalized, the Eof
// token is processed, and the final patch batch is committed.
func (p *Pipeline) Finish() error {
	if p.done {
		return nil
	}
	p.tk.Finish()
	if err := p.pump(); err != nil {
		return err
	}
	p.done = true
	return nil
}

// pump drains ready tokens into the builder and commits the emitted
// patches as one version step.
func (p *Pipeline) pump() error {
	for {
		batch := p.tk.NextBatch()
		if len(batch.Tokens) == 0 {
			return nil
		}
		if err := p.builder.Feed(batch); err != nil {
			return err
		}
		patches := p.builder.NextBatch()
		if len(patches) == 0 {
			continue
		}
		if err := p.store.Apply(p.handle, p.version, p.version+1, patches); err != nil {
			return err
		}
		p.version++
	}
}

// Document returns the committed document tree. Before any patch has
// been committed this reports the store's missing-root error.
func (p *Pipeline) Document() (*dom.Node, error) {
	return p.store.GetCurrent(p.handle)
}

// Materialize returns an independently-owned deep copy of the
// committed document, suitable for diffing.
func (p *Pipeline) Materialize() (*dom.Node, error) {
	return p.store.Materialize(p.handle)
}

// Handle exposes the document's store handle for integrators that
// apply further patch batches (e.g. from Diff).
func (p *Pipeline) Handle() dom.Handle { return p.handle }

// Version is the document's committed version.
func (p *Pipeline) Version() uint64 { return p.version }

// Atoms returns the atom table this pipeline interns through.
func (p *Pipeline) Atoms() *atom.Table { return p.atoms }

// TokenizerErrors returns the tokenizer's bounded parse-error log.
func (p *Pipeline) TokenizerErrors() *html5.ErrorLog { return p.tk.Errors() }

// BuilderErrors returns the tree builder's bounded parse-error log.
func (p *Pipeline) BuilderErrors() *tree.ErrorLog { return p.builder.Errors() }

// Quirks reports whether the document ended up in quirks mode.
func (p *Pipeline) Quirks() bool { return p.builder.Quirks() }

// ParseDocument parses a whole document in one step and returns the
// committed tree.
func ParseDocument(input string) (*dom.Node, error) {
	store := dom.NewStore()
	p := NewPipeline(nil, store, Options{Builder: tree.Options{CoalesceText: true}})
	if err := p.PushChunk([]byte(input)); err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Document()
}
