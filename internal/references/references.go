// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package references keeps the References block of a paper in step with the
// citation markers in its other blocks. The block body is always a pure
// function of the current markers; Sync never touches any other block.
package references

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-drafter/internal/citation"
	"github.com/pdiddy/paper-drafter/internal/metrics"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// DefaultTitle is the title given to a References block created by Sync.
const DefaultTitle = "References"

// Action reports what a synchronisation pass did.
type Action string

const (
	ActionNone    Action = "none"
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionCleared Action = "cleared"
	ActionRemoved Action = "removed"
)

// State is the synchronizer state of a block collection.
type State int

const (
	NoReferencesBlock State = iota
	HasReferencesBlock
)

func (s State) String() string {
	switch s {
	case HasReferencesBlock:
		return "has-references-block"
	default:
		return "no-references-block"
	}
}

// Result is the outcome of one Sync call.
type Result struct {
	// Blocks is the new block collection. It never aliases the input.
	Blocks []types.TextBlock

	// Action is what the pass did to the References block.
	Action Action

	// BlockID identifies the References block that was created, updated,
	// cleared or removed. Empty when Action is ActionNone and no block exists.
	BlockID string

	// References is the list derived from the non-References blocks.
	References []types.Reference
}

// Changed reports whether the pass modified the collection.
func (r Result) Changed() bool {
	return r.Action != ActionNone
}

// Synchronizer reconciles the References block with the citation markers.
// It holds configuration only and is safe for concurrent use.
type Synchronizer struct {
	title  string
	policy types.StalePolicy
	newID  func() string
	logger *zap.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithStalePolicy sets what happens to the References block when no
// markers remain. The default, StaleKeep, leaves the block as it was.
func WithStalePolicy(p types.StalePolicy) Option {
	return func(s *Synchronizer) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithIDGenerator replaces the id generator used for new blocks.
func WithIDGenerator(fn func() string) Option {
	return func(s *Synchronizer) {
		s.newID = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = l
	}
}

// WithTitle sets the title of newly created References blocks.
func WithTitle(title string) Option {
	return func(s *Synchronizer) {
		if title != "" {
			s.title = title
		}
	}
}

// New creates a Synchronizer.
func New(opts ...Option) *Synchronizer {
	s := &Synchronizer{
		title:  DefaultTitle,
		policy: types.StaleKeep,
		newID: func() string {
			return "section-references-" + uuid.NewString()
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsReferencesBlock reports whether b is a References block. Blocks with an
// explicit kind are classified by kind alone; legacy blocks without a kind
// fall back to a case-insensitive "reference" match on the title.
func IsReferencesBlock(b types.TextBlock) bool {
	switch b.Kind {
	case types.KindReferences:
		return true
	case "":
		return strings.Contains(strings.ToLower(b.Title), "reference")
	default:
		return false
	}
}

// Find returns the index of the References block. When several blocks
// qualify, the first in collection order wins.
func Find(blocks []types.TextBlock) (int, bool) {
	for i, b := range blocks {
		if IsReferencesBlock(b) {
			return i, true
		}
	}
	return -1, false
}

// StateOf classifies a block collection.
func StateOf(blocks []types.TextBlock) State {
	if _, ok := Find(blocks); ok {
		return HasReferencesBlock
	}
	return NoReferencesBlock
}

// Derive returns the reference list of every block except the References
// block.
func Derive(blocks []types.TextBlock) []types.Reference {
	idx, ok := Find(blocks)
	if !ok {
		return citation.DeriveReferenceList(blocks)
	}
	others := make([]types.TextBlock, 0, len(blocks)-1)
	others = append(others, blocks[:idx]...)
	others = append(others, blocks[idx+1:]...)
	return citation.DeriveReferenceList(others)
}

// Sync reconciles the References block with the markers in blocks and
// returns the resulting collection. Calling Sync again on its own output
// is a no-op.
func (s *Synchronizer) Sync(blocks []types.TextBlock) Result {
	out := types.CloneBlocks(blocks)
	refs := Derive(out)
	idx, found := Find(out)

	res := Result{Blocks: out, Action: ActionNone, References: refs}
	if found {
		res.BlockID = out[idx].ID
	}

	switch {
	case !found && len(refs) == 0:
		// Nothing cites anything and there is nothing to maintain.

	case !found:
		b := types.TextBlock{
			ID:          s.newID(),
			Title:       s.title,
			Kind:        types.KindReferences,
			Description: "Academic references and citations",
			Body:        citation.RenderReferenceList(refs),
		}
		res.Blocks = append(res.Blocks, b)
		res.Action = ActionCreated
		res.BlockID = b.ID

	case len(refs) > 0:
		body := citation.RenderReferenceList(refs)
		if out[idx].Body != body {
			out[idx].Body = body
			res.Action = ActionUpdated
		}

	default:
		res = s.applyStalePolicy(res, idx)
	}

	metrics.RecordSync(string(res.Action))
	if res.Changed() {
		s.logger.Debug("references synchronised",
			zap.String("action", string(res.Action)),
			zap.String("block_id", res.BlockID),
			zap.Int("references", len(refs)))
	}
	return res
}

// applyStalePolicy handles an existing References block once no markers
// remain anywhere else.
func (s *Synchronizer) applyStalePolicy(res Result, idx int) Result {
	switch s.policy {
	case types.StaleClear:
		if res.Blocks[idx].Body != citation.Placeholder {
			res.Blocks[idx].Body = citation.Placeholder
			res.Action = ActionCleared
		}
	case types.StaleRemove:
		res.Blocks = append(res.Blocks[:idx], res.Blocks[idx+1:]...)
		res.Action = ActionRemoved
	}
	return res
}
