// Package diff computes a line-level edit script between two snapshots.
package diff

import (
	"context"
	"strings"

	"github.com/sokinpui/sift/internal/model"
)

// moveWindow bounds how far apart (in script positions) a delete and an
// insert of the same text may sit and still count as one relocation.
const moveWindow = 16

// Diff aligns the two snapshots with a longest-common-subsequence table over
// exact raw-text equality and returns the edit script. The script covers
// every line of both snapshots exactly once: unchanged lines appear as Equal
// ops, changed regions as Delete/Insert runs that are then paired into
// Substitute and Move ops.
//
// Ties between equally minimal scripts are broken by anchoring the
// earliest-indexed common lines, which keeps the alignment stable when only
// comments change. Runs in O(n*m) time and space.
func Diff(ctx context.Context, source, target *model.FileSnapshot) ([]model.EditOp, error) {
	n, m := source.Len(), target.Len()

	// table[i][j] is the LCS length of source[i:] and target[j:]. Suffix form
	// lets the forward walk below take the earliest possible anchors.
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := m - 1; j >= 0; j-- {
			if source.Lines[i].Raw == target.Lines[j].Raw {
				table[i][j] = table[i+1][j+1] + 1
			} else if table[i+1][j] >= table[i][j+1] {
				table[i][j] = table[i+1][j]
			} else {
				table[i][j] = table[i][j+1]
			}
		}
	}

	var raw []model.EditOp
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && source.Lines[i].Raw == target.Lines[j].Raw:
			raw = append(raw, model.EditOp{
				Kind:        model.OpEqual,
				SourceIndex: i,
				TargetIndex: j,
				SourceLine:  source.Lines[i],
				TargetLine:  target.Lines[j],
			})
			i++
			j++
		case j == m || (i < n && table[i+1][j] >= table[i][j+1]):
			raw = append(raw, model.EditOp{
				Kind:        model.OpDelete,
				SourceIndex: i,
				TargetIndex: -1,
				SourceLine:  source.Lines[i],
			})
			i++
		default:
			raw = append(raw, model.EditOp{
				Kind:        model.OpInsert,
				SourceIndex: -1,
				TargetIndex: j,
				TargetLine:  target.Lines[j],
			})
			j++
		}
	}

	return assemble(raw), nil
}

// assemble turns the raw Equal/Delete/Insert script into the final one:
// relocated lines become Move ops and the remaining delete/insert runs of
// each changed region are paired positionally into Substitutes.
func assemble(raw []model.EditOp) []model.EditOp {
	partner := movePairs(raw)

	var ops []model.EditOp
	var dels, ins []model.EditOp
	flush := func() {
		ops = append(ops, substitutes(dels, ins)...)
		dels, ins = nil, nil
	}

	for pos, op := range raw {
		switch op.Kind {
		case model.OpEqual:
			flush()
			ops = append(ops, op)
		case model.OpDelete:
			if insPos, ok := partner[pos]; ok {
				flush()
				in := raw[insPos]
				ops = append(ops, model.EditOp{
					Kind:        model.OpMove,
					SourceIndex: op.SourceIndex,
					TargetIndex: in.TargetIndex,
					SourceLine:  op.SourceLine,
					TargetLine:  in.TargetLine,
				})
				continue
			}
			dels = append(dels, op)
		case model.OpInsert:
			if _, ok := partner[pos]; ok {
				// Emitted as a Move at its delete's position.
				continue
			}
			ins = append(ins, op)
		}
	}
	flush()
	return ops
}

// movePairs finds delete/insert pairs of byte-identical non-comment content
// close enough to be one relocation. The returned map links both script
// positions of each pair.
func movePairs(raw []model.EditOp) map[int]int {
	partner := make(map[int]int)
	for pos, op := range raw {
		if op.Kind != model.OpDelete || !movable(op.SourceLine) {
			continue
		}
		lo := max(0, pos-moveWindow)
		hi := min(len(raw)-1, pos+moveWindow)
		for k := lo; k <= hi; k++ {
			in := raw[k]
			if in.Kind != model.OpInsert || in.TargetLine.Raw != op.SourceLine.Raw {
				continue
			}
			if _, taken := partner[k]; taken {
				continue
			}
			partner[pos] = k
			partner[k] = pos
			break
		}
	}
	return partner
}

func movable(line model.LogicalLine) bool {
	return !line.IsComment && strings.TrimSpace(line.Raw) != ""
}

// substitutes pairs the delete and insert runs of one changed region
// positionally; whatever is left over stays a plain Delete or Insert.
func substitutes(dels, ins []model.EditOp) []model.EditOp {
	if len(dels) == 0 && len(ins) == 0 {
		return nil
	}

	var ops []model.EditOp
	paired := min(len(dels), len(ins))
	for k := 0; k < paired; k++ {
		ops = append(ops, model.EditOp{
			Kind:        model.OpSubstitute,
			SourceIndex: dels[k].SourceIndex,
			TargetIndex: ins[k].TargetIndex,
			SourceLine:  dels[k].SourceLine,
			TargetLine:  ins[k].TargetLine,
		})
	}
	ops = append(ops, dels[paired:]...)
	ops = append(ops, ins[paired:]...)
	return ops
}

// Hunks groups the contiguous non-equal ops of a script and attaches the
// directives whose scope overlaps each hunk's span on either side.
func Hunks(ops []model.EditOp, srcDirs, tgtDirs []model.Directive) []model.Hunk {
	var hunks []model.Hunk
	var run []model.EditOp
	flush := func() {
		if len(run) == 0 {
			return
		}
		hunks = append(hunks, model.Hunk{
			Ops:              run,
			SourceDirectives: overlapping(run, srcDirs, sourceSide),
			TargetDirectives: overlapping(run, tgtDirs, targetSide),
		})
		run = nil
	}
	for _, op := range ops {
		if op.Kind == model.OpEqual {
			flush()
			continue
		}
		run = append(run, op)
	}
	flush()
	return hunks
}

type side int

const (
	sourceSide side = iota
	targetSide
)

func overlapping(run []model.EditOp, dirs []model.Directive, s side) []model.Directive {
	var out []model.Directive
	for _, d := range dirs {
		for _, op := range run {
			index := op.SourceIndex
			if s == targetSide {
				index = op.TargetIndex
			}
			if index >= 0 && d.Scopes(index) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
