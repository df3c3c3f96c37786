// Package resolve turns an edit script and its directives into per-line
// verdicts.
package resolve

import (
	"fmt"
	"strings"

	"github.com/sokinpui/sift/internal/model"
)

// Resolve applies the default policy and directive precedence to every op of
// the script and returns one Decision per (variant, lineIndex) of both
// snapshots, in script order, plus any conflict warnings. Directives arrive
// attached to the hunks they overlap; a directive whose scope touches no
// changed line cannot alter a verdict and is ignored.
//
// Defaults: Delete -> Remove, Insert -> Keep, Equal and Move -> Keep on both
// sides. A Substitute keeps the target line; the source line is kept when the
// two texts are token-similar (a rename edits a line, it does not remove it)
// and removed otherwise. Blank-line and comment-spacer churn is Filtered
// regardless of the diff's proposal, unless a must-stay directive pins it.
func Resolve(ops []model.EditOp, hunks []model.Hunk) ([]model.Decision, []string) {
	var warnings []string
	srcRule := directiveIndex(hunkDirectives(hunks, model.VariantSource), model.VariantSource, &warnings)
	tgtRule := directiveIndex(hunkDirectives(hunks, model.VariantTarget), model.VariantTarget, &warnings)

	var decisions []model.Decision
	emit := func(variant model.Variant, index int, verdict model.Verdict, provenance string) {
		decisions = append(decisions, model.Decision{
			Variant:    variant,
			LineIndex:  index,
			Verdict:    verdict.String(),
			Provenance: provenance,
		})
	}

	for _, op := range ops {
		switch op.Kind {
		case model.OpEqual:
			emit(model.VariantSource, op.SourceIndex, model.Keep, "unchanged")
			emit(model.VariantTarget, op.TargetIndex, model.Keep, "unchanged")

		case model.OpMove:
			emit(model.VariantSource, op.SourceIndex, model.Keep,
				fmt.Sprintf("moved to target line %d", op.TargetIndex))
			emit(model.VariantTarget, op.TargetIndex, model.Keep,
				fmt.Sprintf("moved from source line %d", op.SourceIndex))

		case model.OpDelete:
			v, p := resolveDelete(op.SourceLine, srcRule[op.SourceIndex])
			emit(model.VariantSource, op.SourceIndex, v, p)

		case model.OpInsert:
			v, p := resolveInsert(op.TargetLine, tgtRule[op.TargetIndex])
			emit(model.VariantTarget, op.TargetIndex, v, p)

		case model.OpSubstitute:
			sv, sp, tv, tp := resolveSubstitute(op, srcRule[op.SourceIndex], tgtRule[op.TargetIndex])
			emit(model.VariantSource, op.SourceIndex, sv, sp)
			emit(model.VariantTarget, op.TargetIndex, tv, tp)
		}
	}
	return decisions, warnings
}

func resolveDelete(line model.LogicalLine, d *model.Directive) (model.Verdict, string) {
	if d != nil {
		switch d.Kind {
		case model.MustStay:
			return model.Keep, fmt.Sprintf("directive %s overrides delete (%q)", d.Kind, d.Text)
		case model.MustFilter:
			return model.Filtered, fmt.Sprintf("directive %s (%q)", d.Kind, d.Text)
		case model.MayRemove:
			return model.Remove, fmt.Sprintf("delete licensed by directive %s (%q)", d.Kind, d.Text)
		}
	}
	if line.IsBlank {
		return model.Filtered, "blank-line churn"
	}
	return model.Remove, "deleted (default policy)"
}

func resolveInsert(line model.LogicalLine, d *model.Directive) (model.Verdict, string) {
	if d != nil {
		switch d.Kind {
		case model.MustStay:
			return model.Keep, fmt.Sprintf("directive %s (%q)", d.Kind, d.Text)
		case model.MustFilter:
			return model.Filtered, fmt.Sprintf("directive %s (%q)", d.Kind, d.Text)
		case model.MayRemove:
			// May-remove only licenses a removal the diff proposed; an insert
			// was proposed as kept, so the directive has no effect here.
			return model.Keep, fmt.Sprintf("inserted; directive %s not applicable", d.Kind)
		}
	}
	if line.IsBlank {
		return model.Filtered, "blank-line churn"
	}
	return model.Keep, "inserted (default policy)"
}

func resolveSubstitute(op model.EditOp, sd, td *model.Directive) (model.Verdict, string, model.Verdict, string) {
	sv, tv := model.Remove, model.Keep
	sp, tp := "superseded by substitution", "substituted (default policy)"

	switch {
	case normalize(op.SourceLine.Raw) == normalize(op.TargetLine.Raw):
		sv, sp = model.Filtered, "whitespace-only change"
	case similar(op.SourceLine.Raw, op.TargetLine.Raw):
		sv, sp = model.Keep, "revised in place, not removed"
	}

	if sd != nil {
		switch sd.Kind {
		case model.MustStay:
			sv, sp = model.Keep, fmt.Sprintf("directive %s (%q)", sd.Kind, sd.Text)
		case model.MustFilter:
			sv, sp = model.Filtered, fmt.Sprintf("directive %s (%q)", sd.Kind, sd.Text)
		case model.MayRemove:
			if sv == model.Remove {
				sp = fmt.Sprintf("removal licensed by directive %s (%q)", sd.Kind, sd.Text)
			}
		}
	}
	if td != nil {
		switch td.Kind {
		case model.MustStay:
			tv, tp = model.Keep, fmt.Sprintf("directive %s (%q)", td.Kind, td.Text)
		case model.MustFilter:
			tv, tp = model.Filtered, fmt.Sprintf("directive %s (%q)", td.Kind, td.Text)
		}
	}
	return sv, sp, tv, tp
}

// hunkDirectives collects one side's directives across all hunks. A directive
// spanning two hunks is attached to both, so the marker line dedupes.
func hunkDirectives(hunks []model.Hunk, variant model.Variant) []model.Directive {
	seen := make(map[int]bool)
	var out []model.Directive
	for _, h := range hunks {
		dirs := h.SourceDirectives
		if variant == model.VariantTarget {
			dirs = h.TargetDirectives
		}
		for _, d := range dirs {
			if seen[d.MarkerIndex] {
				continue
			}
			seen[d.MarkerIndex] = true
			out = append(out, d)
		}
	}
	return out
}

// directiveIndex maps each scoped line to its winning directive. When several
// directives of different kinds scope the same line the precedence order
// must-stay > must-filter > may-remove decides, and the conflict is recorded
// as a warning rather than an error.
func directiveIndex(dirs []model.Directive, variant model.Variant, warnings *[]string) map[int]*model.Directive {
	out := make(map[int]*model.Directive)
	for i := range dirs {
		d := &dirs[i]
		for line := d.ScopeStart; line <= d.ScopeEnd; line++ {
			cur, ok := out[line]
			if !ok {
				out[line] = d
				continue
			}
			if cur.Kind != d.Kind {
				*warnings = append(*warnings, fmt.Sprintf(
					"conflicting directives on %s line %d: %s vs %s, resolved by precedence",
					variant, line, cur.Kind, d.Kind))
			}
			if d.Kind.Precedence() > cur.Kind.Precedence() {
				out[line] = d
			}
		}
	}
	return out
}

// normalize collapses internal whitespace so formatting-only edits compare
// equal.
func normalize(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// similar reports whether two lines share at least half of their tokens,
// which is how a rename is told apart from a replacement.
func similar(a, b string) bool {
	fa, fb := strings.Fields(a), strings.Fields(b)
	if len(fa) == 0 || len(fb) == 0 {
		return false
	}
	counts := make(map[string]int, len(fa))
	for _, f := range fa {
		counts[f]++
	}
	shared := 0
	for _, f := range fb {
		if counts[f] > 0 {
			counts[f]--
			shared++
		}
	}
	longest := max(len(fa), len(fb))
	return shared*2 >= longest
}
