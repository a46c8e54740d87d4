package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// traversalKey generates a stable, canonical string for a traversal, e.g.
// arg.ur_type.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// bodyExpressions returns every attribute expression of body and its nested
// blocks. Attributes are ordered by source position so diagnostics come out
// in file order.
func bodyExpressions(body *hclsyntax.Body) []hclsyntax.Expression {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	exprs := make([]hclsyntax.Expression, 0, len(attrs))
	for _, attr := range attrs {
		exprs = append(exprs, attr.Expr)
	}
	for _, block := range body.Blocks {
		exprs = append(exprs, bodyExpressions(block.Body)...)
	}
	return exprs
}

// argumentName extracts <name> from arg.<name> or arg["<name>"].
func argumentName(t hcl.Traversal) (string, bool) {
	if len(t) < 2 {
		return "", false
	}
	switch step := t[1].(type) {
	case hcl.TraverseAttr:
		return step.Name, true
	case hcl.TraverseIndex:
		if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
			return step.Key.AsString(), true
		}
	}
	return "", false
}

// analyzeReferences checks the launch arguments and functions a block body
// refers to before anything in it is evaluated. It returns the sorted,
// unique names of the launch arguments the body uses.
func analyzeReferences(body *hclsyntax.Body, declared map[string]bool, funcs map[string]function.Function) ([]string, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	used := make(map[string]struct{})
	reported := make(map[string]struct{})

	for _, expr := range bodyExpressions(body) {
		for _, traversal := range expr.Variables() {
			if traversal.RootName() != argRoot {
				continue
			}
			name, ok := argumentName(traversal)
			if !ok {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid launch argument reference",
					Detail:   "Launch arguments must be referenced by name, e.g. arg.ur_type.",
					Subject:  traversal.SourceRange().Ptr(),
				})
				continue
			}
			if !declared[name] {
				key := traversalKey(traversal)
				if _, seen := reported[key]; !seen {
					reported[key] = struct{}{}
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Undeclared launch argument",
						Detail:   fmt.Sprintf("The launch argument %q is referenced but no argument %q block declares it.", name, name),
						Subject:  traversal.SourceRange().Ptr(),
					})
				}
				continue
			}
			used[name] = struct{}{}
		}

		diags = append(diags, hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
			call, ok := node.(*hclsyntax.FunctionCallExpr)
			if !ok {
				return nil
			}
			if _, known := funcs[call.Name]; known {
				return nil
			}
			return hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Call to unknown function",
				Detail:   fmt.Sprintf("There is no function named %q.", call.Name),
				Subject:  call.NameRange.Ptr(),
			}}
		})...)
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, diags
}
