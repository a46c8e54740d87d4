package hcl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/blockscene/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const (
	argRoot  = "arg"
	pathRoot = "path"
)

// AmentShareResolver finds <prefix>/share/<pkg> under the prefixes listed
// in AMENT_PREFIX_PATH, first match wins.
func AmentShareResolver(pkg string) (string, error) {
	for _, prefix := range filepath.SplitList(os.Getenv("AMENT_PREFIX_PATH")) {
		if prefix == "" {
			continue
		}
		dir := filepath.Join(prefix, "share", pkg)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("package %q not found in AMENT_PREFIX_PATH", pkg)
}

// sceneFunctions returns the functions available to scene expressions.
func sceneFunctions(share config.ShareResolver) map[string]function.Function {
	return map[string]function.Function{
		"share":   shareFunc(share),
		"dirname": dirnameFunc,
		"join":    stdlib.JoinFunc,
		"format":  stdlib.FormatFunc,
	}
}

func shareFunc(resolve config.ShareResolver) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the share directory of an installed package.",
		Params: []function.Parameter{
			{Name: "package", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			dir, err := resolve(args[0].AsString())
			if err != nil {
				return cty.UnknownVal(cty.String), err
			}
			return cty.StringVal(dir), nil
		},
	})
}

var dirnameFunc = function.New(&function.Spec{
	Description: "Returns all but the last element of a path.",
	Params: []function.Parameter{
		{Name: "path", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(filepath.Dir(args[0].AsString())), nil
	},
})

// sceneContext builds the evaluation context of the second decoding phase.
func sceneContext(args map[string]string, shareDir, modelsDir string, funcs map[string]function.Function) *hcl.EvalContext {
	argObj := cty.EmptyObjectVal
	if len(args) > 0 {
		vals := make(map[string]cty.Value, len(args))
		for name, v := range args {
			vals[name] = cty.StringVal(v)
		}
		argObj = cty.ObjectVal(vals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			argRoot: argObj,
			pathRoot: cty.ObjectVal(map[string]cty.Value{
				"share":  cty.StringVal(shareDir),
				"models": cty.StringVal(modelsDir),
			}),
		},
		Functions: funcs,
	}
}
