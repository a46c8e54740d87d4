package hcl

import (
	"context"
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/blockscene/internal/config"
	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/fsutil"
	"github.com/zclconf/go-cty/cty/function"
)

// DefaultSceneName is the file name reported for the built-in scene.
const DefaultSceneName = "desk.hcl"

//go:embed scenes/desk.hcl
var defaultScene []byte

// DefaultScene returns the source of the built-in desk scene.
func DefaultScene() []byte {
	return append([]byte(nil), defaultScene...)
}

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL scene loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// sceneFile is a parsed file together with its first-phase decode result.
type sceneFile struct {
	name string
	file *hcl.File
	root fileRoot
}

// Load reads every .hcl file found under paths, or the built-in scene when
// no path is given, and translates the result into a config.Model.
func (l *Loader) Load(ctx context.Context, opts config.LoadOptions, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	if len(paths) == 0 {
		logger.Debug("No scene paths given, using the built-in scene.", "scene", DefaultSceneName)
		return l.LoadSource(ctx, opts, DefaultSceneName, defaultScene)
	}

	hclFiles, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl scene files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	files := make([]*sceneFile, 0, len(hclFiles))
	for _, name := range hclFiles {
		f, diags := parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", name, diags)
		}
		files = append(files, &sceneFile{name: name, file: f})
	}
	return l.decode(ctx, opts, files)
}

// LoadSource loads a scene held in memory. filename is only used in
// diagnostics.
func (l *Loader) LoadSource(ctx context.Context, opts config.LoadOptions, filename string, src []byte) (*config.Model, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(ctx, opts, []*sceneFile{{name: filename, file: f}})
}

func (l *Loader) decode(ctx context.Context, opts config.LoadOptions, files []*sceneFile) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	resolve := opts.Share
	if resolve == nil {
		resolve = AmentShareResolver
	}
	funcs := sceneFunctions(resolve)

	// Phase 1: package identity and launch arguments. Only functions are
	// available here; nothing may depend on an argument value yet.
	model := &config.Model{}
	var pkg *packageBlock
	for _, sf := range files {
		diags := gohcl.DecodeBody(sf.file.Body, &hcl.EvalContext{Functions: funcs}, &sf.root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", sf.name, diags)
		}
		if sf.root.Package != nil {
			if pkg != nil {
				return nil, fmt.Errorf("duplicate package block in %s: only one package block is allowed per scene", sf.name)
			}
			pkg = sf.root.Package
		}
		for _, a := range sf.root.Arguments {
			model.Arguments = append(model.Arguments, translateArgument(a))
		}
	}
	if pkg == nil {
		return nil, fmt.Errorf("scene must declare a package block")
	}

	resolved, err := config.ResolveArguments(model.Arguments, opts.Overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve launch arguments: %w", err)
	}
	model.Resolved = resolved
	logger.Debug("Launch arguments resolved.", "arguments", resolved)

	shareDir, err := packageShare(pkg, opts.ShareDir, resolve)
	if err != nil {
		return nil, err
	}
	model.Package = config.Package{
		Name:      pkg.Name,
		ShareDir:  shareDir,
		ModelsDir: filepath.Join(shareDir, "models"),
	}

	// References are checked against the declared arguments before any
	// expression is evaluated.
	declared := make(map[string]bool, len(model.Arguments))
	for _, a := range model.Arguments {
		declared[a.Name] = true
	}
	uses, diags := collectUses(files, declared, funcs)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid references in scene: %w", diags)
	}

	// Phase 2: everything else, evaluated against the resolved arguments.
	evalCtx := sceneContext(resolved, shareDir, model.Package.ModelsDir, funcs)
	for _, sf := range files {
		var body sceneBody
		diags := gohcl.DecodeBody(sf.root.Remain, evalCtx, &body)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", sf.name, diags)
		}
		if err := mergeScene(model, &body, uses); err != nil {
			return nil, fmt.Errorf("%s: %w", sf.name, err)
		}
	}

	var blocks int
	if model.Blocks != nil {
		blocks = len(model.Blocks.Catalog)
	}
	logger.Debug("HCL loading complete.",
		"package", model.Package.Name,
		"share", model.Package.ShareDir,
		"arguments", len(model.Arguments),
		"actions", len(model.Actions),
		"block_types", blocks,
	)
	return model, nil
}

// packageShare picks the share directory: an explicit override first, then
// the package block's share attribute, then the resolver.
func packageShare(pkg *packageBlock, override string, resolve config.ShareResolver) (string, error) {
	if override != "" {
		return override, nil
	}
	if pkg.Share != "" {
		return pkg.Share, nil
	}
	dir, err := resolve(pkg.Name)
	if err != nil {
		return "", fmt.Errorf("failed to locate share directory of package %q: %w", pkg.Name, err)
	}
	return dir, nil
}

// collectUses analyzes the references of every env, action and blocks
// block, keyed by the id of the action the block becomes.
func collectUses(files []*sceneFile, declared map[string]bool, funcs map[string]function.Function) (map[string][]string, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	uses := make(map[string][]string)
	for _, sf := range files {
		body, ok := sf.file.Body.(*hclsyntax.Body)
		if !ok {
			continue
		}
		for _, block := range body.Blocks {
			var id string
			switch block.Type {
			case "env":
				if len(block.Labels) == 1 {
					id = EnvActionID(block.Labels[0])
				}
			case "action":
				if len(block.Labels) == 2 {
					id = block.Labels[1]
				}
			case "blocks":
			default:
				continue
			}
			names, blockDiags := analyzeReferences(block.Body, declared, funcs)
			diags = append(diags, blockDiags...)
			if id != "" && len(names) > 0 {
				uses[id] = names
			}
		}
	}
	return uses, diags
}
