package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/blockscene/internal/modelpipe"
)

// SampleSDF is a minimal converted description with a closing model tag.
const SampleSDF = `<?xml version="1.0" ?>
<sdf version="1.7">
  <model name="block">
    <link name="base_link"/>
  </model>
</sdf>
`

// FakeToolchain is an in-memory modelpipe.Toolchain. By default Expand
// echoes its parameters as a tiny URDF document and Convert returns
// SampleSDF.
type FakeToolchain struct {
	ExpandFn  func(template string, params []modelpipe.Param) (string, error)
	ConvertFn func(path string) (string, error)

	mu       sync.Mutex
	expanded []string
	convert  []string
}

// Expand implements modelpipe.Toolchain.
func (f *FakeToolchain) Expand(_ context.Context, template string, params []modelpipe.Param) (string, error) {
	f.mu.Lock()
	f.expanded = append(f.expanded, template)
	f.mu.Unlock()

	if f.ExpandFn != nil {
		return f.ExpandFn(template, params)
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("<robot template=%q params=%q/>\n", template, strings.Join(parts, " ")), nil
}

// Convert implements modelpipe.Toolchain.
func (f *FakeToolchain) Convert(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	f.convert = append(f.convert, path)
	f.mu.Unlock()

	if f.ConvertFn != nil {
		return f.ConvertFn(path)
	}
	return SampleSDF, nil
}

// ExpandCalls returns the templates passed to Expand, in call order.
func (f *FakeToolchain) ExpandCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.expanded...)
}

// ConvertCalls returns the paths passed to Convert, in call order.
func (f *FakeToolchain) ConvertCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.convert...)
}
