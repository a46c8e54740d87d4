// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, the two-phase decoding
// of scene files (launch arguments first, then everything that may refer to
// them), reference analysis, and the translation of HCL blocks into the
// format-agnostic config.Model.
//
// A scene file may contain the following top-level blocks:
//
//	package { name = "..." share = "..." }
//	argument "<name>" { description, choices, default }
//	blocks { types, min_count, max_count, anchor, jitter, ... color "<name>" { rgba } }
//	env "<VARIABLE>" { values = [...] append = true }
//	action "<node|include|spawn>" "<id>" { ... }
//
// Expressions inside blocks, env and action blocks are evaluated with the
// variables arg.<name>, path.share and path.models, and the functions
// share(), dirname(), join() and format().
package hcl
