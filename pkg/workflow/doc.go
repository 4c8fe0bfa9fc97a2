// Package workflow manages the prompts sent to the text-generation provider.
//
// # Embedded Defaults
//
// Default prompts are embedded at compile time from the defaults/ directory:
//   - defaults/system.md   - System instruction for every optimize call
//   - defaults/optimize.md - Resume rewrite template
//
// The rewrite template is a text/template with two fields, .ResumeContent
// and .JobDescription. Both are inserted verbatim.
//
// # Runtime Customization
//
// Users can customize the rewrite template by creating
// .aistudio/workflows/optimize.md (or pointing text.prompt_path at any
// file). Run 'aistudio prompt init' to write the default there and
// 'aistudio prompt init --reset' to restore it.
package workflow
