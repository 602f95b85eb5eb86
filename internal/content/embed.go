// Package content bundles the lesson markdown shipped with the binary.
package content

import "embed"

// BaseDir is the directory lesson content references are resolved under,
// both inside FS and on the local filesystem.
const BaseDir = "lessons"

// FS embeds every bundled lesson under BaseDir.
//
//go:embed lessons
var FS embed.FS
