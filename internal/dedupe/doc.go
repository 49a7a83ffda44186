// Package dedupe detects catalog entries that collide with an import
// task's resolved metadata and applies a resolution policy before the
// task is allowed to apply.
package dedupe
