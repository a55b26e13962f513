// Package deps reports whether the external tools and directories vidscript
// needs are available.
package deps
