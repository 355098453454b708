// Package markdown renders wiki page sources: front matter is split off,
// map directives are expanded into the page output and the rest goes through
// goldmark.
package markdown
