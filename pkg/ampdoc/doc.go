// Package ampdoc turns an AMP email template into a finished document.
//
// The package is deliberately text based: tokens are literal {{name}}
// markers and optional image blocks are removed with a small set of
// pattern rewrites instead of an HTML parser. Every function is pure and
// returns a new string; nothing here performs I/O.
package ampdoc
