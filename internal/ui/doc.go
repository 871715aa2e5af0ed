// Package ui provides terminal presentation helpers: the color
// palette, status symbols, table rendering, and the interactive
// session picker. Everything here runs strictly before or after an
// interactive session; nothing in this package touches raw mode.
package ui
