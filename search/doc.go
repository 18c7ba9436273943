// Package search answers semantic queries over a file's indexed chunks.
package search
