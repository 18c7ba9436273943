// Package upload implements chunked upload sessions for large files.
package upload
