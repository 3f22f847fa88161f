// Package server is the HTTP front end: a small form page, storyboard
// generation, DOCX export, downloads of stored results and a health probe.
//
// Routes:
//
//	GET  /                         embedded form page
//	POST /api/generate             generate a storyboard
//	POST /api/download-docx        render a storyboard as DOCX
//	GET  /api/download/{filename}  fetch a stored result
//	GET  /api/health               liveness and client status
//
// Every response carries an X-Request-ID header. Errors are JSON objects with
// a single "error" field.
package server
