// Package render turns a storyboard into documents people read: plain text,
// Markdown, HTML, styled terminal output, indented JSON and DOCX.
package render
