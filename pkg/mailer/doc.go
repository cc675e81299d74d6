// Package mailer renders markdown email templates and hands the result to a
// delivery provider.
//
// A template is a markdown file with optional YAML front matter:
//
//	---
//	subject: New application for {{.JobTitle}}
//	---
//	Hi {{.PosterName}}, ...
//
// The body is executed as a text/template, converted to HTML with goldmark and
// wrapped in the layout; the executed markdown doubles as the plain-text part.
package mailer
