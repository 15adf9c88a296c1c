// Package http exposes the research workflow over HTTP: session
// lifecycle, step execution, investment profiles, and health. Handlers
// bind and validate requests with chi/render and go-playground
// validator, and answer failures as RFC 7807 problems.
package http
