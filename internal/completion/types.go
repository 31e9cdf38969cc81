// Package completion abstracts the text-generation backends (Gemini-style
// HTTP APIs, Ollama, and an offline rule-based responder) behind a single
// Generator interface, with shared retry and rate-limit plumbing.
package completion

import "context"

// ImagePart is an inline image attachment forwarded to vision-capable
// backends. Data is base64-encoded.
type ImagePart struct {
	MimeType string
	Data     string
}

// Generator produces a completion for a system/user prompt pair. The returned
// text may start with the persona ignore marker; interpreting it is the
// caller's job.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, images []ImagePart) (string, error)
}
