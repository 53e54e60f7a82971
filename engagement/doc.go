// Package engagement provides core.EngagementProvider implementations: a
// deterministic mock for tests and local development, plus LLM-backed
// providers in the anthropic and openai subpackages.
//
// The live providers share a reply protocol: the model is instructed to end
// the conversation by emitting CompletionMarker followed by a fenced JSON
// requirement spec. ParseReply splits such replies into the user-visible
// text, the completion signal and the decoded spec.
package engagement
