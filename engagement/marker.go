package engagement

import (
	"encoding/json"
	"strings"
)

// CompletionMarker is the sentinel line the live providers instruct their
// model to emit once requirement gathering is finished. The user-visible
// reply precedes the marker; a fenced JSON requirement spec follows it.
const CompletionMarker = "REQUIREMENTS_COMPLETE"

// ParseReply interprets a raw model reply. It strips the marker and the spec
// block from the visible text and decodes the fenced JSON spec that follows
// the marker. Completion is reported only when the marker is followed by a
// decodable spec: a marked reply with a missing or malformed spec reads as
// an ordinary turn, keeping the interview open.
func ParseReply(raw string) (visible string, spec map[string]any, complete bool) {
	idx := strings.Index(raw, CompletionMarker)
	if idx < 0 {
		return strings.TrimSpace(raw), nil, false
	}
	spec = extractJSON(raw[idx+len(CompletionMarker):])
	return strings.TrimSpace(raw[:idx]), spec, spec != nil
}

// extractJSON pulls the first JSON object out of text, preferring a fenced
// code block when one is present.
func extractJSON(text string) map[string]any {
	if start := strings.Index(text, "```"); start >= 0 {
		block := text[start+3:]
		block = strings.TrimPrefix(block, "json")
		if end := strings.Index(block, "```"); end >= 0 {
			block = block[:end]
		}
		text = block
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil
	}
	return out
}
