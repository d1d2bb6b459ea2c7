package stores

import "github.com/Desarso/intentagent/models"

// SanitizeHistory prepares a stored session log for prompt serialization.
//
//   - assistant_raw entries are dropped; they duplicate the assistant turn
//     that follows them.
//   - when maxMessages > 0 only the last maxMessages entries are kept.
//   - the result never starts with an assistant turn whose question was cut
//     off by the window.
//
// The input slice is not modified.
func SanitizeHistory(msgs []models.Message, maxMessages int) []models.Message {
	if len(msgs) == 0 {
		return []models.Message{}
	}

	visible := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == models.RoleAssistantRaw {
			continue
		}
		visible = append(visible, m)
	}

	if maxMessages > 0 && len(visible) > maxMessages {
		visible = visible[len(visible)-maxMessages:]
		visible = visible[findValidStartIndex(visible):]
	}
	return visible
}

// findValidStartIndex returns the index of the first user message, or
// len(msgs) when there is none.
func findValidStartIndex(msgs []models.Message) int {
	for i, m := range msgs {
		if m.Role == models.RoleUser {
			return i
		}
	}
	return len(msgs)
}
