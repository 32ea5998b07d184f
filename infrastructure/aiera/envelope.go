package aiera

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CitationPrompt asks the model to cite the upstream sources inline.
const CitationPrompt = "IMPORTANT: when referencing this data in your response, ALWAYS include inline citations by using the information found in the `citation_information` block, along with an incrementing counter. Render these citations as markdown (padded with a leading space for readability), like this: [[1]](url \"title\")\n\n" +
	"Where possible, include inline citations for every fact, figure, or quote that was sourced, directly or indirectly, from a transcript by using transcript-level citations (as opposed to event-level citations).\n\n" +
	"If multiple citations are relevant, include them all. You can reference the same citation multiple times if needed.\n\n" +
	"However, if the user has requested a response as JSON, you do NOT need to include any citations."

const baseInstructions = `This data is provided for institutional finance professionals. Responses should be composed of accurate, concise, and well-structured financial insights.
The current date is **%s**, and the current time is **%s**.
Relative dates and times (e.g., "last 3 months" or "next 3 months" or "later today") should be calculated based on this date.
All dates and times are in eastern time (ET) unless specifically stated otherwise.

## Usage Hints:
- Questions about guidance will always require the transcript from at least one earnings event, and often will require multiple earnings transcripts from the last year in order to provide sufficient context.
- Answers to guidance questions should focus on management commentary, and avoid analyst commentary unless specifically asked for.

Some endpoints may require specific permissions based on a subscription plan. If access is denied, the user should talk to their Aiera representative about gaining access.
`

// Instructions returns the base instructions for the given time, followed by
// the citation prompt and any additional entries.
func Instructions(now time.Time, additional ...string) []string {
	out := make([]string, 0, 2+len(additional))
	out = append(out,
		fmt.Sprintf(baseInstructions, now.Format("2006-01-02"), now.Format("03:04 PM")),
		CitationPrompt,
	)
	return append(out, additional...)
}

type envelope struct {
	Instructions []string        `json:"instructions"`
	Response     json.RawMessage `json:"response"`
}

// Wrap places body inside the instructions envelope. A body that is a JSON
// object already carrying "instructions" is returned unchanged.
func Wrap(body json.RawMessage, now time.Time, additional ...string) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = json.RawMessage("null")
	}
	if hasInstructions(body) {
		return body, nil
	}
	out, err := json.Marshal(envelope{
		Instructions: Instructions(now, additional...),
		Response:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return out, nil
}

func hasInstructions(body json.RawMessage) bool {
	if len(body) == 0 || body[0] != '{' {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	_, ok := probe["instructions"]
	return ok
}
