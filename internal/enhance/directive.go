// Package enhance rewrites note text through a text-generation model. It
// holds the directive-to-prompt mapping, the HTTP gateway that serves it,
// and the client used by editing surfaces to call that gateway.
package enhance

// Directive selects how the text is rewritten.
type Directive string

const (
	Grammar      Directive = "grammar"
	Elaborate    Directive = "elaborate"
	Concise      Directive = "concise"
	Professional Directive = "professional"
	General      Directive = "general"
)

// Directives lists the closed set in menu order.
var Directives = []Directive{Grammar, Elaborate, Concise, Professional, General}

// PlainTextConstraint is appended to every prompt. The result is rendered
// as literal text, so markup in the output would show up verbatim.
const PlainTextConstraint = "Return plain text only. Do not use markdown formatting, bullet points, or any special text formatting. Provide the enhanced text directly without any additional explanations or headers."

// Valid reports whether d is one of the named directives.
func (d Directive) Valid() bool {
	for _, known := range Directives {
		if d == known {
			return true
		}
	}
	return false
}

// Label is the human-readable menu entry.
func (d Directive) Label() string {
	switch d {
	case Grammar:
		return "Fix Grammar"
	case Elaborate:
		return "Elaborate"
	case Concise:
		return "Make Concise"
	case Professional:
		return "Make Professional"
	default:
		return "General Enhancement"
	}
}

func instruction(d Directive) string {
	switch d {
	case Grammar:
		return "Improve the grammar and spelling of the following text without changing its meaning: "
	case Elaborate:
		return "Elaborate on the following text to make it more detailed and informative while maintaining its original meaning: "
	case Concise:
		return "Make the following text more concise while preserving its key points: "
	case Professional:
		return "Rewrite the following text in a more professional tone: "
	default:
		return "Enhance the following text to improve its clarity and readability: "
	}
}

// BuildPrompt maps a directive and source text to the model prompt.
// Unrecognised directives get the general-improvement framing.
func BuildPrompt(content string, d Directive) string {
	return instruction(d) + content + " " + PlainTextConstraint
}

// BuildSummaryPrompt frames content for summarization, with the same
// plain-text constraint as the enhancement prompts.
func BuildSummaryPrompt(content string) string {
	return "Summarize the following note in a short paragraph that keeps its key points and facts: " +
		content + " " + PlainTextConstraint
}
