package backend

import "strings"

// SystemDirective is prepended to every prompt.
const SystemDirective = "You are a coding agent that writes and modifies code per the users request. " +
	"You only output syntactically correct code in the language of the input"

// contentSeparator sits between the instruction and the file content.
const contentSeparator = "\n\n---\n"

// BuildPrompt assembles the full prompt sent to the model:
//
//	<SystemDirective>\n\n<instruction>\n\n---\n<content>
func BuildPrompt(instruction, content string) string {
	return SystemDirective + "\n\n" + instruction + contentSeparator + content
}

// SplitPrompt recovers the instruction and content from a prompt produced
// by BuildPrompt. The first separator after the directive wins, so the
// content may itself contain separators. ok is false for foreign prompts.
func SplitPrompt(prompt string) (instruction, content string, ok bool) {
	rest, found := strings.CutPrefix(prompt, SystemDirective+"\n\n")
	if !found {
		return "", "", false
	}
	return strings.Cut(rest, contentSeparator)
}

// StripFences removes a single markdown code fence wrapping the whole
// reply, such as
//
//	```go
//	package main
//	```
//
// Replies that are not entirely one fenced block are returned unchanged.
func StripFences(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return reply
	}

	open, body, found := strings.Cut(trimmed, "\n")
	if !found || strings.Contains(open[3:], "`") {
		return reply
	}

	body = strings.TrimSuffix(body, "```")
	if strings.Contains(body, "\n```") {
		// More than one fenced block; leave the reply alone
		return reply
	}

	body = strings.TrimSuffix(body, "\n")
	return body + "\n"
}
