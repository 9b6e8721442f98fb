package backend

import "context"

// Echo returns the prompt unchanged. It stands in for a model in tests and
// when AFJ_MOCK_LLM is set.
type Echo struct{}

func (Echo) Name() string { return "echo" }

func (Echo) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return prompt, nil
}

// Simulation keeps the original content and appends the instruction as a
// comment. It is used when no live provider can be configured.
type Simulation struct{}

func (Simulation) Name() string { return "simulation" }

func (Simulation) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	instruction, content, ok := SplitPrompt(prompt)
	if !ok {
		instruction, content = "", prompt
	}
	return "# LLM output simulation\n" + content + "\n# Prompt: " + instruction, nil
}
