package services

// Action selects how extracted text is rewritten.
type Action string

const (
	ActionNone                Action = ""
	ActionSimplify            Action = "simplify"
	ActionSummarize           Action = "summarize"
	ActionExtractInstructions Action = "extract-instructions"
	ActionAnalyze             Action = "analyze"
)

// --- Text Processing Prompts ---
const (
	SimplifyPrompt            = "Please simplify the following text, making it easier to understand. Respond only with the simplified text, no extra explanations or formatting:"
	SummarizePrompt           = "Please summarize the following text concisely. Respond only with the summary, no extra explanations or formatting:"
	ExtractInstructionsPrompt = "From the following text, extract and list all step-by-step instructions, commands, or procedures. Present them clearly, perhaps using bullet points or numbered steps. Respond only with the extracted instructions:"
	AnalyzePrompt             = "Analyze the following text and provide a brief overview, identifying the main topics and key points. Respond only with the analysis:"
)

var actionPrompts = map[Action]string{
	ActionSimplify:            SimplifyPrompt,
	ActionSummarize:           SummarizePrompt,
	ActionExtractInstructions: ExtractInstructionsPrompt,
	ActionAnalyze:             AnalyzePrompt,
}

// ParseAction maps a client-supplied tag to an Action. Unknown tags become
// ActionNone, which returns the extracted text unchanged.
func ParseAction(s string) Action {
	a := Action(s)
	if _, ok := actionPrompts[a]; ok {
		return a
	}
	return ActionNone
}

// UsesAI reports whether the action calls the language model.
func (a Action) UsesAI() bool {
	_, ok := actionPrompts[a]
	return ok
}

// Prompt builds the model prompt for text. It returns false for actions that
// do not use the model.
func (a Action) Prompt(text string) (string, bool) {
	template, ok := actionPrompts[a]
	if !ok {
		return "", false
	}
	return template + "\n\n" + text, true
}
