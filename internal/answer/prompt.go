package answer

import (
	"strconv"
	"strings"

	"minirag/internal/rag"
)

// promptTemplate is sent to the model byte for byte, indentation included.
const promptTemplate = `
        You are an expert question-answering assistant. Your task is to answer the user's question based ONLY on the provided context.
        Here is the context, with each snippet numbered for citation:
        ---
        {context}
        ---
        Here is the user's question:
        {question}
        Instructions:
        1. Carefully read the context and the question.
        2. Formulate a clear and concise answer.
        3. If the context does not contain the information needed to answer the question, you MUST say "` + rag.RefusalSentence + `"
        4. For every piece of information you use in your answer, you MUST cite the corresponding source number(s) in brackets, like [1], [2], etc.
        Answer:
        `

// BuildContext numbers each chunk by its position and joins them with a
// blank line, keeping the given order.
func BuildContext(ranked []rag.Candidate) string {
	parts := make([]string, len(ranked))
	for i, c := range ranked {
		parts[i] = "[" + strconv.Itoa(c.Position) + "] " + c.Content
	}
	return strings.Join(parts, "\n\n")
}

// RenderPrompt fills the template. Context and question are substituted in a
// single pass so braces inside user text are never expanded.
func RenderPrompt(context, question string) string {
	return strings.NewReplacer("{context}", context, "{question}", question).Replace(promptTemplate)
}
