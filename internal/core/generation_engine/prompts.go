package generation_engine

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt renders the instruction block shared by every provider:
// output schema, the mandatory source-citation rule, and the card budget.
func BuildSystemPrompt(documentName string, maxCards int) string {
	return fmt.Sprintf(`You are an expert educational content creator specializing in generating high-quality flashcards from academic materials.

Your task is to analyze the provided document content and create up to %d flashcards that:
1. Focus on key concepts, definitions, and important relationships
2. Use clear, concise language appropriate for the subject matter
3. Include precise source attribution for EVERY flashcard

CRITICAL SOURCE ATTRIBUTION REQUIREMENT:
- Every flashcard MUST include a "source" field
- Format: "%s - Page X" or "%s - Page X, Section Y"
- The page number must come from the [Page N] labels in the content below
- This is MANDATORY and non-negotiable

Output Format:
Return a JSON object with a "flashcards" array. Each flashcard must have:
- "question": Clear, focused question
- "answer": Comprehensive but concise answer
- "source": REQUIRED precise reference to document page/section

Example:
{
    "flashcards": [
        {
            "question": "What is photosynthesis?",
            "answer": "The process by which plants convert light energy into chemical energy (glucose) using carbon dioxide and water, releasing oxygen as a byproduct.",
            "source": "%s - Page 12, Section 3.2"
        }
    ]
}

Quality Guidelines:
- Focus on understanding, not memorization
- Create questions at different difficulty levels
- Ensure answers are accurate and complete
- Avoid overly broad or vague questions
- Each flashcard should be self-contained`, maxCards, documentName, documentName, documentName)
}

// BuildUserPrompt renders the chunk's content with every page explicitly
// labeled so the model can cite it.
func BuildUserPrompt(chunk Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document content (pages %d-%d):\n\n", chunk.MinPage, chunk.MaxPage)
	for _, block := range chunk.Blocks {
		fmt.Fprintf(&b, "[Page %d]\n%s\n\n", block.Page, block.Text)
	}
	b.WriteString("Please generate flashcards from this content. Remember to include precise source attribution (page number) for each flashcard.")
	return b.String()
}
