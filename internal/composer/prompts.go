package composer

import "fmt"

// knowledgePrompt asks for a short domain-scoped answer from the model's own
// knowledge. The scope rules forbid invented facts and hedging words that
// would leak into a user-facing compliance answer.
func knowledgePrompt(query string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = 150
	}
	return fmt.Sprintf(`You are a compliance assistant for Extended Producer Responsibility (EPR) regulations covering plastic packaging.

Answer the question below in under %d words.

Rules:
- Only state facts you are confident about. Never invent registration numbers, fees, dates, or rule citations.
- Stay on EPR compliance. Do not discuss unrelated regulations or general environmental topics.
- Do not use hedging words such as "simulated", "hypothetical", or "as an AI".
- Plain prose, no headings or bullet lists.

Question: %s`, maxWords, query)
}

// blendPrompt merges retrieved source text with the generative-knowledge
// answer, keeping only what directly answers the question.
func blendPrompt(query, retrieved, knowledge string) string {
	return fmt.Sprintf(`You are a compliance assistant for Extended Producer Responsibility (EPR) regulations.

Combine the two sources below into one short answer to the question. Extract only the portions of each source that directly answer the question. Discard tangential regulatory details such as quarterly sub-deadlines or unrelated certificate rules unless the question asks about them. Where the sources disagree, prefer SOURCE TEXT.

Question: %s

SOURCE TEXT (from official documents):
%s

BACKGROUND (general knowledge):
%s

Answer:`, query, retrieved, knowledge)
}

// trimPrompt is the filter pass: shorten without adding anything.
func trimPrompt(query, answer string) string {
	return fmt.Sprintf(`Shorten the answer below. Remove clauses that do not directly address the question. Do not add new information, do not change any dates or numbers.

Question: %s

Answer:
%s

Shortened answer:`, query, answer)
}
