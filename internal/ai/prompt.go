package ai

import (
	"fmt"
	"strings"

	"github.com/hoanghai1803/insightpost/internal/models"
)

const insightSystemPrompt = `You are an e-commerce specialist focused on Shopify and Shopee. Your task is to read the source material and produce one actionable insight for small business owners.

Output rules:
1. Write a short, magnetic title (max. 10 words) on the first line.
2. Leave one blank line after the title.
3. Write the insight in 2 to 3 sentences (max. 50 words).
4. Use direct, clear, action-focused language.
Do NOT add any other text before the title or after the insight.`

// InsightPrompt builds the system and user prompts for the insight
// generation. Title and summary are embedded verbatim.
func InsightPrompt(entry models.FeedEntry) (systemPrompt string, userPrompt string) {
	systemPrompt = insightSystemPrompt

	var b strings.Builder
	b.WriteString("Source material:\n")
	fmt.Fprintf(&b, "- Title: \"%s\"\n", entry.Title)
	fmt.Fprintf(&b, "- Summary: \"%s\"\n", entry.Summary)
	b.WriteString("\nGenerated insight:\n")

	userPrompt = b.String()
	return systemPrompt, userPrompt
}
