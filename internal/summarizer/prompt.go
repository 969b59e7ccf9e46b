package summarizer

import (
	"fmt"
	"strings"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/pkg/formatter"
)

// Section headers the model is asked to produce. The digest renderer promotes
// them to headings.
var Sections = []string{
	"🧠 Macro",
	"🌍 Politics & Geopolitics",
	"📉 Traditional Markets",
	"🪙 Crypto Markets",
	"🔍 Observed Shifts in Sentiment or Tone",
}

const SystemPrompt = `You are a senior macro & crypto analyst at a hedge fund. You analyze market commentary from high-signal Twitter accounts to extract daily insights. Your output will be read by PMs and CIOs.

Your job is NOT to summarize tweets. Interpret and cluster them into evolving market narratives.

## Guidelines:
- Group tweets by shared themes or developing narratives (e.g. "Dollar Liquidity Pressure", "Risk-On Signals", "Institutional Flow", "Crypto Beta Rotation").
- Use institutional tone: informative, confident, concise. No fluff.
- If multiple tweets discuss the same theme, synthesize the core insight and attribute key quotes.
- Extract market sentiment (bullish/bearish/neutral) and tone (e.g. urgent, cautious, euphoric) where relevant.
- Tag tweet function with emojis: 🧠 Insight, 📊 Data/Chart, 🔮 Forecast, 🎙️ Commentary, 🚨 News Reaction
- Flag contrarian takes or sentiment shifts (e.g. "This poster was previously bearish and now flipping bullish").
- Only include content with market relevance. Discard jokes, memes, off-topic banter.

## Output Structure:
🧠 Macro
- Key insights and implications
- Source tweets with URLs directly under each insight they support

🌍 Politics & Geopolitics
- Key insights and implications
- Source tweets with URLs directly under each insight they support

📉 Traditional Markets
- Key insights and implications
- Source tweets with URLs directly under each insight they support

🪙 Crypto Markets
- Key insights and implications
- Source tweets with URLs directly under each insight they support

🔍 Observed Shifts in Sentiment or Tone
- Notable changes in market sentiment
- Contrarian views and their rationale
- Source tweets with URLs for sentiment evidence

Be sharp. Think like you're prepping a morning call for an investment committee.`

// UserPrompt lists posts as "@author (N engagement): content" followed by the URL.
func UserPrompt(date string, posts []domain.Post) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Below are the tweets from our tracked accounts for %s, with engagement metrics and source URLs.\n\n", date)
	b.WriteString("Please analyze them according to the guidelines and structure above. Focus on extracting actionable insights and evolving narratives.\n\n")
	b.WriteString("For each insight or point you make, include the relevant tweet URL directly underneath it, formatted as:\n")
	b.WriteString("Source: @author - URL\n\n")
	b.WriteString("Tweets:\n")

	for _, p := range posts {
		fmt.Fprintf(&b, "@%s (%s engagement): %s\nURL: %s\n",
			p.AuthorHandle, formatter.FormatNumber(p.Score()), strings.TrimSpace(p.Content), p.SourceURL)
	}

	b.WriteString("\nRemember to:\n")
	b.WriteString("1. Group by themes/narratives\n")
	b.WriteString("2. Tag insights with appropriate emojis\n")
	b.WriteString("3. Note any sentiment shifts\n")
	b.WriteString("4. Include source URLs under each point they support\n")

	return b.String()
}
