package exemplar

import (
	"strings"

	"github.com/dgallion1/deckreport/internal/synth"
)

// Trim shortens text to roughly maxTokens, keeping whole leading
// paragraphs. When the first paragraph alone is over budget its leading
// sentences are kept instead. maxTokens <= 0 disables trimming.
func Trim(text string, maxTokens int) string {
	if maxTokens <= 0 || synth.EstimateTokens(text) <= maxTokens {
		return text
	}

	var kept []string
	used := 0
	for _, para := range splitByParagraphs(text) {
		tokens := synth.EstimateTokens(para)
		if used+tokens > maxTokens {
			if len(kept) == 0 {
				return leadingSentences(para, maxTokens)
			}
			break
		}
		kept = append(kept, para)
		used += tokens
	}
	return strings.Join(kept, "\n\n")
}

// splitByParagraphs splits on blank lines and drops empty paragraphs.
func splitByParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func leadingSentences(para string, maxTokens int) string {
	var b strings.Builder
	used := 0
	for _, sent := range splitSentences(para) {
		tokens := synth.EstimateTokens(sent)
		if used+tokens > maxTokens {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sent)
		used += tokens
	}
	if b.Len() == 0 {
		// One enormous sentence: cut on words.
		words := strings.Fields(para)
		n := max(int(float64(maxTokens)/1.33), 1)
		return strings.Join(words[:min(n, len(words))], " ")
	}
	return b.String()
}

// splitSentences breaks after '.', '!' or '?' followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
