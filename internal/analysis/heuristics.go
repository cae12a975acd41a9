package analysis

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"pressroom/internal/core"
)

var (
	htmlTagPattern       = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	listLinePattern      = regexp.MustCompile(`^\s*(#{1,6}\s*)?([-*+•]|\d+[.)])\s+\S`)
	numberedTitlePattern = regexp.MustCompile(`^\s*\d+\s+\S`)
	howToTitlePattern    = regexp.MustCompile(`(?i)\b(how to|how-to|step[- ]by[- ]step|tutorial|guide to|beginner'?s guide)\b`)
)

// Keyword weights per content type. Scores are normalized per 100 words.
var contentMarkers = map[core.ContentType]map[string]float64{
	core.ContentHowTo: {
		"step": 1.0, "steps": 1.0, "install": 0.8, "configure": 0.6, "click": 0.8,
		"tutorial": 1.0, "guide": 0.6, "next": 0.3, "then": 0.3, "finally": 0.3,
		"first": 0.2, "run": 0.4, "open": 0.3, "select": 0.4, "enter": 0.4,
	},
	core.ContentOpinion: {
		"believe": 1.0, "think": 0.8, "opinion": 1.0, "should": 0.6, "argue": 1.0,
		"frankly": 1.0, "wrong": 0.6, "agree": 0.6, "disagree": 0.8, "my": 0.3,
		"i": 0.3, "must": 0.4, "ought": 0.8, "honestly": 0.8,
	},
	core.ContentNarrative: {
		"said": 0.8, "remembered": 1.0, "walked": 0.8, "was": 0.2, "were": 0.2,
		"had": 0.2, "night": 0.4, "morning": 0.4, "she": 0.4, "he": 0.4,
		"her": 0.3, "his": 0.3, "once": 0.4, "told": 0.6, "looked": 0.6,
	},
}

// contentThreshold is the per-100-word score a marker set must reach to beat
// the informational default.
const contentThreshold = 3.0

var toneMarkers = map[core.Tone]map[string]float64{
	core.ToneFormal: {
		"therefore": 1.0, "moreover": 1.0, "furthermore": 1.0, "consequently": 1.0,
		"thus": 0.8, "hereby": 1.0, "pursuant": 1.0, "accordingly": 0.8,
		"regarding": 0.6, "significant": 0.4, "substantial": 0.4, "however": 0.4,
	},
	core.ToneConversational: {
		"you": 0.4, "your": 0.4, "you're": 0.8, "i'm": 0.8, "let's": 1.0,
		"don't": 0.6, "can't": 0.6, "it's": 0.4, "hey": 1.0, "pretty": 0.6,
		"really": 0.5, "stuff": 0.8, "gonna": 1.0, "okay": 0.8,
	},
	core.ToneTechnical: {
		"api": 1.0, "algorithm": 1.0, "function": 0.8, "database": 1.0, "server": 0.8,
		"latency": 1.0, "configuration": 0.8, "protocol": 1.0, "kubernetes": 1.0,
		"compiler": 1.0, "runtime": 1.0, "query": 0.8, "cache": 0.8, "deploy": 0.8,
		"http": 1.0, "json": 1.0, "code": 0.6, "cpu": 1.0, "memory": 0.6,
	},
	core.ToneDramatic: {
		"shocking": 1.0, "incredible": 0.8, "unbelievable": 1.0, "devastating": 1.0,
		"explosive": 1.0, "stunning": 0.8, "terrifying": 1.0, "suddenly": 0.8,
		"chaos": 1.0, "crisis": 0.8, "tragedy": 1.0, "outrage": 1.0, "never": 0.3,
	},
}

// parsedContent is the visible text of an article plus the structure signals
// the heuristics read.
type parsedContent struct {
	text      string
	words     []string
	lines     int
	listItems int
	codeSpans int
}

func (p parsedContent) wordCount() int {
	return len(p.words)
}

// parseContent strips HTML markup when present and counts list structure.
func parseContent(content string) parsedContent {
	if htmlTagPattern.MatchString(content) {
		if parsed, ok := parseHTML(content); ok {
			return parsed
		}
	}

	parsed := parsedContent{
		text:      content,
		words:     strings.Fields(content),
		codeSpans: strings.Count(content, "```") / 2,
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed.lines++
		if listLinePattern.MatchString(line) {
			parsed.listItems++
		}
	}
	return parsed
}

func parseHTML(content string) (parsedContent, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return parsedContent{}, false
	}
	doc.Find("script, style, noscript").Remove()

	blocks := doc.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote, pre").Length()
	text := visibleText(doc.Selection)
	return parsedContent{
		text:      text,
		words:     strings.Fields(text),
		lines:     blocks,
		listItems: doc.Find("li").Length(),
		codeSpans: doc.Find("pre, code").Length(),
	}, true
}

// visibleText joins text nodes with spaces so adjacent blocks do not run together.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				if text := strings.TrimSpace(child.Text()); text != "" {
					parts = append(parts, text)
				}
				return
			}
			walk(child)
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}

// classify is the local classifier used when no inference collaborator is configured.
func classify(doc parsedContent, title, category string) core.ContentAnalysis {
	tokens := normalizeTokens(doc.words)
	return core.ContentAnalysis{
		ContentType: classifyContentType(doc, tokens, title, category),
		Tone:        classifyTone(doc, tokens),
		Complexity:  complexity(doc, tokens),
	}
}

func classifyContentType(doc parsedContent, tokens []string, title, category string) core.ContentType {
	if howToTitlePattern.MatchString(title) {
		return core.ContentHowTo
	}
	if isList(doc, title) {
		return core.ContentList
	}
	if strings.EqualFold(category, "Opinion") {
		return core.ContentOpinion
	}

	best := core.ContentInformational
	bestScore := contentThreshold
	for _, ct := range []core.ContentType{core.ContentHowTo, core.ContentOpinion, core.ContentNarrative} {
		score := per100(scoreTokens(tokens, contentMarkers[ct]), len(tokens))
		if score > bestScore {
			best, bestScore = ct, score
		}
	}
	return best
}

func isList(doc parsedContent, title string) bool {
	if doc.lines == 0 {
		return false
	}
	ratio := float64(doc.listItems) / float64(doc.lines)
	if doc.listItems >= 3 && ratio >= 0.4 {
		return true
	}
	return numberedTitlePattern.MatchString(title) && doc.listItems >= 2
}

// classifyTone picks the tone with the highest marker score. Conversational wins
// when nothing scores.
func classifyTone(doc parsedContent, tokens []string) core.Tone {
	scores := make(map[core.Tone]float64, len(toneMarkers))
	for tone, markers := range toneMarkers {
		scores[tone] = scoreTokens(tokens, markers)
	}
	scores[core.ToneDramatic] += 0.5 * float64(strings.Count(doc.text, "!"))
	scores[core.ToneTechnical] += float64(doc.codeSpans)

	best := core.ToneConversational
	bestScore := 0.0
	for _, tone := range core.Tones() {
		if scores[tone] > bestScore {
			best, bestScore = tone, scores[tone]
		}
	}
	return best
}

// complexity blends mean word length and mean sentence length into [0,1].
func complexity(doc parsedContent, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0.5
	}

	letters := 0
	for _, token := range tokens {
		letters += len([]rune(token))
	}
	avgWordLen := float64(letters) / float64(len(tokens))

	sentences := strings.Count(doc.text, ".") + strings.Count(doc.text, "!") + strings.Count(doc.text, "?")
	if sentences == 0 {
		sentences = 1
	}
	avgSentenceLen := float64(len(tokens)) / float64(sentences)

	score := 0.5*clamp01((avgWordLen-3)/5) + 0.5*clamp01((avgSentenceLen-5)/25)
	return math.Round(score*100) / 100
}

func normalizeTokens(words []string) []string {
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		token := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		}))
		token = strings.Trim(strings.ReplaceAll(token, "’", "'"), "'")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func scoreTokens(tokens []string, markers map[string]float64) float64 {
	score := 0.0
	for _, token := range tokens {
		score += markers[token]
	}
	return score
}

func per100(score float64, words int) float64 {
	if words == 0 {
		return 0
	}
	return score * 100 / float64(words)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
