package extraction

import (
	"strings"
	"unicode"
)

// techKeywords are common ATS technical keywords, in priority order.
var techKeywords = []string{
	"python", "java", "javascript", "react", "node.js", "aws", "docker",
	"kubernetes", "sql", "git", "agile", "ci/cd", "api", "microservices",
}

var softSkills = []string{
	"leadership", "communication", "teamwork", "problem-solving",
	"project management", "analytical", "creative",
}

// skillVocabulary is matched against resume text by the resume heuristic. Entries are lowercase.
var skillVocabulary = []string{
	"python", "java", "javascript", "typescript", "go", "golang", "rust", "c++", "c#", "ruby", "php",
	"kotlin", "swift", "scala", "sql", "postgresql", "mysql", "mongodb", "redis", "kafka",
	"react", "angular", "vue", "node.js", "django", "flask", "fastapi", "spring", "graphql",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "linux", "git", "ci/cd",
	"machine learning", "data analysis", "pandas", "tensorflow", "pytorch", "html", "css",
	"rest", "microservices", "agile", "scrum",
}

// stopWords filters filler that adds noise to keyword matching.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"experience": true, "years": true, "year": true, "strong": true, "skills": true,
	"knowledge": true, "must": true, "should": true, "plus": true, "including": true,
	"looking": true, "required": true, "preferred": true, "ability": true, "any": true,
}

// shortKeywords are meaningful tokens below the three-rune minimum.
var shortKeywords = map[string]bool{
	"go": true, "c": true, "r": true, "c#": true, "ai": true, "ml": true,
	"ui": true, "ux": true, "qa": true, "js": true, "ts": true,
}

// keywords tokenizes text into lowercase keywords in first-seen order.
// Tech suffixes like "c++", "c#" and "node.js" survive because + # . / count as word characters.
func keywords(text string) []string {
	var out []string
	seen := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := strings.Trim(word.String(), "./")
		word.Reset()
		if w == "" || seen[w] || stopWords[w] {
			return
		}
		if len([]rune(w)) >= 3 || shortKeywords[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '/' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// containsTerm reports whether term occurs in lower-cased text as a whole word or phrase.
func containsTerm(lower, term string) bool {
	from := 0
	for {
		i := strings.Index(lower[from:], term)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(term)
		if boundary(lower, start-1) && boundary(lower, end) {
			return true
		}
		from = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := rune(s[i])
	return !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '+' || c == '#')
}

// countPresent counts how many terms appear as substrings of lower.
func countPresent(lower string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			n++
		}
	}
	return n
}
