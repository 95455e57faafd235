package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

const minResumeChars = 50

var resumeSchema = Schema{Fields: []Field{
	required(object("contact",
		str("name"), str("email"), str("phone"), str("location"),
		str("linkedin"), str("github"), str("portfolio"),
	)),
	strCap("summary", 1000),
	required(strList("skills", 50)),
	objectList("experience", 20,
		str("title"), str("company"), str("location"),
		str("start_date"), str("end_date"), str("duration"),
		strList("responsibilities", 0),
	),
	objectList("education", 10,
		str("degree"), str("institution"), str("location"),
		str("graduation_date"), str("gpa"), str("field_of_study"),
	),
	strList("certifications", 20),
	strList("languages", 10),
	objectList("projects", 15,
		str("name"), str("description"), strList("technologies", 0), str("url"),
	),
}}

var resumeJSON = ReflectSchema("parsed_resume", ParsedResume{})

func resumeProfile() *Profile {
	return &Profile{
		Task:        domain.TaskResumeParse,
		System:      "You are an expert resume parser. Extract structured information from resumes and return valid JSON only.",
		MaxTokens:   1500,
		Temperature: 0,
		Schema:      resumeSchema,
		JSON:        resumeJSON,
		Budgets:     map[string]int{"resume": 6000},
		Sources: func(req domain.ExtractionRequest) []Source {
			return []Source{{Name: "resume", Text: req.Text}}
		},
		Render: func(_ domain.ExtractionRequest, in map[string]string) string {
			return `Parse the following resume and extract structured information.

Return a JSON object with exactly these keys:
- contact: {name, email, phone, location, linkedin, github, portfolio}
- summary: professional summary, at most a short paragraph
- skills: list of skills
- experience: list of {title, company, location, start_date, end_date, duration, responsibilities}
- education: list of {degree, institution, location, graduation_date, gpa, field_of_study}
- certifications, languages: lists of strings
- projects: list of {name, description, technologies, url}

Use empty strings or empty lists for anything the resume does not state. Do not invent facts.

Resume:
` + in["resume"]
		},
		SkipAI: func(req domain.ExtractionRequest) bool {
			return utf8.RuneCountInString(strings.TrimSpace(req.Text)) < minResumeChars
		},
		Heuristic: func(req domain.ExtractionRequest) (any, error) {
			return parseResumeBasic(req.Text), nil
		},
	}
}

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{7,}\d`)
	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_\-%]+/?`)
	githubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_\-]+/?`)
)

var sectionHeaders = map[string]string{
	"skills": "skills", "technical skills": "skills", "core competencies": "skills", "key skills": "skills",
	"certifications": "certifications", "certificates": "certifications", "licenses & certifications": "certifications",
	"languages":  "languages",
	"experience": "other", "work experience": "other", "employment": "other", "work history": "other",
	"education": "other", "projects": "other", "summary": "other", "profile": "other", "objective": "other",
}

// parseResumeBasic is the rule-based resume extraction: contact details by pattern,
// a short summary, and list sections introduced by well-known headers.
func parseResumeBasic(text string) ParsedResume {
	out := ParsedResume{
		Contact: basicContact(text),
		Summary: cutAtWord(collapseSpace(text), 500),
	}
	sections := headedSections(text)
	out.Skills = mergeUnique(splitItems(sections["skills"]), vocabularyMatches(text), 50)
	out.Certifications = mergeUnique(sections["certifications"], nil, 20)
	out.Languages = mergeUnique(splitItems(sections["languages"]), nil, 10)
	return out
}

func basicContact(text string) Contact {
	c := Contact{
		Email:    emailRe.FindString(text),
		LinkedIn: linkedinRe.FindString(text),
		GitHub:   githubRe.FindString(text),
	}
	for _, p := range phoneRe.FindAllString(text, -1) {
		if n := countDigits(p); n >= 10 && n <= 15 {
			c.Phone = strings.TrimSpace(p)
			break
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if looksLikeName(line) {
			c.Name = line
		}
		break
	}
	return c
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, r := range line {
		if !(unicode.IsLetter(r) || r == ' ' || r == '.' || r == '\'' || r == '-') {
			return false
		}
	}
	return true
}

// headedSections collects the lines under known headers. "Skills: a, b" on one line also counts.
func headedSections(text string) map[string][]string {
	out := make(map[string][]string)
	current := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		head, rest, inline := strings.Cut(line, ":")
		if kind, ok := sectionHeaders[strings.ToLower(strings.TrimSpace(head))]; ok {
			current = kind
			if inline && strings.TrimSpace(rest) != "" && kind != "other" {
				out[kind] = append(out[kind], strings.TrimSpace(rest))
			}
			continue
		}
		if current != "" && current != "other" {
			out[current] = append(out[current], strings.TrimLeft(line, "-*•· \t"))
		}
	}
	return out
}

func splitItems(lines []string) []string {
	var out []string
	for _, l := range lines {
		for _, it := range strings.FieldsFunc(l, func(r rune) bool { return r == ',' || r == ';' || r == '|' || r == '•' }) {
			if it = strings.TrimSpace(it); it != "" {
				out = append(out, it)
			}
		}
	}
	return out
}

func vocabularyMatches(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, term := range skillVocabulary {
		if containsTerm(lower, term) {
			out = append(out, term)
		}
	}
	return out
}

// mergeUnique concatenates a and b, dropping case-insensitive duplicates, up to limit items.
func mergeUnique(a, b []string, limit int) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool)
	for _, s := range append(append([]string{}, a...), b...) {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(s))
		if len(out) == limit {
			break
		}
	}
	return out
}

// ExperienceSummary renders the first five experience entries of a parsed resume as
// "title at company (duration)" joined by " | ".
func ExperienceSummary(parsed map[string]any) string {
	items, _ := parsed["experience"].([]map[string]any)
	if items == nil {
		if raw, ok := parsed["experience"].([]any); ok {
			for _, it := range raw {
				if m, ok := it.(map[string]any); ok {
					items = append(items, m)
				}
			}
		}
	}
	parts := make([]string, 0, 5)
	for _, it := range items {
		if len(parts) == 5 {
			break
		}
		title, _ := it["title"].(string)
		company, _ := it["company"].(string)
		duration, _ := it["duration"].(string)
		entry := fmt.Sprintf("%s at %s", title, company)
		if duration != "" {
			entry += fmt.Sprintf(" (%s)", duration)
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, " | ")
}
