package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

var rankingSchema = Schema{Fields: []Field{
	required(score("score", 0, 100)),
	strList("top_matches", 3),
	strList("concerns", 3),
	str("reason"),
}}

var rankingJSON = ReflectSchema("ranking", Ranking{})

func rankingProfile() *Profile {
	return &Profile{
		Task:        domain.TaskRanking,
		System:      "You are a hiring assistant. You compare candidates to job descriptions and answer with JSON only.",
		MaxTokens:   300,
		Temperature: 0,
		Schema:      rankingSchema,
		JSON:        rankingJSON,
		Budgets:     map[string]int{"job": 2000, "candidate": 4000},
		Validate: func(req domain.ExtractionRequest) error {
			if strings.TrimSpace(req.JobDescription) == "" {
				return &domain.CallerContractError{Field: "job_description", Reason: "required for ranking"}
			}
			return nil
		},
		Sources: func(req domain.ExtractionRequest) []Source {
			b, _ := json.Marshal(CandidateProfile(req))
			return []Source{
				{Name: "job", Text: req.JobDescription},
				{Name: "candidate", Text: string(b)},
			}
		},
		Render: func(_ domain.ExtractionRequest, in map[string]string) string {
			return `Compare this candidate to the job description.
Return ONLY valid JSON with keys:
- score: integer 0-100 for overall fit
- top_matches: up to 3 short strings naming the strongest matches
- concerns: up to 3 short strings naming gaps or risks
- reason: one short sentence

Job description:
` + in["job"] + `

Candidate profile (JSON):
` + in["candidate"]
		},
		Heuristic: func(req domain.ExtractionRequest) (any, error) {
			return rankByOverlap(req.JobDescription, CandidateProfile(req)), nil
		},
	}
}

// CandidateProfile returns the structured profile used for ranking. Candidates without a
// parsed resume are represented by the first 1000 characters of their resume text.
func CandidateProfile(req domain.ExtractionRequest) map[string]any {
	if len(req.CandidateProfile) > 0 {
		return req.CandidateProfile
	}
	return map[string]any{
		"summary":    Truncate(req.Text, 1000),
		"skills":     []string{},
		"experience": []any{},
		"education":  []any{},
	}
}

// rankByOverlap scores the share of job keywords covered by the candidate profile.
func rankByOverlap(job string, profile map[string]any) Ranking {
	jobKW := keywords(job)
	skills := stringsOf(profile["skills"])
	candidateKW := make(map[string]bool)
	for _, kw := range keywords(strings.Join(skills, ", ") + "\n" + profileText(profile)) {
		candidateKW[kw] = true
	}

	var covered, missing []string
	for _, kw := range jobKW {
		if candidateKW[kw] {
			covered = append(covered, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	r := Ranking{TopMatches: []string{}, Concerns: []string{}}
	if len(jobKW) > 0 {
		r.Score = int(math.Round(100 * float64(len(covered)) / float64(len(jobKW))))
	}

	coveredSet := make(map[string]bool, len(covered))
	for _, kw := range covered {
		coveredSet[kw] = true
	}
	seen := make(map[string]bool)
	for _, s := range skills {
		for _, kw := range keywords(s) {
			if coveredSet[kw] && !seen[strings.ToLower(s)] && len(r.TopMatches) < 3 {
				r.TopMatches = append(r.TopMatches, s)
				seen[strings.ToLower(s)] = true
			}
		}
	}
	for _, kw := range covered {
		if len(r.TopMatches) == 3 {
			break
		}
		if !seen[kw] && !containsFold(r.TopMatches, kw) {
			r.TopMatches = append(r.TopMatches, kw)
			seen[kw] = true
		}
	}

	if len(skills) == 0 {
		r.Concerns = append(r.Concerns, "Candidate profile lists no skills")
	}
	if len(missing) > 0 {
		shown := missing
		if len(shown) > 5 {
			shown = shown[:5]
		}
		r.Concerns = append(r.Concerns, "Missing job keywords: "+strings.Join(shown, ", "))
	}
	if len(jobKW) == 0 {
		r.Concerns = append(r.Concerns, "Job description has no comparable keywords")
	} else if r.Score < 50 {
		r.Concerns = append(r.Concerns, "Low keyword overlap with the job description")
	}
	r.Reason = fmt.Sprintf("Keyword overlap matched %d of %d job keywords.", len(covered), len(jobKW))
	return r
}

// profileText flattens the free-text parts of a profile for keyword matching.
func profileText(profile map[string]any) string {
	var b strings.Builder
	if s, ok := profile["summary"].(string); ok {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	for _, key := range []string{"experience", "projects"} {
		for _, it := range objectsOf(profile[key]) {
			for _, f := range []string{"title", "name", "description"} {
				if s, ok := it[f].(string); ok {
					b.WriteString(s)
					b.WriteByte('\n')
				}
			}
			for _, f := range []string{"responsibilities", "technologies"} {
				b.WriteString(strings.Join(stringsOf(it[f]), "\n"))
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func stringsOf(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func objectsOf(v any) []map[string]any {
	switch x := v.(type) {
	case []map[string]any:
		return x
	case []any:
		out := make([]map[string]any, 0, len(x))
		for _, it := range x {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, it := range list {
		if strings.EqualFold(it, s) {
			return true
		}
	}
	return false
}
