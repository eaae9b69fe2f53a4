package extraction

import (
	"fmt"
	"strings"
)

// MaxPromptChars caps the CV text sent to the model.
const MaxPromptChars = 40000

// BuildPrompt asks the model for a single JSON object matching the extraction schema.
func BuildPrompt(cvText string) string {
	if len(cvText) > MaxPromptChars {
		cvText = cvText[:MaxPromptChars]
	}
	var sb strings.Builder
	sb.WriteString("You extract structured candidate data from a CV for a recruitment back office.\n")
	sb.WriteString("Return ONLY one JSON object, no prose and no markdown, with exactly these keys:\n")
	sb.WriteString(`{
  "basicInfo": {"fullName": string, "email": string, "phone": string, "locationName": string},
  "skills": [{"name": string, "level": string, "yearsExp": number}],
  "jobRoleLevels": [{"position": string, "level": string, "yearsOfExp": number, "ratePerMonth": number}],
  "certificates": [{"name": string, "issuedBy": string, "issuedDate": string}],
  "projects": [{"projectName": string, "position": string, "description": string, "technologies": [string], "startDate": string, "endDate": string}],
  "workExperiences": [{"company": string, "position": string, "description": string, "startDate": string, "endDate": string}]
}
`)
	sb.WriteString("Rules:\n")
	sb.WriteString("- Use an empty string when a value is not stated. Never invent data.\n")
	sb.WriteString("- Dates use YYYY-MM when the month is known, otherwise YYYY. Use \"present\" for an ongoing end date.\n")
	sb.WriteString("- jobRoleLevels are the positions the candidate targets, with level such as Junior, Middle, Senior, Lead.\n")
	sb.WriteString("- Skill names are short canonical names (\"Go\", \"PostgreSQL\"), one per entry.\n")
	sb.WriteString("- ratePerMonth is a number without currency symbols; 0 when absent.\n")
	fmt.Fprintf(&sb, "\nCV TEXT:\n%s\n", cvText)
	return sb.String()
}

// CleanJSONBlock strips markdown code fences around a JSON payload.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Fall back to the outermost braces when the model wrapped the object in prose.
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start > 0 && end > start {
		return text[start : end+1]
	}
	return text
}
