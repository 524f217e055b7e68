package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/career-roadmap/internal/models"
)

const (
	skillsSystemInstruction     = "You are a skilled job analyzer that extracts and categorizes required skills from job descriptions."
	roadmapSystemInstruction    = "You are an expert career mentor who creates personalized learning roadmaps."
	evaluationSystemInstruction = "You are an expert evaluator of career roadmaps. Your job is to critique and improve learning paths to ensure they're comprehensive and effective."
	qaSystemInstruction         = "You are a helpful career guidance assistant that provides advice based on learning roadmaps and skill requirements."
	cvSystemInstruction         = "You are an expert resume analyzer and career coach. Your job is to provide honest, constructive feedback to help job seekers improve their resumes."

	// SkillsContextMarker heads the skills section of a Q&A prompt.
	SkillsContextMarker = "Extracted Skills:"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSkillExtractionPrompt creates prompt for skill categorization
func (pb *PromptBuilder) BuildSkillExtractionPrompt(jobDescription string) string {
	var categories strings.Builder
	for i, name := range models.Taxonomy {
		fmt.Fprintf(&categories, "%d. %s\n", i+1, name)
	}

	return fmt.Sprintf(`Extract all skills from this job description and categorize them.

Job Description:
%s

Please categorize skills into these groups:
%s
Format your response as a JSON object with these categories as keys and lists of skills as values.`,
		jobDescription, categories.String())
}

// BuildRoadmapPrompt creates prompt for roadmap generation. resources may be
// empty.
func (pb *PromptBuilder) BuildRoadmapPrompt(skills models.SkillSet, resources string) string {
	var phases strings.Builder
	descriptions := []string{
		"Essential fundamentals to learn first",
		"Building practical skills",
		"Advanced topics and specializations",
		"Getting ready for job interviews",
	}
	for i, name := range models.PhaseOrder {
		fmt.Fprintf(&phases, "%d. %s - %s\n", i+1, name, descriptions[i])
	}

	var curated string
	if strings.TrimSpace(resources) != "" {
		curated = fmt.Sprintf("\nPrefer these curated learning resources where they fit:\n%s\n", resources)
	}

	return fmt.Sprintf(`Based on these extracted skills:

%s
Create a comprehensive learning roadmap with these phases:

%s
For each phase, include:
- "skills": Specific skills to focus on
- "resources": Recommended resources (courses, books, etc.)
- "projects": Projects or exercises
- "estimated_time": Estimated time to complete
%s
Format the roadmap as a JSON object with phases as main keys.`,
		skills.Outline(), phases.String(), curated)
}

// BuildEvaluationPrompt creates prompt for the roadmap critique
func (pb *PromptBuilder) BuildEvaluationPrompt(roadmap models.Roadmap, skills models.SkillSet) string {
	criteria := []string{
		"Coverage: Are all important skills from the original list covered?",
		"Relevance: Is the roadmap relevant to the target job role?",
		"Structure: Is the progression logical and well-structured?",
		"Practicality: Are the resources and timeline realistic?",
		"Completeness: Are there any missing critical elements?",
	}
	var list strings.Builder
	for i, c := range criteria {
		fmt.Fprintf(&list, "%d. %s\n", i+1, c)
	}

	return fmt.Sprintf(`Please evaluate this learning roadmap against the original extracted skills.

Original Skills:
%s

Generated Roadmap:
%s

Please analyze the roadmap on these criteria:
%s
Then, provide specific improvements to enhance the roadmap.
Finally, provide an improved version of the roadmap that addresses these issues.

Format your response as a JSON with these keys:
- "evaluation": Your assessment on the 5 criteria
- "suggested_improvements": List of specific improvements
- "improved_roadmap": The enhanced roadmap, with the same structure as the generated roadmap`,
		indentJSON(skills), indentJSON(roadmap), list.String())
}

// BuildQuestionPrompt creates prompt for roadmap Q&A. The skills section is
// left out entirely when skills is nil.
func (pb *PromptBuilder) BuildQuestionPrompt(question string, roadmap models.Roadmap, skills *models.SkillSet) string {
	var skillsText string
	if skills != nil {
		skillsText = fmt.Sprintf("\n%s\n%s", SkillsContextMarker, indentJSON(skills))
	}

	return fmt.Sprintf(`Based on this learning roadmap:%s

Roadmap:
%s

Please answer this question:
%s

Provide a clear, helpful response that addresses the question directly.`,
		skillsText, indentJSON(roadmap), question)
}

// BuildCVAnalysisPrompt creates prompt for comparing a CV with the job skills
func (pb *PromptBuilder) BuildCVAnalysisPrompt(cvText string, skills models.SkillSet, roadmap models.Roadmap) string {
	var skillsText strings.Builder
	for _, c := range skills.Ordered() {
		if len(c.Entry.Items) == 0 {
			continue
		}
		fmt.Fprintf(&skillsText, "%s:\n", c.Name)
		for _, item := range c.Entry.Items {
			fmt.Fprintf(&skillsText, "- %s\n", item)
		}
		skillsText.WriteString("\n")
	}

	var roadmapText strings.Builder
	roadmapText.WriteString("Learning Roadmap Summary:\n")
	for _, p := range roadmap.Phases {
		if len(p.Detail.Value) > 0 {
			continue
		}
		fmt.Fprintf(&roadmapText, "\n%s:\n", p.Name)
		if len(p.Detail.Skills) > 0 {
			roadmapText.WriteString("Skills to focus on:\n")
			for _, s := range p.Detail.Skills {
				fmt.Fprintf(&roadmapText, "- %s\n", s)
			}
		}
	}

	return fmt.Sprintf(`Please analyze this CV/resume against the job skills and learning roadmap. The candidate wants to know how their current skills match with the job requirements and what they need to improve.

CV/RESUME TEXT:
%s

JOB SKILLS REQUIRED:
%s
%s
Please provide a detailed analysis including:
1. Skills Match: Which skills from the job requirements are present in the CV
2. Skills Gap: Important skills that are missing or need improvement
3. Recommendations: Specific actions to improve the CV based on the roadmap
4. Additional Suggestions: How to better present existing skills or experience

Format your response as a JSON with these keys:
- "skills_match": List of matched skills with confidence level (high/medium/low)
- "skills_gap": List of missing critical skills
- "recommendations": List of specific actions to take
- "cv_improvement": General suggestions to improve the resume`,
		cvText, skillsText.String(), roadmapText.String())
}

func indentJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
