package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/career-roadmap/internal/models"
	"alfredoptarigan/career-roadmap/internal/services"
)

func newJDCmd(a *app) *cobra.Command {
	var input, file, output string
	cmd := &cobra.Command{
		Use:   "jd",
		Short: "Clean a job description and count its words",
		RunE: func(cmd *cobra.Command, args []string) error {
			jd, err := services.ProcessJobDescription(input, file, services.NewPDFParserService())
			if err != nil {
				return err
			}
			return a.writeOutput(output, jd)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input job description text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to job description file (txt or pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

func newSkillsCmd(a *app) *cobra.Command {
	var input, file, output string
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Extract categorized skills from a job description",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := loadJobDescription(input, file)
			if err != nil {
				return err
			}
			stages, err := a.newStages(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeOutput(output, stages.ExtractSkills(cmd.Context(), text))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input job description text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to job description JSON, txt or pdf file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

// loadJobDescription accepts text, a job_description.json artifact, or a raw
// txt/pdf file.
func loadJobDescription(input, file string) (string, error) {
	if file != "" && strings.EqualFold(filepath.Ext(file), ".json") {
		var jd models.JobDescription
		if err := services.ReadJSONFile(file, &jd); err != nil {
			return "", err
		}
		input, file = jd.JobDescription, ""
	}
	jd, err := services.ProcessJobDescription(input, file, services.NewPDFParserService())
	if err != nil {
		return "", err
	}
	return jd.JobDescription, nil
}

func newRoadmapCmd(a *app) *cobra.Command {
	var file, output string
	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Generate a learning roadmap from extracted skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			skills, err := services.LoadSkillSet(file)
			if err != nil {
				return err
			}
			stages, err := a.newStages(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeOutput(output, stages.GenerateRoadmap(cmd.Context(), skills))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to skills JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var roadmapFile, skillsFile, output string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Critique a roadmap against the extracted skills and improve it",
		RunE: func(cmd *cobra.Command, args []string) error {
			roadmap, err := services.LoadRoadmap(roadmapFile)
			if err != nil {
				return err
			}
			skills, err := services.LoadSkillSet(skillsFile)
			if err != nil {
				return err
			}
			stages, err := a.newStages(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeOutput(output, stages.EvaluateRoadmap(cmd.Context(), roadmap, skills))
		},
	}
	cmd.Flags().StringVarP(&roadmapFile, "roadmap", "r", "", "Path to roadmap JSON file")
	cmd.Flags().StringVarP(&skillsFile, "skills", "s", "", "Path to original skills JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	_ = cmd.MarkFlagRequired("roadmap")
	_ = cmd.MarkFlagRequired("skills")
	return cmd
}

func newAskCmd(a *app) *cobra.Command {
	var roadmapFile, skillsFile, question, output string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer questions about a roadmap, interactively or once",
		RunE: func(cmd *cobra.Command, args []string) error {
			roadmap, err := services.LoadRoadmap(roadmapFile)
			if err != nil {
				return err
			}
			var skills *models.SkillSet
			if skillsFile != "" {
				s, err := services.LoadSkillSet(skillsFile)
				if err != nil {
					return err
				}
				skills = &s
			}
			stages, err := a.newStages(cmd.Context())
			if err != nil {
				return err
			}

			if question == "" {
				return runQA(cmd.Context(), a.in, a.out, stages, roadmap, skills)
			}
			answer := stages.AnswerQuestion(cmd.Context(), question, roadmap, skills)
			if output != "" {
				if err := services.WriteJSONFile(output, answer); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Answer saved to %s\n", output)
				return nil
			}
			return a.writeOutput("", answer)
		},
	}
	cmd.Flags().StringVarP(&roadmapFile, "roadmap", "r", "", "Path to roadmap JSON file")
	cmd.Flags().StringVarP(&skillsFile, "skills", "s", "", "Path to skills JSON file (optional)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "Single question to answer (optional)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (single question mode)")
	_ = cmd.MarkFlagRequired("roadmap")
	return cmd
}

func newPipelineCmd(a *app) *cobra.Command {
	var input, file, outputDir string
	var interactive bool
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run job description to final roadmap in one go",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" && file == "" {
				return fmt.Errorf("%w: please provide either input text or input file", services.ErrMissingInput)
			}
			stages, err := a.newStages(cmd.Context())
			if err != nil {
				return err
			}

			store := services.NewStorageService(a.cfg.Storage.OutputDir, a.cfg.Storage.UploadPath)
			pipeline := services.NewPipeline(stages, store, a.cfg.RateLimit, a.cfg.Fallback, a.log)
			result, err := pipeline.Run(cmd.Context(), services.RunInput{
				Text:      input,
				File:      file,
				OutputDir: outputDir,
			})
			if err != nil {
				return err
			}

			if result.FinalRoadmapPath != "" {
				fmt.Fprintf(a.out, "Final roadmap saved to %s\n", result.FinalRoadmapPath)
			} else {
				fmt.Fprintln(a.out, "Warning: could not save the final roadmap, printing it instead:")
				if err := a.writeOutput("", result.FinalRoadmap); err != nil {
					return err
				}
			}
			if len(result.Degraded) > 0 {
				fmt.Fprintf(a.out, "Warning: degraded stages: %s\n", strings.Join(result.Degraded, ", "))
			}

			if interactive {
				fmt.Fprintln(a.out, "\nStarting interactive Q&A mode...")
				fmt.Fprintln(a.out, "Note: Due to API rate limits, responses may be delayed or limited.")
				skills := result.Skills
				if err := runQA(cmd.Context(), a.in, a.out, stages, result.FinalRoadmap, &skills); err != nil {
					return err
				}
			}
			fmt.Fprintln(a.out, "\nPipeline completed successfully!")
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input job description text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to job description file")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory for all files")
	cmd.Flags().BoolVarP(&interactive, "interactive", "q", false, "Start interactive Q&A mode after pipeline completion")
	return cmd
}

func newAnalyzeCVCmd(a *app) *cobra.Command {
	var cvFile, roadmapFile, skillsFile, output string
	cmd := &cobra.Command{
		Use:   "analyze-cv",
		Short: "Compare a CV with the job skills and roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			cvText, err := services.NewPDFParserService().ExtractText(cvFile)
			if err != nil {
				return err
			}
			roadmap, err := services.LoadRoadmap(roadmapFile)
			if err != nil {
				return err
			}
			skills, err := services.LoadSkillSet(skillsFile)
			if err != nil {
				return err
			}
			stages, err := a.newStages(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeOutput(output, stages.AnalyzeCV(cmd.Context(), cvText, skills, roadmap))
		},
	}
	cmd.Flags().StringVarP(&cvFile, "cv", "c", "", "Path to CV PDF")
	cmd.Flags().StringVarP(&roadmapFile, "roadmap", "r", "", "Path to roadmap JSON file")
	cmd.Flags().StringVarP(&skillsFile, "skills", "s", "", "Path to skills JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	_ = cmd.MarkFlagRequired("cv")
	_ = cmd.MarkFlagRequired("roadmap")
	_ = cmd.MarkFlagRequired("skills")
	return cmd
}
