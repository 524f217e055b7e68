package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"alfredoptarigan/career-roadmap/internal/models"
	"alfredoptarigan/career-roadmap/internal/services"
)

// runQA answers questions read line by line until exit, quit, q or EOF.
func runQA(ctx context.Context, in io.Reader, out io.Writer, answerer services.Answerer, roadmap models.Roadmap, skills *models.SkillSet) error {
	fmt.Fprintln(out, "Welcome to the Career Roadmap Q&A Assistant!")
	fmt.Fprintln(out, "Ask questions about your roadmap or type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYour question: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "exit", "quit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "":
			continue
		}

		answer := answerer.AnswerQuestion(ctx, question, roadmap, skills)
		if answer.Failed() {
			fmt.Fprintf(out, "Error: %s\n", answer.Error)
			continue
		}
		fmt.Fprintf(out, "\nAnswer:\n%s\n", answer.Answer)
	}
}
