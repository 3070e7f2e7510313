package scw

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"c6t/teamserver"
)

// RuleClient is the TeamServer side of the integration.
type RuleClient interface {
	Rules(ctx context.Context) ([]teamserver.Rule, error)
	UpdateRuleReferences(ctx context.Context, ruleName string, references []string) error
}

// TrainingSource looks up training material by CWE id.
type TrainingSource interface {
	TrainingURL(cwe string) string
	Training(ctx context.Context, cwe string) (Training, error)
}

type Summary struct {
	Processed int
	Updated   int
	Skipped   int
}

type Service struct {
	rules     RuleClient
	trainings TrainingSource
	logger    *log.Logger
	out       io.Writer
}

func NewService(rules RuleClient, trainings TrainingSource, logger *log.Logger, out io.Writer) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if out == nil {
		out = io.Discard
	}
	return &Service{rules: rules, trainings: trainings, logger: logger, out: out}
}

// Create adds training references to every rule that has a video or at
// least one supported language. The first failed update stops the run.
func (s *Service) Create(ctx context.Context) (Summary, error) {
	if s.trainings == nil {
		return Summary{}, fmt.Errorf("training source is required")
	}
	rules, err := s.rules.Rules(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list rules: %w", err)
	}

	var summary Summary
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++
		fmt.Fprintf(s.out, "Processing rule: %s/%s\n", rule.Name, rule.Title)

		cwe := rule.CWEID()
		training, err := s.trainings.Training(ctx, cwe)
		if err != nil {
			return summary, fmt.Errorf("rule %s: %w", rule.Name, err)
		}

		refs := BuildReferences(rule, s.trainings.TrainingURL(cwe), training)
		if len(refs) == 0 {
			summary.Skipped++
			fmt.Fprintf(s.out, "[WARNING] %s/%s no references added\n", rule.Name, rule.Title)
			continue
		}
		s.logger.Debug("updating rule references", "rule", rule.Name, "cwe", cwe, "references", len(refs))

		if err := s.rules.UpdateRuleReferences(ctx, rule.Name, refs); err != nil {
			return summary, fmt.Errorf("update rule %s: %w", rule.Name, err)
		}
		summary.Updated++
		fmt.Fprintf(s.out, "%s/%s updated successfully\n", rule.Name, rule.Title)
	}
	return summary, nil
}

// Delete clears the references of every rule, which restores the default
// TeamServer links.
func (s *Service) Delete(ctx context.Context) (Summary, error) {
	rules, err := s.rules.Rules(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list rules: %w", err)
	}

	var summary Summary
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++
		if err := s.rules.UpdateRuleReferences(ctx, rule.Name, nil); err != nil {
			return summary, fmt.Errorf("reset rule %s: %w", rule.Name, err)
		}
		summary.Updated++
		fmt.Fprintf(s.out, "%s reset successfully\n", rule.Title)
	}
	return summary, nil
}
