package hook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/phasegate/internal/config"
)

var (
	confidencePattern = regexp.MustCompile(`(?i)confidence\s*(?:score)?[:\s]+(\d+\.?\d*)%?`)
	proceedPattern    = regexp.MustCompile(`(?i)\bPROCEED\b`)
	blockPattern      = regexp.MustCompile(`(?i)\bBLOCK\b`)
	revisePattern     = regexp.MustCompile(`(?i)\bREVISE\b`)
)

// researchIndicators mark a subagent as a research task when they
// appear in its type or description.
var researchIndicators = []string{
	"research", "explore", "investigation", "exploration", "analysis",
}

// validatorIndicators mark a subagent as a plan validator.
var validatorIndicators = []string{
	"plan-validator", "validation", "validate plan",
}

// SubagentStop distills a finished subagent's output into phase
// guidance: research results feed the confidence threshold, validator
// results feed the plan gate.
func SubagentStop(env Env, req *Request) *Response {
	if !env.Initialized || !env.Cfg.Bool(config.KeyFICEnabled) {
		return Empty()
	}
	if !env.Cfg.Bool(config.KeyFICAutoDelegateResearch) {
		return Empty()
	}

	output := req.Output()
	if output == "" {
		return Empty()
	}

	kind := req.SubagentType() + " " + req.Description()
	switch {
	case matchesAny(kind, researchIndicators):
		return researchGuidance(env, output)
	case matchesAny(kind, validatorIndicators):
		return validatorGuidance(output)
	default:
		return Empty()
	}
}

func matchesAny(s string, indicators []string) bool {
	lower := strings.ToLower(s)
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func researchGuidance(env Env, output string) *Response {
	confidence := extractConfidence(output)
	threshold := env.Cfg.SubFloat(config.KeyFICConfig, config.FICResearchConfidence, 0.7)

	var b strings.Builder
	fmt.Fprintf(&b, "[FIC] Research subagent finished. Confidence: %.0f%%.\n", confidence*100)
	if confidence >= threshold {
		fmt.Fprintf(&b, "Confidence threshold met. Record it with `phasegate phase research-done --confidence %.2f` to unlock planning.", confidence)
	} else {
		fmt.Fprintf(&b, "Below the %.0f%% threshold. Continue research before planning.", threshold*100)
	}
	return Message(b.String())
}

func validatorGuidance(output string) *Response {
	switch extractRecommendation(output) {
	case "PROCEED":
		return Message("[FIC] Plan validated. Record it with `phasegate phase plan-validated` to unlock implementation.")
	case "BLOCK":
		return Message("[FIC] Plan validation BLOCKED. Major revision required before implementation.")
	case "REVISE":
		return Message("[FIC] Plan needs revision. Address the feedback before implementation.")
	default:
		return Empty()
	}
}

// extractConfidence pulls a confidence score out of free-form subagent
// output, normalizing percentages to the 0..1 range. Unparsable output
// reads as 0.5, the "unsure" midpoint.
func extractConfidence(output string) float64 {
	m := confidencePattern.FindStringSubmatch(output)
	if len(m) < 2 {
		return 0.5
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0.5
	}
	if value > 1 {
		value /= 100
	}
	if value > 1 {
		value = 1
	}
	if value < 0 {
		value = 0
	}
	return value
}

func extractRecommendation(output string) string {
	// BLOCK outranks REVISE outranks PROCEED when several appear.
	switch {
	case blockPattern.MatchString(output):
		return "BLOCK"
	case revisePattern.MatchString(output):
		return "REVISE"
	case proceedPattern.MatchString(output):
		return "PROCEED"
	default:
		return ""
	}
}
