package config

// Setting keys used by the harness itself. The config file may carry any
// additional keys; they pass through load and save untouched.
const (
	KeyStrictness                = "strictness"
	KeyAutoProgressLogging       = "auto_progress_logging"
	KeyAutoCheckpointSuggestions = "auto_checkpoint_suggestions"
	KeyFeatureEnforcement        = "feature_enforcement"
	KeyBaselineTestsOnStartup    = "baseline_tests_on_startup"
	KeyInitScriptExecution       = "init_script_execution"
	KeyBrowserAutomation         = "browser_automation"
	KeySignificantChangeLines    = "significant_change_threshold"
	KeyCheckpointInterval        = "checkpoint_interval_minutes"
	KeyTestCommands              = "test_commands"
	KeyBrowserConfig             = "browser_config"
	KeyFICEnabled                = "fic_enabled"
	KeyFICStrictGates            = "fic_strict_gates"
	KeyFICAutoDelegateResearch   = "fic_auto_delegate_research"
	KeyFICContextTracking        = "fic_context_tracking"
	KeyFICArtifactWorkflow       = "fic_artifact_workflow"
	KeyFICKnowledgeGraph         = "fic_knowledge_graph_enabled"
	KeyFICConfig                 = "fic_config"
)

// Keys inside the fic_config table.
const (
	FICTargetUtilizationLow       = "target_utilization_low"
	FICTargetUtilizationHigh      = "target_utilization_high"
	FICAutoCompactThreshold       = "auto_compact_threshold"
	FICResearchConfidence         = "research_confidence_threshold"
	FICMaxOpenQuestions           = "max_open_questions"
	FICCompactionToolThreshold    = "compaction_tool_threshold"
	FICResearchDelegationPatterns = "research_delegation_patterns"
	FICPreserveEssentialOnCompact = "preserve_essential_on_compact"
	FICAutoCreateArtifacts        = "auto_create_artifacts"
)

// Defaults returns the built-in configuration. The maps are constructed
// fresh on every call so a merged or mutated configuration can never
// corrupt future defaults.
func Defaults() Config {
	return Config{
		KeyStrictness:                StrictnessStandard,
		KeyAutoProgressLogging:       true,
		KeyAutoCheckpointSuggestions: true,
		KeyFeatureEnforcement:        true,
		KeyBaselineTestsOnStartup:    true,
		KeyInitScriptExecution:       true,
		KeyBrowserAutomation:         false,
		KeySignificantChangeLines:    50,
		KeyCheckpointInterval:        30,
		KeyTestCommands: map[string]any{
			"node":   "npm test",
			"python": "pytest",
			"rust":   "cargo test",
			"go":     "go test ./...",
			"java":   "mvn test",
		},
		KeyBrowserConfig: map[string]any{
			"headless":       true,
			"timeout":        30000,
			"screenshot_dir": ".claude/screenshots",
		},
		KeyFICEnabled:              true,
		KeyFICStrictGates:          true,
		KeyFICAutoDelegateResearch: true,
		KeyFICContextTracking:      true,
		KeyFICArtifactWorkflow:     true,
		KeyFICKnowledgeGraph:       false,
		KeyFICConfig: map[string]any{
			FICTargetUtilizationLow:    0.40,
			FICTargetUtilizationHigh:   0.60,
			FICAutoCompactThreshold:    0.70,
			FICResearchConfidence:      0.7,
			FICMaxOpenQuestions:        2,
			FICCompactionToolThreshold: 25,
			FICResearchDelegationPatterns: []string{
				"investigate",
				"research",
				"explore",
				"analyze codebase",
				"find implementation",
				"understand how",
			},
			FICPreserveEssentialOnCompact: true,
			FICAutoCreateArtifacts:        true,
		},
	}
}
