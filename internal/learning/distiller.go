// Package learning aggregates per-session feedback into durable
// per-style preferences that steer future editorial passes.
package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/samefarrar/inkwell/internal/repository"
)

// Preference keys.
const lastStyleKey = "last_style"

// LastStyleKey is where the most recently used writing style is stored.
func LastStyleKey() string { return lastStyleKey }

// RuleStatsKey is the preference key holding accumulated rule
// statistics for one writing style.
func RuleStatsKey(styleID string) string {
	return fmt.Sprintf("voice:%s:rule_stats", styleID)
}

// minSignal is how many recorded actions a rule needs before its
// statistics influence prompts.
const minSignal = 3

// RuleCounts tallies decisions against one rule.
type RuleCounts struct {
	Accept  int `json:"accept"`
	Reject  int `json:"reject"`
	Dismiss int `json:"dismiss"`
}

func (c RuleCounts) total() int { return c.Accept + c.Reject + c.Dismiss }

// RuleStats maps rule IDs to their accumulated counts.
type RuleStats map[string]*RuleCounts

// Distiller folds session feedback into per-style rule statistics.
type Distiller struct {
	feedback repository.FeedbackRepo
	prefs    repository.PreferenceRepo
	logger   *slog.Logger
}

func NewDistiller(feedback repository.FeedbackRepo, prefs repository.PreferenceRepo, logger *slog.Logger) *Distiller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Distiller{feedback: feedback, prefs: prefs, logger: logger}
}

// DistillSession merges one session's feedback into the style's running
// tallies. Designed for fire-and-forget use: it logs and never returns
// an error.
func (d *Distiller) DistillSession(ctx context.Context, userID, styleID, sessionID string) {
	stats, err := d.LoadRuleStats(ctx, userID, styleID)
	if err != nil {
		d.logger.Error("load rule stats failed", "session_id", sessionID, "error", err)
		return
	}

	rows, err := d.feedback.ListBySession(ctx, sessionID)
	if err != nil {
		d.logger.Error("load session feedback failed", "session_id", sessionID, "error", err)
		return
	}
	if len(rows) == 0 {
		d.logger.Debug("no feedback to distill", "session_id", sessionID)
		return
	}

	accepted := 0
	for _, fb := range rows {
		rule := fb.RuleID
		if rule == "" {
			rule = "unknown"
		}
		counts, ok := stats[rule]
		if !ok {
			counts = &RuleCounts{}
			stats[rule] = counts
		}
		switch {
		case fb.Action == "accept" || (fb.Action == "" && fb.Accepted):
			counts.Accept++
		case fb.Action == "dismiss":
			counts.Dismiss++
		default:
			counts.Reject++
		}
		if fb.Accepted {
			accepted++
		}
	}

	value, err := json.Marshal(stats)
	if err != nil {
		d.logger.Error("marshal rule stats failed", "session_id", sessionID, "error", err)
		return
	}
	if err := d.prefs.Set(ctx, userID, RuleStatsKey(styleID), string(value)); err != nil {
		d.logger.Error("store rule stats failed", "session_id", sessionID, "error", err)
		return
	}

	d.logger.Info("distilled session feedback",
		"session_id", sessionID,
		"style_id", styleID,
		"feedback_count", len(rows),
		"accepted", accepted)
}

// LoadRuleStats returns accumulated rule statistics for a style. A
// missing or corrupt preference yields empty stats.
func (d *Distiller) LoadRuleStats(ctx context.Context, userID, styleID string) (RuleStats, error) {
	pref, err := d.prefs.Get(ctx, userID, RuleStatsKey(styleID))
	if errors.Is(err, repository.ErrNotFound) {
		return RuleStats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rule stats: %w", err)
	}

	var stats RuleStats
	if err := json.Unmarshal([]byte(pref.Value), &stats); err != nil {
		d.logger.Warn("corrupt rule stats, resetting", "user_id", userID, "error", err)
		return RuleStats{}, nil
	}
	if stats == nil {
		stats = RuleStats{}
	}
	return stats, nil
}

// FormatRuleStats renders stats as a prompt context block. Only rules
// with enough signal are surfaced; returns "" when nothing qualifies.
func FormatRuleStats(stats RuleStats) string {
	var applied, dismissed []string

	rules := make([]string, 0, len(stats))
	for rule := range stats {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	for _, rule := range rules {
		counts := stats[rule]
		total := counts.total()
		if total < minSignal {
			continue
		}
		acceptRate := float64(counts.Accept) / float64(total)
		rejectRate := float64(counts.Reject+counts.Dismiss) / float64(total)
		switch {
		case acceptRate >= 0.7:
			applied = append(applied, rule)
		case rejectRate >= 0.7:
			dismissed = append(dismissed, rule)
		}
	}

	if len(applied) == 0 && len(dismissed) == 0 {
		return ""
	}

	lines := []string{"EDITORIAL PREFERENCES (based on past sessions):"}
	if len(applied) > 0 {
		lines = append(lines, "Rules this writer consistently applies: "+strings.Join(applied, ", "))
	}
	if len(dismissed) > 0 {
		lines = append(lines, "Rules this writer rarely needs (deprioritise): "+strings.Join(dismissed, ", "))
	}
	return strings.Join(lines, "\n")
}

// PrefContext loads and formats the editorial preference block for a
// style. Empty when the style is unset or has no accumulated signal.
func (d *Distiller) PrefContext(ctx context.Context, userID, styleID string) string {
	if styleID == "" {
		return ""
	}
	stats, err := d.LoadRuleStats(ctx, userID, styleID)
	if err != nil {
		d.logger.Warn("pref context unavailable", "user_id", userID, "error", err)
		return ""
	}
	return FormatRuleStats(stats)
}
