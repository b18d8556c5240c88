package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/churnscope/churnscope/internal/config"
	"github.com/churnscope/churnscope/internal/report"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	SourceID   string     `json:"source_id"`
	Segment    string     `json:"segment,omitempty"` // "attribute=value" for scoped rules
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against freshly built reports and delivers
// webhook notifications when rules fire or resolve.
//
// Engine is safe for concurrent use; Replace swaps the rule set on config
// hot-reload without dropping active alerts.
type Engine struct {
	mu       sync.Mutex
	rules    []config.AlertRule
	webhooks []config.WebhookConfig
	active   map[string]*Alert    // key: "ruleName:sourceID:scope"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
}

// New creates an Engine from the alert configuration.
// An Engine with empty rules is valid — Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Replace installs a new rule and webhook set, keeping alert state.
func (e *Engine) Replace(cfg config.AlertsConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = cfg.Rules
	e.webhooks = cfg.Webhooks
}

// Evaluate tests all configured rules against rep.
// Alerts that fire are stored and webhook delivery is triggered
// asynchronously. Alerts that were firing but whose condition is now false
// are resolved. Rules with an Attribute evaluate once per segment value of
// that attribute; rules without one evaluate against the report's global
// fields.
func (e *Engine) Evaluate(rep *report.Report) {
	e.mu.Lock()
	rules := e.rules
	e.mu.Unlock()
	if len(rules) == 0 {
		return
	}

	now := time.Now()
	for _, rule := range rules {
		if rule.Attribute == "" {
			fires, value := evalGlobal(rule.Condition, rep)
			e.transition(rule, rep.SourceID, "", fires, value, now)
			continue
		}

		segments, ok := rep.Segments[rule.Attribute]
		if !ok {
			slog.Warn("alerts: rule attribute not in report — skipping",
				"rule", rule.Name, "attribute", rule.Attribute)
			continue
		}
		for _, m := range segments {
			fires, value := evalSegment(rule.Condition, m)
			scope := rule.Attribute + "=" + m.Value
			e.transition(rule, rep.SourceID, scope, fires, value, now)
		}
	}
}

// transition applies one evaluation outcome to the engine state, firing or
// resolving the alert keyed by (rule, source, scope).
func (e *Engine) transition(rule config.AlertRule, sourceID, scope string, fires bool, value float64, now time.Time) {
	key := rule.Name + ":" + sourceID + ":" + scope

	e.mu.Lock()

	if fires {
		cooldown := rule.Cooldown
		if cooldown <= 0 {
			cooldown = defaultCooldown
		}
		if now.Sub(e.lastFire[key]) > cooldown {
			sev := rule.Severity
			if sev == "" {
				sev = "warning"
			}
			subject := sourceID
			if scope != "" {
				subject = sourceID + " " + scope
			}
			a := &Alert{
				ID:       fmt.Sprintf("%s:%s:%d", rule.Name, sourceID, now.UnixNano()),
				RuleName: rule.Name,
				SourceID: sourceID,
				Segment:  scope,
				Severity: sev,
				Value:    value,
				Message: fmt.Sprintf("[%s] %s fired on %s — %s = %.2f",
					sev, rule.Name, subject, rule.Condition, value),
				FiredAt: now,
				State:   "firing",
			}
			e.active[key] = a
			e.lastFire[key] = now
			alertCopy := *a
			e.mu.Unlock()

			slog.Warn("alert fired",
				"rule", rule.Name,
				"source", sourceID,
				"segment", scope,
				"value", value,
				"severity", sev,
			)
			go e.deliver(&alertCopy)
			return
		}
		e.mu.Unlock()
		return
	}

	if a, ok := e.active[key]; ok && a.State == "firing" {
		resolved := now
		a.State = "resolved"
		a.ResolvedAt = &resolved
		delete(e.active, key)

		e.history = append(e.history, a)
		if len(e.history) > maxHistoryLen {
			e.history = e.history[len(e.history)-maxHistoryLen:]
		}
		alertCopy := *a
		e.mu.Unlock()

		slog.Info("alert resolved",
			"rule", rule.Name,
			"source", sourceID,
			"segment", scope,
		)
		go e.deliver(&alertCopy)
		return
	}
	e.mu.Unlock()
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour, sorted by the map's iteration order.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}
