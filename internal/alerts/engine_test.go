package alerts

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/churnscope/churnscope/internal/config"
	"github.com/churnscope/churnscope/internal/engine"
	"github.com/churnscope/churnscope/internal/report"
)

func testReport(rate float64) *report.Report {
	return &report.Report{
		SourceID:         "telco",
		TotalCustomers:   1000,
		ChurnedCustomers: int(rate * 10),
		OverallChurnRate: rate,
		Segments: map[string][]engine.CategoryMetric{
			"contract": {
				{Attribute: "contract", Value: "Month-to-month", Total: 500, Churned: 250, ChurnRate: 50},
				{Attribute: "contract", Value: "Two year", Total: 500, Churned: 25, ChurnRate: 5},
			},
		},
	}
}

func globalRule(name, cond string) config.AlertRule {
	return config.AlertRule{Name: name, Condition: cond, Severity: "critical"}
}

func TestEvaluate_FireAndResolve(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		globalRule("HighChurn", "overall_churn_rate > 30"),
	}})

	e.Evaluate(testReport(40))
	active := e.Active()
	if len(active) != 1 {
		t.Fatalf("after fire: %d active, want 1", len(active))
	}
	a := active[0]
	if a.RuleName != "HighChurn" || a.State != "firing" || a.Value != 40 {
		t.Errorf("alert = %+v", a)
	}

	// Condition clears — alert resolves and moves to recent history.
	e.Evaluate(testReport(20))
	active = e.Active()
	if len(active) != 1 {
		t.Fatalf("after resolve: %d entries, want 1 (recently resolved)", len(active))
	}
	if active[0].State != "resolved" || active[0].ResolvedAt == nil {
		t.Errorf("resolved alert = %+v", active[0])
	}
}

func TestEvaluate_CooldownSuppressesRefire(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "HighChurn", Condition: "overall_churn_rate > 30", Cooldown: time.Hour},
	}})

	e.Evaluate(testReport(40))
	e.Evaluate(testReport(20)) // resolve
	e.Evaluate(testReport(40)) // would re-fire, but within cooldown

	for _, a := range e.Active() {
		if a.State == "firing" {
			t.Errorf("alert re-fired within cooldown: %+v", a)
		}
	}
}

func TestEvaluate_RefireAfterCooldown(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "HighChurn", Condition: "overall_churn_rate > 30", Cooldown: time.Nanosecond},
	}})

	e.Evaluate(testReport(40))
	e.Evaluate(testReport(20))
	time.Sleep(time.Millisecond)
	e.Evaluate(testReport(40))

	firing := 0
	for _, a := range e.Active() {
		if a.State == "firing" {
			firing++
		}
	}
	if firing != 1 {
		t.Errorf("after cooldown elapsed: %d firing, want 1", firing)
	}
}

func TestEvaluate_SegmentRule(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "SegmentChurn", Attribute: "contract", Condition: "churn_rate > 40", Severity: "warning"},
	}})

	e.Evaluate(testReport(30))
	active := e.Active()
	// Only the month-to-month segment is above 40.
	if len(active) != 1 {
		t.Fatalf("%d active, want 1", len(active))
	}
	if active[0].Segment != "contract=Month-to-month" {
		t.Errorf("Segment = %q, want contract=Month-to-month", active[0].Segment)
	}
}

func TestEvaluate_UnknownAttributeSkipped(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "Ghost", Attribute: "shoe_size", Condition: "churn_rate > 1"},
	}})
	e.Evaluate(testReport(40))
	if n := len(e.Active()); n != 0 {
		t.Errorf("%d active, want 0 (rule attribute absent from report)", n)
	}
}

func TestEvaluate_NoRules(t *testing.T) {
	e := New(config.AlertsConfig{})
	e.Evaluate(testReport(99))
	if n := len(e.Active()); n != 0 {
		t.Errorf("%d active, want 0", n)
	}
}

func TestReplace_KeepsActiveAlerts(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		globalRule("HighChurn", "overall_churn_rate > 30"),
	}})
	e.Evaluate(testReport(40))

	e.Replace(config.AlertsConfig{Rules: []config.AlertRule{
		globalRule("Other", "total_customers > 1"),
	}})
	if n := len(e.Active()); n != 1 {
		t.Errorf("after Replace: %d active, want the pre-existing alert kept", n)
	}
}

func TestWebhookDelivery(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- string(body)
	}))
	defer srv.Close()

	t.Setenv("TEST_WEBHOOK_URL", srv.URL)
	e := New(config.AlertsConfig{
		Rules: []config.AlertRule{globalRule("HighChurn", "overall_churn_rate > 30")},
		Webhooks: []config.WebhookConfig{
			{Type: "slack", URLEnv: "TEST_WEBHOOK_URL"},
		},
	})

	e.Evaluate(testReport(40))

	select {
	case body := <-got:
		// Slack payloads carry the message under "text".
		if !strings.Contains(body, `"text"`) || !strings.Contains(body, "HighChurn") {
			t.Errorf("webhook payload = %q, want a Slack text message", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not delivered within 2s")
	}
}
