// Package alerts evaluates threshold rules against freshly built analysis
// reports and delivers webhook notifications on state changes.
//
// A rule is either global ("overall_churn_rate > 30",
// "revenue_at_risk_annual > 1500000") or scoped to a segment attribute, in
// which case it runs once per segment value ("churn_rate > 40" on
// "contract" fires separately for Month-to-month, One year, Two year).
// Alerts follow a firing/resolved lifecycle with a per-rule cooldown;
// resolved alerts stay queryable for an hour.
package alerts
