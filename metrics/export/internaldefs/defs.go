package internaldefs

import (
	authkit "github.com/zetsy/authkit"
)

// CounterDef binds a metric ID to its stable exposition name.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram metric ID to its exposition name.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: authkit.MetricRegisterSuccess, Name: "authkit_register_success_total", Help: "Accounts created."},
	{ID: authkit.MetricRegisterDuplicate, Name: "authkit_register_duplicate_total", Help: "Registrations rejected for an already-taken email."},
	{ID: authkit.MetricRegisterFailure, Name: "authkit_register_failure_total", Help: "Registrations failed for other reasons."},
	{ID: authkit.MetricLoginSuccess, Name: "authkit_login_success_total", Help: "Successful login attempts."},
	{ID: authkit.MetricLoginFailure, Name: "authkit_login_failure_total", Help: "Failed login attempts."},
	{ID: authkit.MetricVerifyEmailSuccess, Name: "authkit_email_verification_success_total", Help: "Accepted email verification tokens."},
	{ID: authkit.MetricVerifyEmailFailure, Name: "authkit_email_verification_failure_total", Help: "Rejected email verification tokens."},
	{ID: authkit.MetricResetRequestSuccess, Name: "authkit_password_reset_request_total", Help: "Password reset challenges mailed."},
	{ID: authkit.MetricResetRequestFailure, Name: "authkit_password_reset_request_failure_total", Help: "Failed password reset requests."},
	{ID: authkit.MetricResetConfirmSuccess, Name: "authkit_password_reset_confirm_success_total", Help: "Passwords replaced through reset."},
	{ID: authkit.MetricResetConfirmFailure, Name: "authkit_password_reset_confirm_failure_total", Help: "Rejected password reset confirmations."},
	{ID: authkit.MetricMailEnqueued, Name: "authkit_mail_enqueued_total", Help: "Mail jobs handed to the background dispatcher."},
	{ID: authkit.MetricMailDropped, Name: "authkit_mail_dropped_total", Help: "Mail jobs dropped due to dispatcher backpressure."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricValidateLatency, Name: "authkit_validate_latency_seconds", Help: "Access token validation latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus style.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with metric-name-safe
// spellings for backends without native histogram support.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets widens a raw snapshot slice to the fixed bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms expose.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
