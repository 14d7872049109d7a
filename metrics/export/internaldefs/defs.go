// Package internaldefs is the shared metric naming table for the exporter
// packages. It exists so the Prometheus and OTel exporters render the same
// names from the same IDs.
package internaldefs

import (
	"github.com/membergate/membergate"
)

// CounterDef binds a membergate counter ID to its exported name and help
// text.
type CounterDef struct {
	ID   membergate.MetricID
	Name string
	Help string
}

// HistogramDef binds a membergate histogram ID to its exported name and
// help text.
type HistogramDef struct {
	ID   membergate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: membergate.MetricSignupSuccess, Name: "membergate_signup_success_total", Help: "Successful account creations."},
	{ID: membergate.MetricSignupDuplicate, Name: "membergate_signup_duplicate_total", Help: "Signup attempts rejected as duplicate."},
	{ID: membergate.MetricSignupFailure, Name: "membergate_signup_failure_total", Help: "Signup attempts rejected for other reasons."},
	{ID: membergate.MetricSigninSuccess, Name: "membergate_signin_success_total", Help: "Successful sign-ins."},
	{ID: membergate.MetricSigninFailure, Name: "membergate_signin_failure_total", Help: "Sign-ins rejected for bad credentials."},
	{ID: membergate.MetricSigninLocked, Name: "membergate_signin_locked_total", Help: "Sign-ins rejected by the lock window."},
	{ID: membergate.MetricAuthenticateSuccess, Name: "membergate_authenticate_success_total", Help: "Successful token authentications."},
	{ID: membergate.MetricAuthenticateFailure, Name: "membergate_authenticate_failure_total", Help: "Rejected token authentications."},
	{ID: membergate.MetricSignout, Name: "membergate_signout_total", Help: "Signout operations, including no-ops."},
	{ID: membergate.MetricSessionIssued, Name: "membergate_session_issued_total", Help: "Issued session tokens."},
	{ID: membergate.MetricSessionSuperseded, Name: "membergate_session_superseded_total", Help: "Sign-ins that replaced a live session."},
	{ID: membergate.MetricPasswordRehash, Name: "membergate_password_rehash_total", Help: "Transparent credential rehashes on sign-in."},
}

// HistogramDefs lists every exported histogram in render order.
var HistogramDefs = []HistogramDef{
	{ID: membergate.MetricAuthenticateLatency, Name: "membergate_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the upper bounds of the core latency buckets, in
// seconds, as Prometheus `le` label values.
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

// HistogramBoundSuffix mirrors HistogramBounds as identifier-safe suffixes
// for backends that reject label syntax in names.
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

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both export formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
