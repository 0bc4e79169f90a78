package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus tag errors and
// softer warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.App.LogLevel = strings.ToLower(strings.TrimSpace(out.App.LogLevel))
	out.Enrichment.ConvexURL = strings.TrimRight(strings.TrimSpace(out.Enrichment.ConvexURL), "/")
	out.Enrichment.EndpointPath = strings.TrimSpace(out.Enrichment.EndpointPath)
	if out.Enrichment.EndpointPath != "" && !strings.HasPrefix(out.Enrichment.EndpointPath, "/") {
		out.Enrichment.EndpointPath = "/" + out.Enrichment.EndpointPath
	}

	for _, line := range validationLines(out) {
		res.addErr("%s", line)
	}

	if out.Enrichment.ConvexURL == "" {
		res.addWarn("enrichment.convex_url is empty; every sponsorship lookup will report source=error.")
	} else if u, err := url.Parse(out.Enrichment.ConvexURL); err == nil && u.Scheme != "https" {
		res.addWarn("enrichment.convex_url uses %q; the hosted endpoint expects https.", u.Scheme)
	}

	rl := out.Enrichment.RateLimit
	if rl.WindowSeconds > 0 && rl.MaxPerWindow*60/rl.WindowSeconds > 30 {
		res.addWarn("enrichment.rate_limit allows %d lookups per %ds; the endpoint may answer 429.", rl.MaxPerWindow, rl.WindowSeconds)
	}
	if out.Scan.BatchPauseMs < 100 {
		res.addWarn("scan.batch_pause_ms is very low (%d) and may cause rate limits.", out.Scan.BatchPauseMs)
	}
	if out.Scan.PollSeconds > 0 && out.Scan.PollSeconds < 5 {
		res.addWarn("scan.poll_seconds is very low (%d); pages are refetched that often.", out.Scan.PollSeconds)
	}
	if out.Fetch.ReqPerSec > 2 {
		res.addWarn("fetch.req_per_sec is %.1f; job boards may block the agent.", out.Fetch.ReqPerSec)
	}

	return out, res
}
