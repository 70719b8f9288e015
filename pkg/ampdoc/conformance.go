package ampdoc

import "strings"

// ConformanceCheck is one structural marker an AMP email must carry.
type ConformanceCheck struct {
	// Any of these literals satisfies the check.
	Markers []string
	Message string
}

// ConformanceChecks are evaluated in order by CheckConformance.
var ConformanceChecks = []ConformanceCheck{
	{Markers: []string{"⚡4email", "amp4email"}, Message: "Missing ⚡4email on <html>."},
	{Markers: []string{"https://cdn.ampproject.org/v0.js"}, Message: "Missing core AMP script."},
	{Markers: []string{"<style amp4email-boilerplate"}, Message: "Missing amp4email boilerplate."},
}

// CheckConformance returns the message of every check whose markers are all
// absent from doc. An empty result means the document passed.
func CheckConformance(doc string) []string {
	var missing []string
	for _, check := range ConformanceChecks {
		if !containsAny(doc, check.Markers) {
			missing = append(missing, check.Message)
		}
	}
	return missing
}

func containsAny(doc string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(doc, m) {
			return true
		}
	}
	return false
}
