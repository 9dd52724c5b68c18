package notifications

import "fmt"

// render maps a template name to a subject and HTML body. Deliberately a
// plain lookup, not a template engine.
func render(template string, data map[string]any) (subject, html string, err error) {
	switch template {
	case TemplateWelcome:
		subject = "Welcome to ClassMatch!"
		html = fmt.Sprintf("<h1>Welcome, %v!</h1><p>Submit your availability and we will match you into a group class.</p>", data["fullName"])
	case TemplateMatchFound:
		subject = "We found a class match!"
		html = fmt.Sprintf("<h1>Match Found</h1><p>Enough people are available for %v on %v at %v. A class has been created for you.</p>",
			data["classType"], data["day"], data["time"])
	case TemplateClassJoined:
		subject = "Your spot is confirmed!"
		html = fmt.Sprintf("<h1>Spot Confirmed</h1><p>You are enrolled in %v on %v at %v. The class is now %v full with %v spot(s) left.</p>",
			data["classType"], data["day"], data["time"], data["fillRate"], data["spotsLeft"])
	default:
		return "", "", fmt.Errorf("unknown notification template %q", template)
	}
	return subject, html, nil
}
