package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateKey identifies a message template.
type TemplateKey string

const (
	TemplateAdoptionSubmitted TemplateKey = "adoption_submitted"
	TemplateAdoptionApproved  TemplateKey = "adoption_approved"
	TemplateAdoptionRejected  TemplateKey = "adoption_rejected"
	TemplateUserBanned        TemplateKey = "user_banned"
	TemplateUserUnbanned      TemplateKey = "user_unbanned"
	TemplateVendorApproved    TemplateKey = "vendor_approved"
	TemplateVendorRejected    TemplateKey = "vendor_rejected"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templateSources = map[TemplateKey][2]string{
	TemplateAdoptionSubmitted: {
		"New adoption request for {{.PetName}}",
		"Hello {{.VendorName}},\n\n{{.ApplicantName}} has applied to adopt {{.PetName}} (request {{.AdoptionID}}). Review it from your dashboard.",
	},
	TemplateAdoptionApproved: {
		"Your adoption of {{.PetName}} was approved",
		"Hi {{.ApplicantName}}, great news! Your request to adopt {{.PetName}} has been approved. The shelter will contact you with next steps.",
	},
	TemplateAdoptionRejected: {
		"Update on your request for {{.PetName}}",
		"Hi {{.ApplicantName}}, unfortunately your request to adopt {{.PetName}} was not approved this time.",
	},
	TemplateUserBanned: {
		"Your account has been suspended",
		"Hi {{.Name}}, your account has been suspended{{if .Reason}} for: {{.Reason}}{{end}}. Access will be restored on {{.Until}}.",
	},
	TemplateUserUnbanned: {
		"Your account has been restored",
		"Hi {{.Name}}, your account is active again. Welcome back!",
	},
	TemplateVendorApproved: {
		"{{.OrganizationName}} is now a verified shelter",
		"Congratulations! Your application for {{.OrganizationName}} was approved. You can now list pets for adoption.",
	},
	TemplateVendorRejected: {
		"Your shelter application for {{.OrganizationName}}",
		"Your application for {{.OrganizationName}} was not approved{{if .Reason}}: {{.Reason}}{{end}}.",
	},
}

// Templates renders messages by key.
type Templates struct {
	byKey map[TemplateKey]messageTemplate
}

// DefaultTemplates parses the built-in templates. Missing data keys render as
// empty strings.
func DefaultTemplates() *Templates {
	t := &Templates{byKey: make(map[TemplateKey]messageTemplate, len(templateSources))}
	for key, src := range templateSources {
		t.byKey[key] = messageTemplate{
			subject: template.Must(template.New(string(key) + ".subject").Option("missingkey=zero").Parse(src[0])),
			body:    template.Must(template.New(string(key) + ".body").Option("missingkey=zero").Parse(src[1])),
		}
	}
	return t
}

// Render executes the template for key against data.
func (t *Templates) Render(key TemplateKey, data map[string]any) (Message, error) {
	tmpl, ok := t.byKey[key]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", key)
	}
	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", key, err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", key, err)
	}
	return Message{Subject: subject.String(), Body: body.String()}, nil
}
