package oidc

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// claimExtractor pulls identity fields out of raw token claims using
// JMESPath expressions, so deployments can adapt to providers that nest or
// rename claims without code changes.
type claimExtractor struct {
	subjectExpr string
	emailExpr   string
	nameExpr    string
}

func newClaimExtractor(subjectExpr, emailExpr, nameExpr string) (*claimExtractor, error) {
	e := &claimExtractor{
		subjectExpr: defaultExpr(subjectExpr, "sub"),
		emailExpr:   defaultExpr(emailExpr, "email"),
		nameExpr:    defaultExpr(nameExpr, "name"),
	}
	for _, expr := range []string{e.subjectExpr, e.emailExpr, e.nameExpr} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("compile claim expression %q: %w", expr, err)
		}
	}
	return e, nil
}

func defaultExpr(expr, fallback string) string {
	if strings.TrimSpace(expr) == "" {
		return fallback
	}
	return expr
}

// identityFields is the provider-agnostic result of claim extraction.
type identityFields struct {
	subject string
	email   string
	name    string
}

// extract evaluates the configured expressions against a claims document.
// Missing or non-string results yield empty fields, never errors; the caller
// decides which fields are mandatory.
func (e *claimExtractor) extract(claims map[string]any) identityFields {
	return identityFields{
		subject: evalString(e.subjectExpr, claims),
		email:   evalString(e.emailExpr, claims),
		name:    evalString(e.nameExpr, claims),
	}
}

// merge fills empty fields of f from other.
func (f *identityFields) merge(other identityFields) {
	if f.subject == "" {
		f.subject = other.subject
	}
	if f.email == "" {
		f.email = other.email
	}
	if f.name == "" {
		f.name = other.name
	}
}

func evalString(expr string, data map[string]any) string {
	res, err := jmespath.Search(expr, data)
	if err != nil {
		return ""
	}
	s, ok := res.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
