// Package streamname derives canonical stream identifiers from logical
// event-type descriptors.
//
// A descriptor identifies a versioned event type published by a service,
// written as a dotted path like "io.fieldline.loadgen.v0.models.LoadEvent".
// Resolution combines the descriptor with a deployment environment to
// produce the stream name, e.g. "production.loadgen.v0.load_event.json".
// Development and workstation deployments share a single namespace prefix
// so local runs and workstation runs address the same streams.
package streamname

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Environment identifies the deployment environment stream names are
// resolved for.
type Environment string

const (
	Development Environment = "development"
	Workstation Environment = "workstation"
	Production  Environment = "production"
)

// prefix returns the stream namespace prefix for the environment.
// Development and workstation collapse to one shared prefix.
func (e Environment) prefix() (string, error) {
	switch e {
	case Development, Workstation:
		return "development_workstation", nil
	case Production:
		return "production", nil
	default:
		return "", fmt.Errorf(
			"invalid environment %q: expected one of %q, %q, %q",
			string(e), Development, Workstation, Production,
		)
	}
}

// Descriptor is the parsed form of a fully qualified event-type path.
type Descriptor struct {
	Namespace string // reverse-domain organization prefix, e.g. "io.fieldline"
	Service   string // dotted service path, e.g. "loadgen" or "payments.internal"
	Version   int    // API version, the N in ".vN."
	Name      string // terminal type name, e.g. "LoadEvent"
}

// typePattern matches fully qualified event types of the form
// {org}.{service}.v{version}.models.{TypeName}, where org is the leading
// two reverse-domain segments and service is one or more further segments.
var typePattern = regexp.MustCompile(
	`^([a-z][a-z0-9]*\.[a-z][a-z0-9]*)\.([a-z][a-z0-9]*(?:\.[a-z][a-z0-9]*)*)\.v([0-9]+)\.models\.([A-Z][A-Za-z0-9]*)$`,
)

// Parse splits a fully qualified event-type path into a Descriptor.
//
// Parse fails if the path does not carry the ".vN.models." marker or is
// otherwise malformed. The error names the offending input and the expected
// shape; callers should treat it as a fatal configuration error.
func Parse(qualified string) (Descriptor, error) {
	m := typePattern.FindStringSubmatch(qualified)
	if m == nil {
		return Descriptor{}, fmt.Errorf(
			"invalid event type %q: expected {namespace}.{service}.v{version}.models.{TypeName}, e.g. io.fieldline.loadgen.v0.models.LoadEvent",
			qualified,
		)
	}
	version, err := strconv.Atoi(m[3])
	if err != nil {
		return Descriptor{}, fmt.Errorf("invalid version in event type %q: %w", qualified, err)
	}
	return Descriptor{
		Namespace: m[1],
		Service:   m[2],
		Version:   version,
		Name:      m[4],
	}, nil
}

// Resolve produces the canonical stream name for d in the given environment:
// {envPrefix}.{service}.v{version}.{snake_case(name)}.json.
func Resolve(d Descriptor, env Environment) (string, error) {
	p, err := env.prefix()
	if err != nil {
		return "", err
	}
	if d.Service == "" || d.Name == "" {
		return "", fmt.Errorf(
			"incomplete descriptor %+v: service and name are required", d,
		)
	}
	return fmt.Sprintf("%s.%s.v%d.%s.json", p, d.Service, d.Version, snakeCase(d.Name)), nil
}

var (
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// snakeCase converts a CamelCase type name to snake_case, keeping acronym
// runs together: "CardAuthorization" -> "card_authorization",
// "HTTPRequest" -> "http_request".
func snakeCase(name string) string {
	s := acronymBoundary.ReplaceAllString(name, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}
