// Package caaml reads and writes snow profiles as CAAML v6 XML documents
// (IACS SnowProfile schema).
package caaml

import (
	"fmt"
	"strings"
)

// Version is a supported CAAML schema version. Versions are ordered and
// compared as integers.
type Version int

const (
	V605 Version = iota + 1
	V606
)

// DefaultVersion is the version written when none is requested.
const DefaultVersion = V605

// GMLNamespace is the namespace of the geometry elements.
const GMLNamespace = "http://www.opengis.net/gml"

const namespacePrefix = "http://caaml.org/Schemas/SnowProfileIACS/v"

var versionNames = map[Version]string{
	V605: "6.0.5",
	V606: "6.0.6",
}

// ParseVersion accepts "6.0.5" and "6.0.6", with or without a leading "v".
// An empty string selects DefaultVersion.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return DefaultVersion, nil
	}
	for v, name := range versionNames {
		if name == s {
			return v, nil
		}
	}
	return 0, &UnsupportedVersionError{Version: s}
}

// VersionFromNamespace returns the version of a CAAML SnowProfile namespace.
func VersionFromNamespace(ns string) (Version, bool) {
	if !strings.HasPrefix(ns, namespacePrefix) {
		return 0, false
	}
	v, err := ParseVersion(strings.TrimPrefix(ns, namespacePrefix))
	return v, err == nil
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// Namespace is the SnowProfile namespace URI of the version.
func (v Version) Namespace() string {
	return namespacePrefix + v.String()
}

// AtLeast reports whether v is o or a later version.
func (v Version) AtLeast(o Version) bool {
	return v >= o
}
