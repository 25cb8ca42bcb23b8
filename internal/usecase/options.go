// Package usecase orchestrates reading, checking, converting and modifying
// models.
package usecase

import (
	"fmt"
	"strings"
)

// Profile names.
const (
	ProfileCF      = "cf"
	ProfileDefault = "default"
	ProfileStation = "station"
)

// CheckOptionSets lists the option strings ParseCheckOptions accepts.
var CheckOptionSets = []string{"", "cf", "default", "station", "cf+default", "cf+default+station"}

// CheckOptions selects the profile checks run after the consistency check.
type CheckOptions struct {
	CF      bool `json:"cf"`
	Default bool `json:"default"`
	Station bool `json:"station"`
}

// ParseCheckOptions parses one of CheckOptionSets. The empty string selects
// only the consistency check.
func ParseCheckOptions(s string) (CheckOptions, error) {
	valid := false
	for _, set := range CheckOptionSets {
		if s == set {
			valid = true
			break
		}
	}
	if !valid {
		return CheckOptions{}, fmt.Errorf("invalid check options %q, expected one of %q", s, CheckOptionSets)
	}
	opts, err := CheckOptionsFromProfiles(strings.Split(s, "+"))
	if err != nil {
		return CheckOptions{}, err
	}
	return opts, nil
}

// CheckOptionsFromProfiles enables each named profile. Empty names are
// ignored.
func CheckOptionsFromProfiles(names []string) (CheckOptions, error) {
	var o CheckOptions
	for _, n := range names {
		switch strings.TrimSpace(n) {
		case "":
		case ProfileCF:
			o.CF = true
		case ProfileDefault:
			o.Default = true
		case ProfileStation:
			o.Station = true
		default:
			return CheckOptions{}, fmt.Errorf("unknown check profile %q", n)
		}
	}
	return o, nil
}

// String joins the enabled profiles with "+" in run order.
func (o CheckOptions) String() string {
	var parts []string
	if o.CF {
		parts = append(parts, ProfileCF)
	}
	if o.Default {
		parts = append(parts, ProfileDefault)
	}
	if o.Station {
		parts = append(parts, ProfileStation)
	}
	return strings.Join(parts, "+")
}
