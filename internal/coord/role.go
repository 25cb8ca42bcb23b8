// Package coord classifies dimension and variable names into coordinate
// roles and converts coordinate arrays to and from their compact record form.
package coord

import (
	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/domain"
)

// Role is the coordinate role of a name.
type Role int

// Roles in classification order. Data is the zero value and the fallback.
const (
	Data Role = iota
	Time
	Height
	Latitude
	Longitude
	ID
)

// AxisRoles are the four roles that must be present as dimensions.
var AxisRoles = []Role{Time, Height, Latitude, Longitude}

// String returns the role name used in logs.
func (r Role) String() string {
	switch r {
	case Time:
		return "time"
	case Height:
		return "height"
	case Latitude:
		return "latitude"
	case Longitude:
		return "longitude"
	case ID:
		return "id"
	default:
		return "data"
	}
}

// Tag returns the element name used in the coordinate file. Data has none.
func (r Role) Tag() string {
	if r == Data {
		return ""
	}
	return r.String()
}

// Axis returns the CF axis code (T, Z, Y, X) for the four axis roles.
func (r Role) Axis() string {
	switch r {
	case Time:
		return "T"
	case Height:
		return "Z"
	case Latitude:
		return "Y"
	case Longitude:
		return "X"
	default:
		return ""
	}
}

// IsAxis reports whether r is one of the four dimension roles.
func (r Role) IsAxis() bool {
	return r == Time || r == Height || r == Latitude || r == Longitude
}

// AliasSets lists the accepted names for each coordinate role.
type AliasSets struct {
	Time      []string
	Height    []string
	Latitude  []string
	Longitude []string
	ID        []string
}

// DefaultAliases returns the built-in alias sets.
func DefaultAliases() AliasSets {
	return AliasesFromSettings(config.Default().Aliases)
}

// AliasesFromSettings copies the alias sets out of the settings.
func AliasesFromSettings(a config.AliasSettings) AliasSets {
	return AliasSets{
		Time:      append([]string(nil), a.Time...),
		Height:    append([]string(nil), a.Height...),
		Latitude:  append([]string(nil), a.Latitude...),
		Longitude: append([]string(nil), a.Longitude...),
		ID:        append([]string(nil), a.ID...),
	}
}

// Classifier resolves names to roles by exact, case-sensitive match.
type Classifier struct {
	order []Role
	sets  map[Role]map[string]struct{}
}

// NewClassifier builds a classifier over the given alias sets.
func NewClassifier(a AliasSets) *Classifier {
	c := &Classifier{
		order: []Role{Time, Height, Latitude, Longitude, ID},
		sets:  make(map[Role]map[string]struct{}),
	}
	for role, names := range map[Role][]string{
		Time:      a.Time,
		Height:    a.Height,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		ID:        a.ID,
	} {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		c.sets[role] = set
	}
	return c
}

// Classify returns the first role whose alias set contains name, in the
// order Time, Height, Latitude, Longitude, ID; otherwise Data.
func (c *Classifier) Classify(name string) Role {
	for _, r := range c.order {
		if _, ok := c.sets[r][name]; ok {
			return r
		}
	}
	return Data
}

// DataVariables returns the Data-role variables in declaration order.
func (c *Classifier) DataVariables(vars []*domain.Variable) []*domain.Variable {
	var out []*domain.Variable
	for _, v := range vars {
		if c.Classify(v.Name) == Data {
			out = append(out, v)
		}
	}
	return out
}

// DimensionFor returns the first dimension of m with the given role.
func (c *Classifier) DimensionFor(m *domain.Model, r Role) (*domain.Dimension, bool) {
	for i := range m.Dimensions {
		if c.Classify(m.Dimensions[i].Name) == r {
			return &m.Dimensions[i], true
		}
	}
	return nil, false
}

// VariableFor returns the first variable of m with the given role.
func (c *Classifier) VariableFor(m *domain.Model, r Role) (*domain.Variable, bool) {
	for _, v := range m.Variables {
		if c.Classify(v.Name) == r {
			return v, true
		}
	}
	return nil, false
}
