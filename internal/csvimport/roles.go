package csvimport

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Role is the meaning of a spreadsheet column.
type Role int

const (
	RoleName Role = iota
	RolePrice
	RoleDiscount
	RoleCategory
	RoleAge
	RoleImages
	RoleDescription
)

// Roles lists every role in resolution order.
var Roles = []Role{RoleName, RolePrice, RoleDiscount, RoleCategory, RoleAge, RoleImages, RoleDescription}

var roleNames = map[Role]string{
	RoleName:        "name",
	RolePrice:       "price",
	RoleDiscount:    "discount",
	RoleCategory:    "category",
	RoleAge:         "age",
	RoleImages:      "images",
	RoleDescription: "description",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole returns the role named s.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown column role %q", s)
}

// KeywordTable maps each role to the header keywords that select it.
type KeywordTable map[Role][]string

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

// DefaultKeywordTable returns the built-in Ukrainian/English keyword table.
func DefaultKeywordTable() KeywordTable {
	kw, err := ParseKeywordTable(bytes.NewReader(defaultKeywordsYAML))
	if err != nil {
		panic("csvimport: built-in keyword table: " + err.Error())
	}
	return kw
}

// LoadKeywordTable reads a keyword table from a YAML file. An empty path
// returns the built-in table.
func LoadKeywordTable(path string) (KeywordTable, error) {
	if path == "" {
		return DefaultKeywordTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyword table: %w", err)
	}
	defer f.Close()

	kw, err := ParseKeywordTable(f)
	if err != nil {
		return nil, fmt.Errorf("keyword table %s: %w", path, err)
	}
	return kw, nil
}

// ParseKeywordTable decodes a YAML mapping of role name to keyword list.
// Keywords are lowercased and trimmed; the name and price roles must have
// at least one keyword.
func ParseKeywordTable(r io.Reader) (KeywordTable, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	kw := make(KeywordTable, len(raw))
	for key, words := range raw {
		role, err := ParseRole(key)
		if err != nil {
			return nil, err
		}
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				kw[role] = append(kw[role], w)
			}
		}
	}

	var errs []error
	for _, role := range []Role{RoleName, RolePrice} {
		if len(kw[role]) == 0 {
			errs = append(errs, fmt.Errorf("role %s has no keywords", role))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return kw, nil
}

// ColumnMap is the resolved column index for each role found in a header row.
type ColumnMap map[Role]int

// Has reports whether role was resolved.
func (m ColumnMap) Has(role Role) bool {
	_, ok := m[role]
	return ok
}

// Value returns the cell for role in row, or "" when the role is unresolved
// or the row is short.
func (m ColumnMap) Value(row []string, role Role) string {
	idx, ok := m[role]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// ResolveHeaders assigns each role the first header whose case-folded,
// trimmed text contains any of the role's keywords. Roles are resolved
// independently, so one header may serve more than one role.
func ResolveHeaders(headers []string, kw KeywordTable) ColumnMap {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(ColumnMap, len(Roles))
	for _, role := range Roles {
		if idx := firstMatch(folded, kw[role]); idx >= 0 {
			cols[role] = idx
		}
	}
	return cols
}

func firstMatch(headers, keywords []string) int {
	for i, h := range headers {
		for _, k := range keywords {
			if strings.Contains(h, k) {
				return i
			}
		}
	}
	return -1
}
