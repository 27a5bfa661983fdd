package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/table"
)

// DDL extracts table descriptors from SQL schema text. It understands the
// subset of DDL the schema graph needs: CREATE TABLE column lists, PRIMARY
// KEY column options and table constraints, FOREIGN KEY … REFERENCES
// constraints (inline and table-level), and
// ALTER TABLE … ADD [CONSTRAINT] FOREIGN KEY statements. Everything else
// in the schema is ignored.
type DDL struct {
	text string
}

// NewDDL creates an extractor over the given schema text.
func NewDDL(text string) *DDL {
	return &DDL{text: text}
}

var (
	createRe = regexp.MustCompile(`(?is)^\s*create\s+table\s+(?:if\s+not\s+exists\s+)?([` + "`" + `"\w.]+)\s*\(`)
	alterRe  = regexp.MustCompile(`(?is)^\s*alter\s+table\s+(?:only\s+)?([` + "`" + `"\w.]+)\s+add\s+(?:constraint\s+\S+\s+)?foreign\s+key\s*\(\s*([` + "`" + `"\w]+)\s*\)\s*references\s+([` + "`" + `"\w.]+)\s*\(\s*([` + "`" + `"\w]+)\s*\)`)
	fkRe     = regexp.MustCompile(`(?is)^foreign\s+key\s*\(\s*([` + "`" + `"\w]+)\s*\)\s*references\s+([` + "`" + `"\w.]+)\s*\(\s*([` + "`" + `"\w]+)\s*\)`)
	pkRe     = regexp.MustCompile(`(?is)^primary\s+key\s*\(\s*([` + "`" + `"\w]+)`)
	inlineRe = regexp.MustCompile(`(?is)references\s+([` + "`" + `"\w.]+)\s*\(\s*([` + "`" + `"\w]+)\s*\)`)
	constrRe = regexp.MustCompile(`(?is)^constraint\s+\S+\s+`)
)

// Extract parses the schema text into descriptors, one per CREATE TABLE,
// in declaration order.
func (d *DDL) Extract(_ context.Context) ([]*table.Descriptor, error) {
	var tables []*table.Descriptor
	byName := map[string]*table.Descriptor{}

	for _, stmt := range splitStatements(d.text) {
		if m := createRe.FindStringSubmatchIndex(stmt); m != nil {
			name := tableName(stmt[m[2]:m[3]])
			body, ok := balancedBody(stmt[m[1]-1:])
			if !ok {
				return nil, errs.InvalidInput("unbalanced parentheses in CREATE TABLE " + name)
			}
			t, err := parseCreateBody(name, body)
			if err != nil {
				return nil, err
			}
			tables = append(tables, t)
			byName[name] = t
			continue
		}

		if m := alterRe.FindStringSubmatch(stmt); m != nil {
			t, ok := byName[tableName(m[1])]
			if !ok {
				continue
			}
			t.AddForeignKey(unquote(m[2]), tableName(m[3]), unquote(m[4]))
		}
	}
	return tables, nil
}

// parseCreateBody fills a descriptor from the column/constraint list of a
// CREATE TABLE statement.
func parseCreateBody(name, body string) (*table.Descriptor, error) {
	t := table.New(name)
	var headers []string

	for _, item := range splitTopLevel(body) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		item = constrRe.ReplaceAllString(item, "")
		lower := strings.ToLower(item)

		switch {
		case fkRe.MatchString(item):
			m := fkRe.FindStringSubmatch(item)
			t.AddForeignKey(unquote(m[1]), tableName(m[2]), unquote(m[3]))

		case pkRe.MatchString(item):
			m := pkRe.FindStringSubmatch(item)
			t.PrimaryKey = unquote(m[1])

		case strings.HasPrefix(lower, "unique"),
			strings.HasPrefix(lower, "check"),
			strings.HasPrefix(lower, "key "),
			strings.HasPrefix(lower, "index "):
			// non-structural constraints

		default:
			fields := strings.Fields(item)
			if len(fields) == 0 {
				continue
			}
			column := unquote(fields[0])
			headers = append(headers, column)

			if strings.Contains(lower, "primary key") {
				t.PrimaryKey = column
			}
			if m := inlineRe.FindStringSubmatch(item); m != nil {
				t.AddForeignKey(column, tableName(m[1]), unquote(m[2]))
			}
		}
	}

	if err := t.SetHeaders(headers); err != nil {
		return nil, err
	}
	return t, nil
}

// splitStatements breaks schema text into `;`-terminated statements with
// line comments removed.
func splitStatements(text string) []string {
	var clean []string
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		clean = append(clean, line)
	}

	var stmts []string
	for _, s := range strings.Split(strings.Join(clean, "\n"), ";") {
		if strings.TrimSpace(s) != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// balancedBody returns the contents of the parenthesized list starting at
// s[0] == '('.
func balancedBody(s string) (string, bool) {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits a CREATE TABLE body on commas outside parentheses.
func splitTopLevel(body string) []string {
	var items []string
	depth, start := 0, 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, body[start:i])
				start = i + 1
			}
		}
	}
	return append(items, body[start:])
}

// tableName unquotes an identifier, drops any schema qualifier, and
// lower-cases it.
func tableName(ident string) string {
	ident = unquote(ident)
	if i := strings.LastIndex(ident, "."); i >= 0 {
		ident = ident[i+1:]
	}
	return strings.ToLower(ident)
}

func unquote(ident string) string {
	return strings.Trim(strings.TrimSpace(ident), "\"`")
}
