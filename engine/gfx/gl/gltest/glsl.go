package gltest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A tiny GLSL front end: enough to accept the pass-through shaders an engine
// ships with, reject malformed ones with a Mesa-style log, and tell the
// linker which inputs, outputs and uniforms a stage declares and uses.

type decl struct {
	qual     string // in, out, uniform
	typ      string
	name     string
	location int // -1 when no layout qualifier
	line     int
}

type stageInfo struct {
	version  string
	decls    []decl
	hasMain  bool
	used     map[string]bool
	funcDefs []string
}

func (s *stageInfo) declared(qual string) []decl {
	var out []decl
	for _, d := range s.decls {
		if d.qual == qual {
			out = append(out, d)
		}
	}
	return out
}

var glslTypes = map[string]bool{
	"void": true, "bool": true, "int": true, "uint": true, "float": true, "double": true,
	"vec2": true, "vec3": true, "vec4": true,
	"ivec2": true, "ivec3": true, "ivec4": true,
	"uvec2": true, "uvec3": true, "uvec4": true,
	"bvec2": true, "bvec3": true, "bvec4": true,
	"mat2": true, "mat3": true, "mat4": true,
	"sampler2D": true, "sampler2DArray": true, "samplerCube": true,
}

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	declRe       = regexp.MustCompile(`^(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?(?:(?:flat|smooth|noperspective)\s+)?(in|out|uniform)\s+(\w+)\s+(\w+)\s*(?:\[\s*\d+\s*\])?$`)
	funcRe       = regexp.MustCompile(`^(\w+)\s+(\w+)\s*\(([^)]*)\)$`)
	identRe      = regexp.MustCompile(`\.?[A-Za-z_]\w*`)
)

type compileErr struct {
	line int
	msg  string
}

func (e *compileErr) Error() string { return fmt.Sprintf("0:%d(1): error: %s", e.line, e.msg) }

func stripComments(src string) string {
	src = blockComment.ReplaceAllStringFunc(src, func(c string) string {
		return strings.Repeat("\n", strings.Count(c, "\n"))
	})
	return lineComment.ReplaceAllString(src, "")
}

// parseStage checks src and extracts its interface.
func parseStage(src string) (*stageInfo, error) {
	info := &stageInfo{used: map[string]bool{}}
	src = stripComments(src)

	lines := strings.Split(src, "\n")
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if !strings.HasPrefix(t, "#") {
			continue
		}
		if strings.HasPrefix(t, "#version") {
			if info.version != "" {
				return nil, &compileErr{i + 1, "#version must occur only once"}
			}
			info.version = strings.TrimSpace(strings.TrimPrefix(t, "#version"))
		}
		lines[i] = ""
	}
	src = strings.Join(lines, "\n")

	var (
		cur       strings.Builder
		line      = 1
		stmtLine  = 0
		depth     = 0
		parens    = 0
		header    string
		headLine  int
		bodyStart int
	)
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\n' {
			line++
		}
		switch {
		case c == '(':
			parens++
		case c == ')':
			parens--
			if parens < 0 {
				return nil, &compileErr{line, "syntax error, unexpected ')'"}
			}
		case c == '{':
			if depth == 0 {
				header = strings.TrimSpace(cur.String())
				headLine = stmtLine
				bodyStart = i + 1
				cur.Reset()
			}
			depth++
			continue
		case c == '}':
			depth--
			if depth < 0 {
				return nil, &compileErr{line, "syntax error, unexpected '}'"}
			}
			if depth == 0 {
				if err := info.function(header, headLine, src[bodyStart:i], line); err != nil {
					return nil, err
				}
				stmtLine = 0
			}
			continue
		}
		if depth > 0 {
			continue
		}
		if c == ';' {
			stmt := strings.TrimSpace(cur.String())
			cur.Reset()
			if stmt != "" {
				if err := info.statement(stmt, stmtLine); err != nil {
					return nil, err
				}
			}
			stmtLine = 0
			continue
		}
		if stmtLine == 0 && c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			stmtLine = line
		}
		cur.WriteByte(c)
	}
	if depth != 0 || parens != 0 {
		return nil, &compileErr{line, "syntax error, unexpected end of file"}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		return nil, &compileErr{line, fmt.Sprintf("syntax error, unexpected end of file after %q", rest)}
	}
	return info, nil
}

func (s *stageInfo) statement(stmt string, line int) error {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if strings.HasPrefix(stmt, "precision ") || strings.HasPrefix(stmt, "const ") {
		return nil
	}
	m := declRe.FindStringSubmatch(stmt)
	if m == nil {
		return &compileErr{line, fmt.Sprintf("syntax error, unexpected %q", stmt)}
	}
	if !glslTypes[m[3]] || m[3] == "void" {
		return &compileErr{line, fmt.Sprintf("syntax error, unexpected IDENTIFIER %q", m[3])}
	}
	d := decl{qual: m[2], typ: m[3], name: m[4], location: -1, line: line}
	if m[1] != "" {
		d.location, _ = strconv.Atoi(m[1])
	}
	for _, prev := range s.decls {
		if prev.name == d.name {
			return &compileErr{line, fmt.Sprintf("`%s' redeclared", d.name)}
		}
	}
	s.decls = append(s.decls, d)
	return nil
}

func (s *stageInfo) function(header string, line int, body string, endLine int) error {
	header = strings.Join(strings.Fields(header), " ")
	m := funcRe.FindStringSubmatch(header)
	if m == nil || !glslTypes[m[1]] {
		return &compileErr{line, fmt.Sprintf("syntax error, unexpected %q", header)}
	}
	if t := strings.TrimSpace(body); t != "" && !strings.HasSuffix(t, ";") && !strings.HasSuffix(t, "}") {
		return &compileErr{endLine, "syntax error, unexpected '}', expecting ',' or ';'"}
	}
	if m[2] == "main" {
		if s.hasMain {
			return &compileErr{line, "function `main' redefined"}
		}
		s.hasMain = true
	}
	s.funcDefs = append(s.funcDefs, m[2])
	for _, id := range identRe.FindAllString(body, -1) {
		if !strings.HasPrefix(id, ".") {
			s.used[id] = true
		}
	}
	return nil
}
