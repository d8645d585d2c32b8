package frontend

import "fmt"

// ParseError represents a single parse error with source position.
type ParseError struct {
	Position Position
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Message)
}

// Parser parses schema source into a Schema AST. It collects all errors it
// encounters rather than stopping at the first one, recovering at the next
// struct/enum boundary so a single typo doesn't hide the rest of the file's
// problems.
type Parser struct {
	lexer    *Lexer
	current  Token
	previous Token
	errors   []*ParseError
}

// NewParser creates a parser over the given source.
func NewParser(filename, input string) *Parser {
	p := &Parser{lexer: NewLexer(filename, input)}
	p.advance()
	return p
}

// Parse parses a complete schema file, returning the AST along with any
// errors collected along the way. The AST is always returned, even when
// errors are non-empty, so callers can report as much as possible.
func (p *Parser) Parse() (*Schema, []*ParseError) {
	schema := &Schema{Position: p.current.Position}

	for p.current.Type != TokenEOF {
		switch p.current.Type {
		case TokenVersion:
			p.parseVersion(schema)
		case TokenStruct:
			if s := p.parseStruct(); s != nil {
				schema.Structs = append(schema.Structs, s)
				schema.Decls = append(schema.Decls, s)
			}
		case TokenEnum:
			if e := p.parseEnum(); e != nil {
				schema.Enums = append(schema.Enums, e)
				schema.Decls = append(schema.Decls, e)
			}
		case TokenComment, TokenDocComment:
			p.advance()
		case TokenError:
			p.error(p.current.Value)
			p.advance()
		default:
			p.error(fmt.Sprintf("expected 'struct', 'enum', or 'version', got %s", p.current))
			p.synchronize()
		}
	}

	return schema, p.errors
}

func (p *Parser) parseVersion(schema *Schema) {
	pos := p.current.Position
	p.advance() // 'version'
	tok, ok := p.consume(TokenString, "expected version string after 'version'")
	if !ok {
		p.synchronize()
		return
	}
	if schema.Version != "" {
		p.errorAt(pos, "duplicate version header")
	} else {
		schema.Version = tok.Value
	}
	p.consume(TokenSemicolon, "expected ';' after version string")
}

func (p *Parser) parseStruct() *StructDecl {
	pos := p.current.Position
	p.advance() // 'struct'

	name, ok := p.consume(TokenIdent, "expected struct name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &StructDecl{Position: pos, Name: name.Value}

	if _, ok := p.consume(TokenLBrace, "expected '{' after struct name"); !ok {
		p.synchronize()
		return decl
	}

	for p.current.Type != TokenRBrace && p.current.Type != TokenEOF {
		if p.current.Type == TokenComment || p.current.Type == TokenDocComment {
			p.advance()
			continue
		}
		field := p.parseField()
		if field != nil {
			decl.Fields = append(decl.Fields, field)
		}
		if p.current.Type != TokenRBrace {
			if _, ok := p.consume(TokenComma, "expected ',' or '}' after field"); !ok {
				p.synchronize()
				return decl
			}
		}
	}

	p.consume(TokenRBrace, "expected '}' to close struct")
	return decl
}

func (p *Parser) parseField() *FieldDecl {
	pos := p.current.Position
	name, ok := p.consume(TokenIdent, "expected field name")
	if !ok {
		return nil
	}
	if _, ok := p.consume(TokenColon, "expected ':' after field name"); !ok {
		return nil
	}
	typ := p.parseTypeExpr()
	if typ == nil {
		return nil
	}
	return &FieldDecl{Position: pos, Name: name.Value, Type: typ}
}

func (p *Parser) parseEnum() *EnumDecl {
	pos := p.current.Position
	p.advance() // 'enum'

	name, ok := p.consume(TokenIdent, "expected enum name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &EnumDecl{Position: pos, Name: name.Value}

	if _, ok := p.consume(TokenLBrace, "expected '{' after enum name"); !ok {
		p.synchronize()
		return decl
	}

	for p.current.Type != TokenRBrace && p.current.Type != TokenEOF {
		if p.current.Type == TokenComment || p.current.Type == TokenDocComment {
			p.advance()
			continue
		}
		variant := p.parseVariant()
		if variant != nil {
			decl.Variants = append(decl.Variants, variant)
		}
		if p.current.Type != TokenRBrace {
			if _, ok := p.consume(TokenComma, "expected ',' or '}' after variant"); !ok {
				p.synchronize()
				return decl
			}
		}
	}

	p.consume(TokenRBrace, "expected '}' to close enum")
	return decl
}

func (p *Parser) parseVariant() *VariantDecl {
	pos := p.current.Position
	name, ok := p.consume(TokenIdent, "expected variant name")
	if !ok {
		return nil
	}

	variant := &VariantDecl{Position: pos, Name: name.Value}

	if p.current.Type != TokenLParen {
		return variant
	}
	p.advance() // '('

	for p.current.Type != TokenRParen && p.current.Type != TokenEOF {
		typ := p.parseTypeExpr()
		if typ != nil {
			variant.Payload = append(variant.Payload, typ)
		}
		if p.current.Type != TokenRParen {
			if _, ok := p.consume(TokenComma, "expected ',' or ')' in variant payload"); !ok {
				return variant
			}
		}
	}
	p.consume(TokenRParen, "expected ')' to close variant payload")
	return variant
}

// parseTypeExpr parses a type expression: a scalar name, a named struct
// reference, a fixed-size array [elem; size], or Ref<T>.
func (p *Parser) parseTypeExpr() TypeExpr {
	pos := p.current.Position

	switch p.current.Type {
	case TokenLBracket:
		p.advance() // '['
		elemName, ok := p.consume(TokenIdent, "expected scalar type in array element position")
		if !ok {
			return nil
		}
		if !IsScalarName(elemName.Value) {
			p.errorAt(elemName.Position, fmt.Sprintf("array element type must be a scalar, got %q", elemName.Value))
			return nil
		}
		if _, ok := p.consume(TokenSemicolon, "expected ';' in array type"); !ok {
			return nil
		}
		sizeTok, ok := p.consume(TokenInt, "expected array size")
		if !ok {
			return nil
		}
		size := parseIntLiteral(sizeTok.Value)
		if _, ok := p.consume(TokenRBracket, "expected ']' to close array type"); !ok {
			return nil
		}
		return &ArrayTypeExpr{
			Position: pos,
			Elem:     &ScalarTypeExpr{Position: elemName.Position, Name: elemName.Value},
			Size:     size,
		}

	case TokenIdent:
		name, _ := p.consume(TokenIdent, "")
		if name.Value == "Ref" {
			if _, ok := p.consume(TokenLAngle, "expected '<' after Ref"); !ok {
				return nil
			}
			inner := p.parseTypeExpr()
			if inner == nil {
				return nil
			}
			if _, ok := p.consume(TokenRAngle, "expected '>' to close Ref"); !ok {
				return nil
			}
			return &RefTypeExpr{Position: pos, Inner: inner}
		}
		if IsScalarName(name.Value) {
			return &ScalarTypeExpr{Position: pos, Name: name.Value}
		}
		return &NamedTypeExpr{Position: pos, Name: name.Value}

	default:
		p.error(fmt.Sprintf("expected a type, got %s", p.current))
		return nil
	}
}

func parseIntLiteral(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// advance moves to the next non-error token, recording lexer errors as
// parse errors so they surface through the same collection.
func (p *Parser) advance() {
	p.previous = p.current
	for {
		tok := p.lexer.Next()
		if tok.Type == TokenError {
			p.errorAt(tok.Position, tok.Value)
			continue
		}
		p.current = tok
		return
	}
}

func (p *Parser) consume(t TokenType, message string) (Token, bool) {
	if p.current.Type == t {
		tok := p.current
		p.advance()
		return tok, true
	}
	p.error(message)
	return Token{}, false
}

func (p *Parser) error(message string) {
	p.errorAt(p.current.Position, message)
}

func (p *Parser) errorAt(pos Position, message string) {
	p.errors = append(p.errors, &ParseError{Position: pos, Message: message})
}

// synchronize discards tokens until it finds a plausible statement
// boundary, so one malformed declaration doesn't cascade into spurious
// errors for the rest of the file.
func (p *Parser) synchronize() {
	for p.current.Type != TokenEOF {
		if p.current.Type == TokenStruct || p.current.Type == TokenEnum || p.current.Type == TokenVersion {
			return
		}
		p.advance()
	}
}

// ParseFile is a convenience wrapper that parses source and returns an
// error aggregating all collected ParseErrors, or nil if there were none.
func ParseFile(filename, input string) (*Schema, error) {
	p := NewParser(filename, input)
	schema, errs := p.Parse()
	if len(errs) == 0 {
		return schema, nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return schema, fmt.Errorf("frontend: %d parse error(s):\n%s", len(errs), joinLines(msgs))
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += "  " + l
	}
	return out
}
