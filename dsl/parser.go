// Package dsl implements the pipeline textual DSL: a lexer and recursive-
// descent, precedence-climbing parser that compiles pipeline text into a
// builder tree (Program/PipelineDef/StageDef/ExprNode), plus
// Build, which resolves that tree against a rowflow.BuildContext into
// runnable rowflow.Pipeline values.
//
// Build lives in this package rather than on rowflow.BuildContext because
// it needs both the AST types here and rowflow's exported expr/stage
// constructors; rowflow must not import dsl (dsl already imports rowflow
// for Value/Schema/BuildError), so the two-way dependency that a
// BuildContext.Build method would need is resolved by keeping the
// resolution pass here instead of splitting it across packages.
package dsl

import (
	"math"
	"strconv"

	"github.com/flowbase/rowflow"
)

// Parse compiles DSL source text into a Program, or returns the first
// syntax error encountered, with its source Position.
func Parse(src string) (*Program, *rowflow.BuildError) {
	toks, err := tokenizeAll(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

func tokenizeAll(src string) ([]token, *rowflow.BuildError) {
	lx := newLexer(src)
	var toks []token
	for {
		t, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(pos int) token {
	if pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[pos]
}

func (p *parser) pos_() rowflow.Position {
	t := p.cur()
	return rowflow.Position{Offset: t.off, Line: t.line, Column: t.col}
}

func (p *parser) errorf(format string, args ...any) *rowflow.BuildError {
	return rowflow.NewSyntaxError(p.pos_(), format, args...)
}

func (p *parser) expectPunct(s string) (token, *rowflow.BuildError) {
	if !p.cur().isPunct(s) {
		return token{}, p.errorf("expected %q, got %s", s, fmtToken(p.cur()))
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(s string) (token, *rowflow.BuildError) {
	if !p.cur().isKeyword(s) {
		return token{}, p.errorf("expected %q, got %s", s, fmtToken(p.cur()))
	}
	return p.advance(), nil
}

func (p *parser) expectIdent() (token, *rowflow.BuildError) {
	if p.cur().kind != tokIdent {
		return token{}, p.errorf("expected identifier, got %s", fmtToken(p.cur()))
	}
	if reservedWords[p.cur().text] {
		return token{}, p.errorf("%q is a reserved word and cannot be used as an identifier", p.cur().text)
	}
	return p.advance(), nil
}

// ---- program / pipeline / schema ------------------------------------------

func (p *parser) parseProgram() (*Program, *rowflow.BuildError) {
	prog := &Program{}
	for p.cur().kind != tokEOF {
		pd, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		prog.Pipelines = append(prog.Pipelines, pd)
	}
	return prog, nil
}

func (p *parser) parsePipeline() (*PipelineDef, *rowflow.BuildError) {
	pos := p.pos_()
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	fields, err := p.parseSchema()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	pd := &PipelineDef{Name: nameTok.text, Fields: fields, Pos: pos}
	for p.cur().isPunct("|") {
		p.advance()
		stage, err := p.parseStage()
		if err != nil {
			return nil, err
		}
		pd.Stages = append(pd.Stages, stage)
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return pd, nil
}

func (p *parser) parseSchema() ([]FieldDef, *rowflow.BuildError) {
	var fields []FieldDef
	if p.cur().isPunct(")") {
		return fields, nil
	}
	for {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.cur().isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return fields, nil
}

var validVTypes = map[string]bool{
	"bool": true, "int": true, "long": true, "float": true, "double": true,
	"string": true, "array": true, "object": true, "timestamp": true,
}

func (p *parser) parseField() (FieldDef, *rowflow.BuildError) {
	pos := p.pos_()
	nameTok, err := p.expectIdent()
	if err != nil {
		return FieldDef{}, err
	}
	f := FieldDef{Name: nameTok.text, Pos: pos}
	if p.cur().isKeyword("as") {
		p.advance()
		vt, err := p.parseVType()
		if err != nil {
			return FieldDef{}, err
		}
		f.Type = vt
	}
	return f, nil
}

func (p *parser) parseVType() (string, *rowflow.BuildError) {
	if p.cur().isKeyword("dynamic") {
		p.advance()
		return "", nil
	}
	if p.cur().kind != tokIdent || !validVTypes[p.cur().text] {
		return "", p.errorf("expected a type name, got %s", fmtToken(p.cur()))
	}
	t := p.cur().text
	p.advance()
	return t, nil
}

func vtypeToValueType(s string) rowflow.ValueType {
	switch s {
	case "bool":
		return rowflow.TypeBool
	case "int":
		return rowflow.TypeInt
	case "long":
		return rowflow.TypeLong
	case "float":
		return rowflow.TypeFloat
	case "double":
		return rowflow.TypeDouble
	case "string":
		return rowflow.TypeString
	case "timestamp":
		return rowflow.TypeDateTime
	case "array":
		return rowflow.TypeArray
	case "object":
		return rowflow.TypeObject
	default:
		return rowflow.TypeDynamic
	}
}

// ---- stages ---------------------------------------------------------------

func (p *parser) parseUint() (int, *rowflow.BuildError) {
	if p.cur().kind != tokInt {
		return 0, p.errorf("expected an unsigned integer, got %s", fmtToken(p.cur()))
	}
	t := p.advance()
	n, err := strconv.ParseInt(t.text, 10, 64)
	if err != nil {
		return 0, rowflow.NewSyntaxError(rowflow.Position{Offset: t.off, Line: t.line, Column: t.col}, "invalid integer %q: %v", t.text, err)
	}
	return int(n), nil
}

func (p *parser) parseIdentList() ([]string, *rowflow.BuildError) {
	var out []string
	for {
		tok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		out = append(out, tok.text)
		if p.cur().isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseStage() (StageDef, *rowflow.BuildError) {
	pos := p.pos_()
	if p.cur().kind != tokIdent {
		return nil, p.errorf("expected a stage keyword, got %s", fmtToken(p.cur()))
	}
	kw := p.cur().text
	switch kw {
	case "take":
		p.advance()
		n, err := p.parseUint()
		if err != nil {
			return nil, err
		}
		return TakeDef{Count: n, Pos: pos}, nil

	case "where":
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return WhereDef{Cond: e, Pos: pos}, nil

	case "project":
		p.advance()
		return p.parseProject(pos)

	case "project-rename":
		p.advance()
		return p.parseProjectRename(pos)

	case "project-remove":
		p.advance()
		names, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		return ProjectRemoveDef{Names: names, Pos: pos}, nil

	case "project-keep":
		p.advance()
		names, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		return ProjectKeepDef{Names: names, Pos: pos}, nil

	case "explode", "mv-expand":
		p.advance()
		return p.parseExplode(pos)

	case "join":
		return p.parseLookup(pos)

	case "lookup":
		return p.parseLookup(pos)

	case "top":
		p.advance()
		return p.parseTop(pos)

	case "ignore-error":
		p.advance()
		return IgnoreErrorDef{Pos: pos}, nil

	case "distinct":
		p.advance()
		byTok, err := p.expectIdent() // "by"
		if err != nil {
			return nil, err
		}
		if byTok.text != "by" {
			return nil, p.errorf("expected %q, got %q", "by", byTok.text)
		}
		var keys []ExprNode
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, e)
			if p.cur().isPunct(",") {
				p.advance()
				continue
			}
			break
		}
		return DistinctDef{Keys: keys, Pos: pos}, nil

	case "summarize":
		p.advance()
		return p.parseSummarize(pos)

	default:
		return nil, p.errorf("unknown stage keyword %q", kw)
	}
}

func (p *parser) parseProject(pos rowflow.Position) (StageDef, *rowflow.BuildError) {
	var assigns []Assignment
	for {
		nameTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct("="); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, Assignment{Name: nameTok.text, Expr: e})
		if p.cur().isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return ProjectDef{Assignments: assigns, Pos: pos}, nil
}

func (p *parser) parseProjectRename(pos rowflow.Position) (StageDef, *rowflow.BuildError) {
	var renames []Rename
	for {
		newTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct("="); err != nil {
			return nil, err
		}
		oldTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		renames = append(renames, Rename{New: newTok.text, Old: oldTok.text})
		if p.cur().isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return ProjectRenameDef{Renames: renames, Pos: pos}, nil
}

func (p *parser) parseExplode(pos rowflow.Position) (StageDef, *rowflow.BuildError) {
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	d := ExplodeDef{Column: nameTok.text, Pos: pos}
	if p.cur().isKeyword("as") {
		p.advance()
		vt, err := p.parseVType()
		if err != nil {
			return nil, err
		}
		d.As = vt
	}
	return d, nil
}

// parseLookup parses `lookup ... from ... on ...`, optionally preceded by
// `join kind=left-inner` / `join kind=left-outer` to select join mode
// instead of the default single-row lookup.
func (p *parser) parseLookup(pos rowflow.Position) (StageDef, *rowflow.BuildError) {
	kind := LookupSingle
	if p.cur().isKeyword("join") {
		p.advance()
		kindTok, err := p.expectIdent() // "kind"
		if err != nil {
			return nil, err
		}
		if kindTok.text != "kind" {
			return nil, p.errorf("expected %q, got %q", "kind", kindTok.text)
		}
		if _, err := p.expectPunct("="); err != nil {
			return nil, err
		}
		modeTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		switch modeTok.text {
		case "left-inner":
			kind = LookupLeftInner
		case "left-outer":
			kind = LookupLeftOuter
		default:
			return nil, p.errorf("unknown join kind %q (want left-inner or left-outer)", modeTok.text)
		}
	}
	if _, err := p.expectKeyword("lookup"); err != nil {
		return nil, err
	}
	var fields []LookupFieldDef
	for {
		f, err := p.parseLookupField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.cur().isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectFromKeyword(); err != nil {
		return nil, err
	}
	srcTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOnKeyword(); err != nil {
		return nil, err
	}
	onExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return LookupDef{Fields: fields, Source: srcTok.text, On: onExpr, Kind: kind, Pos: pos}, nil
}

// expectFromKeyword/expectOnKeyword accept "from"/"on" as plain idents
// (they are contextual stage-grammar keywords, not expression-grammar
// reserved words, so they stay usable as column names).
func (p *parser) expectFromKeyword() (token, *rowflow.BuildError) {
	if p.cur().kind != tokIdent || p.cur().text != "from" {
		return token{}, p.errorf("expected %q, got %s", "from", fmtToken(p.cur()))
	}
	return p.advance(), nil
}

func (p *parser) expectOnKeyword() (token, *rowflow.BuildError) {
	if p.cur().kind != tokIdent || p.cur().text != "on" {
		return token{}, p.errorf("expected %q, got %s", "on", fmtToken(p.cur()))
	}
	return p.advance(), nil
}

func (p *parser) parseLookupField() (LookupFieldDef, *rowflow.BuildError) {
	firstTok, err := p.expectIdent()
	if err != nil {
		return LookupFieldDef{}, err
	}
	f := LookupFieldDef{SourceField: firstTok.text}
	if p.cur().isPunct("=") {
		p.advance()
		nameTok, err := p.expectIdent()
		if err != nil {
			return LookupFieldDef{}, err
		}
		f.Alias = firstTok.text
		f.SourceField = nameTok.text
	}
	if _, err := p.expectKeyword("as"); err != nil {
		return LookupFieldDef{}, err
	}
	vt, err := p.parseVType()
	if err != nil {
		return LookupFieldDef{}, err
	}
	f.Type = vt
	return f, nil
}

func (p *parser) parseTop(pos rowflow.Position) (StageDef, *rowflow.BuildError) {
	n, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	byTok, err := p.expectIdent() // "by"
	if err != nil {
		return nil, err
	}
	if byTok.text != "by" {
		return nil, p.errorf("expected %q, got %q", "by", byTok.text)
	}
	by, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	d := TopDef{Count: n, By: by, Desc: true, Nulls: "last", Pos: pos}
	if p.cur().isKeyword("asc") {
		p.advance()
		d.Desc = false
	} else if p.cur().isKeyword("desc") {
		p.advance()
		d.Desc = true
	}
	if p.cur().kind == tokIdent && p.cur().text == "nulls" {
		p.advance()
		if p.cur().isKeyword("first") {
			p.advance()
			d.Nulls = "first"
		} else if p.cur().isKeyword("last") {
			p.advance()
			d.Nulls = "last"
		} else {
			return nil, p.errorf("expected %q or %q after %q, got %s", "first", "last", "nulls", fmtToken(p.cur()))
		}
	}
	return d, nil
}

func (p *parser) parseSummarize(pos rowflow.Position) (StageDef, *rowflow.BuildError) {
	var aggs []AggCall
	for {
		nameTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct("="); err != nil {
			return nil, err
		}
		call, err := p.parseAggCall()
		if err != nil {
			return nil, err
		}
		call.Name = nameTok.text
		aggs = append(aggs, call)
		if p.cur().isPunct(",") {
			// Lookahead: stop the agg list once we hit "by", which also
			// follows a comma-free boundary handled below; commas only
			// separate further agg assignments here.
			if p.at(p.pos + 1).kind == tokIdent && p.at(p.pos+1).text == "by" {
				break
			}
			p.advance()
			continue
		}
		break
	}
	byTok, err := p.expectIdent() // "by"
	if err != nil {
		return nil, err
	}
	if byTok.text != "by" {
		return nil, p.errorf("expected %q, got %q", "by", byTok.text)
	}
	var keys []SummarizeKey
	for {
		nameTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct("="); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		keys = append(keys, SummarizeKey{Name: nameTok.text, Expr: e})
		if p.cur().isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return SummarizeDef{Aggs: aggs, Keys: keys, Pos: pos}, nil
}

func (p *parser) parseAggCall() (AggCall, *rowflow.BuildError) {
	fnTok, err := p.expectIdent()
	if err != nil {
		return AggCall{}, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return AggCall{}, err
	}
	var args []ExprNode
	if !p.cur().isPunct(")") {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return AggCall{}, err
			}
			args = append(args, a)
			if p.cur().isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectPunct(")"); err != nil {
		return AggCall{}, err
	}
	return AggCall{AggFunc: fnTok.text, Args: args}, nil
}

// ---- expressions ------------------------------------------------------
//
// Precedence-climbed, lowest to highest: (1) comparison, (2) additive/or,
// (3) multiplicative/and, (4) unary prefix, (5) postfix is-null, (6) case,
// (7) call/dot/index, (8) primary.

func (p *parser) parseExpr() (ExprNode, *rowflow.BuildError) {
	return p.parseComparison()
}

var comparisonOps = map[string]bool{
	">": true, "<": true, ">=": true, "<=": true, "==": true, "!=": true, "<>": true,
}

func (p *parser) parseComparison() (ExprNode, *rowflow.BuildError) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.cur().kind == tokPunct && comparisonOps[p.cur().text] {
		pos := p.pos_()
		op := p.advance().text
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return BinaryNode{Op: op, L: left, R: right, Pos: pos}, nil
	}
	return left, nil
}

func (p *parser) parseAdditive() (ExprNode, *rowflow.BuildError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		pos := p.pos_()
		switch {
		case p.cur().isPunct("+"):
			op = "+"
		case p.cur().isPunct("-"):
			op = "-"
		case p.cur().isKeyword("or"):
			op = "or"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryNode{Op: op, L: left, R: right, Pos: pos}
	}
}

func (p *parser) parseMultiplicative() (ExprNode, *rowflow.BuildError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		pos := p.pos_()
		switch {
		case p.cur().isPunct("*"):
			op = "*"
		case p.cur().isPunct("/"):
			op = "/"
		case p.cur().isPunct("%"):
			op = "%"
		case p.cur().isPunct("&"):
			op = "&"
		case p.cur().isPunct("&&"):
			op = "&&"
		case p.cur().isKeyword("div"):
			op = "div"
		case p.cur().isKeyword("and"):
			op = "and"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryNode{Op: op, L: left, R: right, Pos: pos}
	}
}

func (p *parser) parseUnary() (ExprNode, *rowflow.BuildError) {
	pos := p.pos_()
	var op string
	switch {
	case p.cur().isPunct("+"):
		op = "+"
	case p.cur().isPunct("-"):
		op = "-"
	case p.cur().isPunct("~"):
		op = "~"
	case p.cur().isPunct("!"):
		op = "!"
	case p.cur().isKeyword("not"):
		op = "not"
	}
	if op != "" {
		p.advance()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryNode{Op: op, Arg: arg, Pos: pos}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ExprNode, *rowflow.BuildError) {
	e, err := p.parseCaseOrHigher()
	if err != nil {
		return nil, err
	}
	for p.cur().isKeyword("is") {
		pos := p.pos_()
		p.advance()
		if p.cur().isKeyword("not") {
			p.advance()
			if _, err := p.expectKeyword("null"); err != nil {
				return nil, err
			}
			e = UnaryNode{Op: "is not null", Arg: e, Postfix: true, Pos: pos}
			continue
		}
		if _, err := p.expectKeyword("null"); err != nil {
			return nil, err
		}
		e = UnaryNode{Op: "is null", Arg: e, Postfix: true, Pos: pos}
	}
	return e, nil
}

// parseCaseOrHigher parses the `case when ... end` grammar production.
// "case" is reserved, so it can never be read as a callable identifier;
// the when/then/else/end form is the only way to write one.
func (p *parser) parseCaseOrHigher() (ExprNode, *rowflow.BuildError) {
	if p.cur().isKeyword("case") {
		return p.parseCase()
	}
	return p.parseCallIndexDot()
}

func (p *parser) parseCase() (ExprNode, *rowflow.BuildError) {
	pos := p.pos_()
	p.advance() // "case"
	var whens []CaseWhenClause
	for p.cur().isKeyword("when") {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		whens = append(whens, CaseWhenClause{Cond: cond, Result: result})
	}
	if len(whens) == 0 {
		return nil, p.errorf("case requires at least one when clause")
	}
	var elseExpr ExprNode
	if p.cur().isKeyword("else") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elseExpr = e
	}
	if _, err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return CaseNode{Whens: whens, Else: elseExpr, Pos: pos}, nil
}

// parseCallIndexDot handles function calls, dot-member chains, and
// indexing, all of which may chain onto a primary expression.
func (p *parser) parseCallIndexDot() (ExprNode, *rowflow.BuildError) {
	e, err := p.parsePrimaryOrCall()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur().isPunct("."):
			pos := p.pos_()
			p.advance()
			fieldTok, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			e = DotNode{Container: e, Field: fieldTok.text, Pos: pos}
		case p.cur().isPunct("["):
			pos := p.pos_()
			p.advance()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			e = IndexNode{Container: e, Key: key, Pos: pos}
		default:
			return e, nil
		}
	}
}

// parsePrimaryOrCall distinguishes `ident(args...)` function calls from
// plain column references, then falls through to literals/parens.
func (p *parser) parsePrimaryOrCall() (ExprNode, *rowflow.BuildError) {
	if p.cur().kind == tokIdent && !reservedWords[p.cur().text] && p.at(p.pos+1).isPunct("(") {
		pos := p.pos_()
		nameTok := p.advance()
		p.advance() // "("
		var args []ExprNode
		if !p.cur().isPunct(")") {
			for {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.cur().isPunct(",") {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return FuncCallNode{Name: nameTok.text, Args: args, Pos: pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ExprNode, *rowflow.BuildError) {
	pos := p.pos_()
	t := p.cur()
	switch {
	case t.isPunct("("):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil

	case t.kind == tokInt:
		p.advance()
		n, perr := strconv.ParseInt(t.text, 10, 64)
		if perr != nil {
			return nil, rowflow.NewSyntaxError(pos, "invalid integer literal %q", t.text)
		}
		return LiteralNode{Val: rowflow.NewLong(n), Text: t.text, Pos: pos}, nil

	case t.kind == tokDecimal:
		p.advance()
		f, perr := strconv.ParseFloat(t.text, 64)
		if perr != nil {
			return nil, rowflow.NewSyntaxError(pos, "invalid decimal literal %q", t.text)
		}
		return LiteralNode{Val: rowflow.NewDouble(f), Text: t.text, Pos: pos}, nil

	case t.kind == tokString:
		p.advance()
		return LiteralNode{Val: rowflow.NewString(t.text), Text: strconv.Quote(t.text), Pos: pos}, nil

	case t.isKeyword("null"):
		p.advance()
		return LiteralNode{Val: rowflow.Null, Text: "null", Pos: pos}, nil

	case t.isKeyword("true"):
		p.advance()
		return LiteralNode{Val: rowflow.NewBool(true), Text: "true", Pos: pos}, nil

	case t.isKeyword("false"):
		p.advance()
		return LiteralNode{Val: rowflow.NewBool(false), Text: "false", Pos: pos}, nil

	case t.kind == tokIdent && t.text == "PI":
		p.advance()
		return LiteralNode{Val: rowflow.NewDouble(math.Pi), Text: "PI", Pos: pos}, nil

	case t.kind == tokIdent && t.text == "E":
		p.advance()
		return LiteralNode{Val: rowflow.NewDouble(math.E), Text: "E", Pos: pos}, nil

	case t.kind == tokIdent && t.text == "TAU":
		p.advance()
		return LiteralNode{Val: rowflow.NewDouble(2 * math.Pi), Text: "TAU", Pos: pos}, nil

	case t.kind == tokIdent && !reservedWords[t.text]:
		p.advance()
		return ColumnRefNode{Name: t.text, Pos: pos}, nil

	default:
		return nil, p.errorf("unexpected token %s", fmtToken(t))
	}
}
