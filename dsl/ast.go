package dsl

import "github.com/flowbase/rowflow"

// Program is the root of a parsed DSL source file: zero or more pipeline
// definitions.
type Program struct {
	Pipelines []*PipelineDef
}

// PipelineDef is one `name(schema) stage* ;` block.
type PipelineDef struct {
	Name   string
	Fields []FieldDef
	Stages []StageDef
	Pos    rowflow.Position
}

// FieldDef is one input-schema column declaration. Type is "" when the
// `as vtype` suffix was omitted, meaning Dynamic.
type FieldDef struct {
	Name string
	Type string
	Pos  rowflow.Position
}

// StageDef is the builder-tree node for one `| transformation` stage, one
// concrete type per transformation kind.
type StageDef interface{ stageDef() }

type TakeDef struct {
	Count int
	Pos   rowflow.Position
}

type WhereDef struct {
	Cond ExprNode
	Pos  rowflow.Position
}

type Assignment struct {
	Name string
	Expr ExprNode
}

type ProjectDef struct {
	Assignments []Assignment
	Pos         rowflow.Position
}

type Rename struct {
	New string
	Old string
}

type ProjectRenameDef struct {
	Renames []Rename
	Pos     rowflow.Position
}

type ProjectRemoveDef struct {
	Names []string
	Pos   rowflow.Position
}

type ProjectKeepDef struct {
	Names []string
	Pos   rowflow.Position
}

type ExplodeDef struct {
	Column string
	As     string // "" means keep Dynamic
	Pos    rowflow.Position
}

// LookupFieldDef is one `[alias =] name as vtype` entry of a lookup stage.
type LookupFieldDef struct {
	SourceField string
	Alias       string // "" means use SourceField as the output name
	Type        string
}

// LookupJoinKind mirrors rowflow.JoinKind at the AST layer, decided by the
// optional `join kind=...` prefix (the same syntax stage_lookup.go's Dump
// emits, so dumps re-parse).
type LookupJoinKind int

const (
	LookupSingle LookupJoinKind = iota
	LookupLeftInner
	LookupLeftOuter
)

type LookupDef struct {
	Fields []LookupFieldDef
	Source string
	On     ExprNode
	Kind   LookupJoinKind
	Pos    rowflow.Position
}

type TopDef struct {
	Count int
	By    ExprNode
	Desc  bool // true = desc (default), false = asc
	Nulls string // "first" or "last" ("" defaults to "last")
	Pos   rowflow.Position
}

type IgnoreErrorDef struct {
	Pos rowflow.Position
}

// DistinctDef is `distinct by <expr>, <expr>, …`.
type DistinctDef struct {
	Keys []ExprNode
	Pos  rowflow.Position
}

// AggCall is one `name = aggFunc(args...)` summarize aggregator request.
type AggCall struct {
	Name    string
	AggFunc string
	Args    []ExprNode
}

// SummarizeKey is one `name = expr` group-by key.
type SummarizeKey struct {
	Name string
	Expr ExprNode
}

type SummarizeDef struct {
	Aggs []AggCall
	Keys []SummarizeKey
	Pos  rowflow.Position
}

func (TakeDef) stageDef()          {}
func (WhereDef) stageDef()         {}
func (ProjectDef) stageDef()       {}
func (ProjectRenameDef) stageDef() {}
func (ProjectRemoveDef) stageDef() {}
func (ProjectKeepDef) stageDef()   {}
func (ExplodeDef) stageDef()       {}
func (LookupDef) stageDef()        {}
func (TopDef) stageDef()           {}
func (IgnoreErrorDef) stageDef()   {}
func (SummarizeDef) stageDef()     {}
func (DistinctDef) stageDef()      {}

// ExprNode is the builder-tree node for one expression, resolved into a
// rowflow.Expr by Build once the enclosing stage's schema is known.
type ExprNode interface{ exprNode() }

type ColumnRefNode struct {
	Name string
	Pos  rowflow.Position
}

type LiteralNode struct {
	Val  rowflow.Value
	Text string
	Pos  rowflow.Position
}

type BinaryNode struct {
	Op  string
	L   ExprNode
	R   ExprNode
	Pos rowflow.Position
}

type UnaryNode struct {
	Op      string
	Arg     ExprNode
	Postfix bool
	Pos     rowflow.Position
}

type CaseWhenClause struct {
	Cond   ExprNode
	Result ExprNode
}

type CaseNode struct {
	Whens []CaseWhenClause
	Else  ExprNode // nil if no else clause
	Pos   rowflow.Position
}

type FuncCallNode struct {
	Name string
	Args []ExprNode
	Pos  rowflow.Position
}

type IndexNode struct {
	Container ExprNode
	Key       ExprNode
	Pos       rowflow.Position
}

type DotNode struct {
	Container ExprNode
	Field     string
	Pos       rowflow.Position
}

func (ColumnRefNode) exprNode() {}
func (LiteralNode) exprNode()   {}
func (BinaryNode) exprNode()    {}
func (UnaryNode) exprNode()     {}
func (CaseNode) exprNode()      {}
func (FuncCallNode) exprNode()  {}
func (IndexNode) exprNode()     {}
func (DotNode) exprNode()       {}
