package dsl

import "github.com/flowbase/rowflow"

// Build resolves a parsed Program against bctx into runnable Pipelines,
// keyed by name, threading each pipeline's schema stage-by-stage exactly as
// rowflow.NewPipeline expects its caller to (see pipeline.go's doc comment
// on NewPipeline). Parse turns text into a builder tree with no knowledge
// of functions, lookup sources, or columns; Build is where those names
// actually get resolved, returning the first BuildError encountered rather
// than collecting every error in the program.
func Build(bctx *rowflow.BuildContext, prog *Program) (map[string]*rowflow.Pipeline, *rowflow.BuildError) {
	out := make(map[string]*rowflow.Pipeline, len(prog.Pipelines))
	for _, pd := range prog.Pipelines {
		p, err := buildPipeline(bctx, pd)
		if err != nil {
			return nil, err.WithPath(pd.Name)
		}
		out[pd.Name] = p
	}
	return out, nil
}

func buildPipeline(bctx *rowflow.BuildContext, pd *PipelineDef) (*rowflow.Pipeline, *rowflow.BuildError) {
	cols := make([]rowflow.Column, len(pd.Fields))
	for i, f := range pd.Fields {
		cols[i] = rowflow.Column{Name: f.Name, Type: vtypeToValueType(f.Type)}
	}
	schema, err := rowflow.NewSchema(cols...)
	if err != nil {
		return nil, err
	}

	stages := make([]rowflow.Stage, 0, len(pd.Stages))
	current := schema
	for _, sd := range pd.Stages {
		stage, err := buildStage(bctx, current, sd)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
		current = stage.OutputSchema(current)
	}
	return rowflow.NewPipeline(pd.Name, schema, stages, bctx.Observability()), nil
}

func buildStage(bctx *rowflow.BuildContext, schema rowflow.Schema, sd StageDef) (rowflow.Stage, *rowflow.BuildError) {
	switch d := sd.(type) {
	case TakeDef:
		return rowflow.NewTakeStage(d.Count)

	case WhereDef:
		cond, err := buildExpr(bctx, schema, d.Cond)
		if err != nil {
			return nil, err
		}
		return rowflow.NewWhereStage(schema, cond)

	case ProjectDef:
		names := make([]string, len(d.Assignments))
		exprs := make([]rowflow.Expr, len(d.Assignments))
		for i, a := range d.Assignments {
			e, err := buildExpr(bctx, schema, a.Expr)
			if err != nil {
				return nil, err
			}
			names[i] = a.Name
			exprs[i] = e
		}
		return rowflow.NewProjectStage(schema, names, exprs)

	case ProjectRenameDef:
		newNames := make([]string, len(d.Renames))
		oldNames := make([]string, len(d.Renames))
		for i, r := range d.Renames {
			newNames[i] = r.New
			oldNames[i] = r.Old
		}
		return rowflow.NewProjectRenameStage(schema, newNames, oldNames)

	case ProjectRemoveDef:
		return rowflow.NewProjectRemoveStage(schema, d.Names)

	case ProjectKeepDef:
		return rowflow.NewProjectKeepStage(schema, d.Names)

	case ExplodeDef:
		return rowflow.NewExplodeStage(schema, d.Column, vtypeToValueType(d.As))

	case LookupDef:
		return buildLookup(bctx, schema, d)

	case TopDef:
		criteria, err := buildExpr(bctx, schema, d.By)
		if err != nil {
			return nil, err
		}
		order := rowflow.Ascending
		if d.Desc {
			order = rowflow.Descending
		}
		nulls := rowflow.NullsLast
		if d.Nulls == "first" {
			nulls = rowflow.NullsFirst
		}
		return rowflow.NewTopStage(schema, d.Count, criteria, order, nulls)

	case IgnoreErrorDef:
		return rowflow.NewIgnoreErrorStage(), nil

	case DistinctDef:
		keys := make([]rowflow.Expr, len(d.Keys))
		for i, k := range d.Keys {
			e, err := buildExpr(bctx, schema, k)
			if err != nil {
				return nil, err
			}
			keys[i] = e
		}
		return rowflow.NewDistinctStage(schema, keys)

	case SummarizeDef:
		return buildSummarize(bctx, schema, d)

	default:
		return nil, rowflow.NewBuildError(rowflow.ErrSyntax, rowflow.Position{}, "unknown stage node %T", sd)
	}
}

func buildLookup(bctx *rowflow.BuildContext, schema rowflow.Schema, d LookupDef) (rowflow.Stage, *rowflow.BuildError) {
	key, err := buildExpr(bctx, schema, d.On)
	if err != nil {
		return nil, err
	}
	source, err := bctx.LookupSourceByName(d.Source, d.Pos)
	if err != nil {
		return nil, err
	}
	fieldNames := make([]string, len(d.Fields))
	fieldOutput := make([]string, len(d.Fields))
	fieldTypes := make([]rowflow.ValueType, len(d.Fields))
	for i, f := range d.Fields {
		fieldNames[i] = f.SourceField
		if f.Alias != "" {
			fieldOutput[i] = f.Alias
		} else {
			fieldOutput[i] = f.SourceField
		}
		fieldTypes[i] = vtypeToValueType(f.Type)
	}
	var kind rowflow.JoinKind
	switch d.Kind {
	case LookupLeftInner:
		kind = rowflow.JoinLeftInner
	case LookupLeftOuter:
		kind = rowflow.JoinLeftOuter
	default:
		kind = rowflow.JoinSingle
	}
	return rowflow.NewLookupStage(schema, d.Source, source, key, fieldNames, fieldOutput, fieldTypes, kind)
}

func buildSummarize(bctx *rowflow.BuildContext, schema rowflow.Schema, d SummarizeDef) (rowflow.Stage, *rowflow.BuildError) {
	aggs := make([]rowflow.AggSpec, len(d.Aggs))
	for i, a := range d.Aggs {
		args := make([]rowflow.Expr, len(a.Args))
		for j, an := range a.Args {
			e, err := buildExpr(bctx, schema, an)
			if err != nil {
				return nil, err
			}
			args[j] = e
		}
		aggs[i] = rowflow.AggSpec{Name: a.Name, AggFunc: a.AggFunc, Args: args}
	}
	keyNames := make([]string, len(d.Keys))
	keyExprs := make([]rowflow.Expr, len(d.Keys))
	for i, k := range d.Keys {
		e, err := buildExpr(bctx, schema, k.Expr)
		if err != nil {
			return nil, err
		}
		keyNames[i] = k.Name
		keyExprs[i] = e
	}
	return rowflow.NewSummarizeStage(schema, aggs, keyNames, keyExprs)
}

// buildExpr resolves one ExprNode against schema, recursing into its
// children first so every BuildError carries the innermost failing
// subexpression's Position.
func buildExpr(bctx *rowflow.BuildContext, schema rowflow.Schema, node ExprNode) (rowflow.Expr, *rowflow.BuildError) {
	switch n := node.(type) {
	case ColumnRefNode:
		return rowflow.NewColumnExpr(schema, n.Name, n.Pos)

	case LiteralNode:
		return buildLiteral(bctx, n)

	case BinaryNode:
		l, err := buildExpr(bctx, schema, n.L)
		if err != nil {
			return nil, err
		}
		r, err := buildExpr(bctx, schema, n.R)
		if err != nil {
			return nil, err
		}
		return rowflow.NewBinaryExpr(n.Op, l, r, n.Pos)

	case UnaryNode:
		arg, err := buildExpr(bctx, schema, n.Arg)
		if err != nil {
			return nil, err
		}
		return rowflow.NewUnaryExpr(n.Op, arg, n.Pos)

	case CaseNode:
		whens := make([]rowflow.CaseWhen, len(n.Whens))
		for i, w := range n.Whens {
			cond, err := buildExpr(bctx, schema, w.Cond)
			if err != nil {
				return nil, err
			}
			result, err := buildExpr(bctx, schema, w.Result)
			if err != nil {
				return nil, err
			}
			whens[i] = rowflow.CaseWhen{Cond: cond, Result: result}
		}
		var elseExpr rowflow.Expr
		if n.Else != nil {
			e, err := buildExpr(bctx, schema, n.Else)
			if err != nil {
				return nil, err
			}
			elseExpr = e
		}
		return rowflow.NewCaseExpr(whens, elseExpr), nil

	case FuncCallNode:
		args := make([]rowflow.Expr, len(n.Args))
		for i, a := range n.Args {
			e, err := buildExpr(bctx, schema, a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return rowflow.NewFuncCallExpr(bctx, n.Name, args, n.Pos)

	case IndexNode:
		container, err := buildExpr(bctx, schema, n.Container)
		if err != nil {
			return nil, err
		}
		key, err := buildExpr(bctx, schema, n.Key)
		if err != nil {
			return nil, err
		}
		return rowflow.NewIndexExpr(container, key, n.Pos)

	case DotNode:
		container, err := buildExpr(bctx, schema, n.Container)
		if err != nil {
			return nil, err
		}
		return rowflow.NewDotExpr(container, n.Field, n.Pos)

	default:
		return nil, rowflow.NewBuildError(rowflow.ErrSyntax, rowflow.Position{}, "unknown expression node %T", node)
	}
}

// buildLiteral resolves a string literal's ${NAME} secret interpolation
// before wrapping it as a constant Expr; every other literal kind passes
// through unchanged.
func buildLiteral(bctx *rowflow.BuildContext, n LiteralNode) (rowflow.Expr, *rowflow.BuildError) {
	if rowflow.ValueTypeOf(n.Val) != rowflow.TypeString {
		return rowflow.NewLiteralExpr(n.Val, n.Text), nil
	}
	s, _ := n.Val.GetString()
	resolved, err := bctx.ResolveSecret(s, n.Pos)
	if err != nil {
		return nil, err
	}
	if resolved == s {
		return rowflow.NewLiteralExpr(n.Val, n.Text), nil
	}
	return rowflow.NewLiteralExpr(rowflow.NewString(resolved), n.Text), nil
}
