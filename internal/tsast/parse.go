package tsast

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"resolvergen/internal/diag"
)

// ParseModule parses one TypeScript source file into the module AST. Spans
// are byte offsets into src.
func ParseModule(path string, src []byte) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	root := tree.RootNode()
	module := &Module{Path: path}

	var pending []*sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() == "comment" {
			// A blank line breaks the comment block.
			if len(pending) > 0 && node.StartPoint().Row-pending[len(pending)-1].EndPoint().Row > 1 {
				pending = nil
			}
			pending = append(pending, node)
			continue
		}

		stmt := &Statement{Span: spanOf(node)}
		if len(pending) > 0 && node.StartPoint().Row-pending[len(pending)-1].EndPoint().Row <= 1 {
			stmt.Comment = gatherComment(pending, src)
		}
		pending = nil

		stmt.Exported, stmt.Decl = convertStatement(node, src)
		module.Statements = append(module.Statements, stmt)
	}

	return module, nil
}

func gatherComment(nodes []*sitter.Node, src []byte) *Comment {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, cleanComment(n.Content(src)))
	}
	span := spanOf(nodes[0]).Between(spanOf(nodes[len(nodes)-1]))
	return &Comment{Text: strings.Join(parts, "\n"), Span: span}
}

// cleanComment strips comment markers while keeping the inner text intact.
func cleanComment(raw string) string {
	raw = strings.TrimPrefix(raw, "/*")
	raw = strings.TrimSuffix(raw, "*/")
	raw = strings.TrimPrefix(raw, "//")
	return raw
}

func convertStatement(node *sitter.Node, src []byte) (bool, Decl) {
	switch node.Type() {
	case "import_statement":
		return false, convertImport(node, src)
	case "export_statement":
		decl := node.ChildByFieldName("declaration")
		if decl == nil {
			return true, &OtherDecl{Kind: node.Type()}
		}
		_, inner := convertStatement(decl, src)
		return true, inner
	case "function_declaration":
		return false, convertFunction(node, src)
	case "type_alias_declaration":
		return false, convertTypeAlias(node, src)
	default:
		return false, &OtherDecl{Kind: node.Type()}
	}
}

func convertImport(node *sitter.Node, src []byte) *ImportDecl {
	decl := &ImportDecl{}
	if source := node.ChildByFieldName("source"); source != nil {
		decl.Source = unquote(source.Content(src))
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			clause := child.NamedChild(j)
			switch clause.Type() {
			case "identifier":
				decl.Specifiers = append(decl.Specifiers, ImportSpecifier{
					Kind:  ImportDefault,
					Local: identOf(clause, src),
				})
			case "namespace_import":
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					if id := clause.NamedChild(k); id.Type() == "identifier" {
						decl.Specifiers = append(decl.Specifiers, ImportSpecifier{
							Kind:  ImportNamespace,
							Local: identOf(id, src),
						})
					}
				}
			case "named_imports":
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					spec := clause.NamedChild(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					name := spec.ChildByFieldName("name")
					if name == nil {
						continue
					}
					imported := name.Content(src)
					local := identOf(name, src)
					if alias := spec.ChildByFieldName("alias"); alias != nil {
						local = identOf(alias, src)
					}
					decl.Specifiers = append(decl.Specifiers, ImportSpecifier{
						Kind:     ImportNamed,
						Local:    local,
						Imported: imported,
					})
				}
			}
		}
	}
	return decl
}

func convertFunction(node *sitter.Node, src []byte) *FunctionDecl {
	decl := &FunctionDecl{}
	if name := node.ChildByFieldName("name"); name != nil {
		decl.Name = identOf(name, src)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		decl.ReturnType = annotatedType(ret, src)
	}
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return decl
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
			continue
		}
		param := Param{Span: spanOf(p), Raw: p.Content(src)}
		if pattern := p.ChildByFieldName("pattern"); pattern != nil {
			if pattern.Type() == "identifier" {
				param.IsIdent = true
				param.Name = identOf(pattern, src)
			} else {
				param.Raw = pattern.Content(src)
			}
		}
		if typ := p.ChildByFieldName("type"); typ != nil {
			param.Type = annotatedType(typ, src)
		}
		decl.Params = append(decl.Params, param)
	}
	return decl
}

func convertTypeAlias(node *sitter.Node, src []byte) *TypeAliasDecl {
	decl := &TypeAliasDecl{}
	if name := node.ChildByFieldName("name"); name != nil {
		decl.Name = identOf(name, src)
	}
	if value := node.ChildByFieldName("value"); value != nil {
		decl.Value = convertType(value, src)
	}
	return decl
}

// annotatedType unwraps a type_annotation node (": T") to its inner type.
func annotatedType(node *sitter.Node, src []byte) Type {
	if node.Type() == "type_annotation" {
		if inner := node.NamedChild(0); inner != nil {
			return convertType(inner, src)
		}
		return nil
	}
	return convertType(node, src)
}

func convertType(node *sitter.Node, src []byte) Type {
	span := spanOf(node)
	switch node.Type() {
	case "predefined_type":
		return &KeywordType{Kind: Keyword(node.Content(src)), Loc: span}
	case "type_identifier":
		return &TypeRef{Name: identOf(node, src), Loc: span}
	case "nested_type_identifier":
		ref := &TypeRef{Qualified: true, Loc: span}
		if name := node.ChildByFieldName("name"); name != nil {
			ref.Name = identOf(name, src)
		} else {
			ref.Name = Ident{Name: node.Content(src), Span: span}
		}
		return ref
	case "generic_type":
		ref := &TypeRef{Loc: span}
		if name := node.ChildByFieldName("name"); name != nil {
			ref.Qualified = name.Type() == "nested_type_identifier"
			ref.Name = identOf(name, src)
		}
		if args := node.ChildByFieldName("type_arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				ref.TypeParams = append(ref.TypeParams, convertType(args.NamedChild(i), src))
			}
		}
		return ref
	case "union_type":
		union := &UnionType{Loc: span}
		flattenMembers(node, src, "union_type", &union.Members)
		return union
	case "intersection_type":
		inter := &IntersectionType{Loc: span}
		flattenMembers(node, src, "intersection_type", &inter.Members)
		return inter
	case "object_type":
		obj := &ObjectType{Loc: span}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			member := node.NamedChild(i)
			if member.Type() != "property_signature" {
				continue
			}
			prop := Property{Span: spanOf(member)}
			if key := member.ChildByFieldName("name"); key != nil {
				prop.Key = identOf(key, src)
			}
			if typ := member.ChildByFieldName("type"); typ != nil {
				prop.Type = annotatedType(typ, src)
			}
			obj.Members = append(obj.Members, prop)
		}
		return obj
	case "array_type":
		arr := &ArrayType{Loc: span}
		if elem := node.NamedChild(0); elem != nil {
			arr.Element = convertType(elem, src)
		}
		return arr
	case "parenthesized_type", "readonly_type":
		if inner := node.NamedChild(0); inner != nil {
			return convertType(inner, src)
		}
		return &OpaqueType{Raw: node.Content(src), Loc: span}
	case "literal_type":
		return convertLiteral(node, src, span)
	default:
		if text := node.Content(src); text == "undefined" || text == "null" {
			return &KeywordType{Kind: Keyword(text), Loc: span}
		}
		return &OpaqueType{Raw: node.Content(src), Loc: span}
	}
}

func convertLiteral(node *sitter.Node, src []byte, span diag.Span) Type {
	inner := node.NamedChild(0)
	if inner == nil {
		// null/undefined may surface as anonymous children of literal_type
		switch text := node.Content(src); text {
		case "null", "undefined":
			return &KeywordType{Kind: Keyword(text), Loc: span}
		default:
			return &OpaqueType{Raw: text, Loc: span}
		}
	}
	switch inner.Type() {
	case "null":
		return &KeywordType{Kind: KeywordNull, Loc: span}
	case "undefined":
		return &KeywordType{Kind: KeywordUndefined, Loc: span}
	case "true", "false":
		return &LiteralType{Kind: LiteralBool, Value: inner.Content(src), Loc: span}
	case "string":
		return &LiteralType{Kind: LiteralString, Value: unquote(inner.Content(src)), Loc: span}
	case "number":
		return &LiteralType{Kind: LiteralNumber, Value: inner.Content(src), Loc: span}
	default:
		return &OpaqueType{Raw: node.Content(src), Loc: span}
	}
}

// flattenMembers collapses the parser's left-nested union/intersection chain
// into one flat member list.
func flattenMembers(node *sitter.Node, src []byte, kind string, out *[]Type) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == kind {
			flattenMembers(child, src, kind, out)
			continue
		}
		*out = append(*out, convertType(child, src))
	}
}

func identOf(node *sitter.Node, src []byte) Ident {
	return Ident{Name: node.Content(src), Span: spanOf(node)}
}

func spanOf(node *sitter.Node) diag.Span {
	return diag.NewSpan(node.StartByte(), node.EndByte())
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
