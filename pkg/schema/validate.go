package schema

import (
	"fmt"
	"strings"
)

// Validate performs the structural checks that do not need a registry:
// unique tree ids, resolvable root, node types present, consistent
// child/children usage, well-formed port bindings, and resolvable subtree
// references. Registry-dependent checks (unknown types, arity, required
// ports) happen at build time.
//
// All findings are aggregated so authors can fix a document in one pass.
func Validate(doc *Document) error {
	var errs []error

	if len(doc.Trees) == 0 {
		errs = append(errs, &ValidationError{Path: "trees", Reason: "document defines no trees"})
		return &AggregateError{Errors: errs}
	}

	ids := make(map[string]bool, len(doc.Trees))
	for _, t := range doc.Trees {
		if t.ID == "" {
			errs = append(errs, &ValidationError{Path: "trees", Reason: "tree without id"})
			continue
		}
		if ids[t.ID] {
			errs = append(errs, &ValidationError{Path: t.ID, Reason: "duplicate tree id"})
		}
		ids[t.ID] = true
	}

	if doc.Root != "" && !ids[doc.Root] {
		errs = append(errs, &ValidationError{Path: "root", Reason: fmt.Sprintf("unknown tree %q", doc.Root)})
	}
	if doc.Root == "" && len(doc.Trees) > 1 {
		errs = append(errs, &ValidationError{Path: "root", Reason: "document defines several trees but no root"})
	}

	for _, t := range doc.Trees {
		if t.Root == nil {
			errs = append(errs, &ValidationError{Path: t.ID, Reason: "tree has no root node"})
			continue
		}
		errs = append(errs, validateNode(t.ID, t.Root, ids)...)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateNode(path string, n *NodeDef, treeIDs map[string]bool) []error {
	var errs []error
	path = path + "/" + n.DisplayName()

	if n.Type == "" {
		errs = append(errs, &ValidationError{Path: path, Reason: "node without type"})
	}
	if n.Child != nil && len(n.Children) > 0 {
		errs = append(errs, &ValidationError{Path: path, Reason: "both child and children set"})
	}
	if n.Type == "SubTree" {
		if n.Tree == "" {
			errs = append(errs, &ValidationError{Path: path, Reason: "subtree without tree reference"})
		} else if !treeIDs[n.Tree] {
			errs = append(errs, &ValidationError{Path: path, Reason: fmt.Sprintf("unknown tree %q", n.Tree)})
		}
		if len(n.AllChildren()) > 0 {
			errs = append(errs, &ValidationError{Path: path, Reason: "subtree nodes take no children"})
		}
	} else if n.Tree != "" {
		errs = append(errs, &ValidationError{Path: path, Reason: "tree reference on a non-subtree node"})
	}

	for port, raw := range n.Ports {
		if strings.HasPrefix(raw, "{") != strings.HasSuffix(raw, "}") {
			errs = append(errs, &ValidationError{
				Path:   path,
				Reason: fmt.Sprintf("port %q: malformed binding %q", port, raw),
			})
		}
		if raw == "{}" {
			errs = append(errs, &ValidationError{
				Path:   path,
				Reason: fmt.Sprintf("port %q: empty blackboard pointer", port),
			})
		}
	}

	for _, child := range n.AllChildren() {
		errs = append(errs, validateNode(path, child, treeIDs)...)
	}
	return errs
}
