/*
Package schema models the declarative tree-definition document: one or more
named trees, each a root node expanding into nested control, decorator and
leaf elements, with port remappings, static parameters, condition scripts
and subtree references.

The document format is YAML. Parsing validates everything that can be
checked without a node registry; the tree builder performs the
registry-dependent checks (unknown types, child arity, required ports,
cyclic subtree references) when instantiating a runtime tree.
*/
package schema
