/*
Package domain contains the pure model of the behavior-tree engine: the
Status enumeration, node categories, port declarations, the status-change
Transition event, and the error taxonomy.

It is kept free of I/O and external dependencies so that every other package
(nodes, blackboard, tree, adapters) can depend on it without cycles,
following Hexagonal Architecture principles.
*/
package domain
