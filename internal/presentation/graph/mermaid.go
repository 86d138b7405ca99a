package graph

import (
	"fmt"
	"strings"

	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/tree"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	Statuses []tree.StatusInfo
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a tree
// layout. It applies semantic styling:
// - Control: [Rectangle]
// - Decorator: {{Hexagon}}
// - Condition: [/Parallelogram/]
// - SubTree: [[Subroutine]]
// - Action: (Rounded)
// It also applies per-status overlay styles if provided.
func GenerateMermaid(layout []tree.NodeInfo, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, info := range layout {
		id := mermaidID(info.UID)

		opener, closer := "(", ")"
		switch info.Category {
		case domain.CategoryControl:
			opener, closer = "[", "]"
		case domain.CategoryDecorator:
			opener, closer = "{{", "}}"
		case domain.CategoryCondition:
			opener, closer = "[/", "/]"
		case domain.CategorySubTree:
			opener, closer = "[[", "]]"
		}

		label := info.Name
		if label != info.Type {
			label = fmt.Sprintf("%s <br/> %s", info.Name, info.Type)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, escapeLabel(label), closer))

		for _, child := range info.Children {
			arrow := "-->"
			if info.Category == domain.CategorySubTree {
				// Subtree boundaries are scope boundaries; draw them dashed.
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", id, arrow, mermaidID(child)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef success fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failure fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eceff1,stroke:#607d8b,stroke-width:1px,color:#000;\n")

		for _, st := range overlay.Statuses {
			var class string
			switch st.Status {
			case domain.StatusRunning:
				class = "running"
			case domain.StatusSuccess:
				class = "success"
			case domain.StatusFailure:
				class = "failure"
			case domain.StatusSkipped:
				class = "skipped"
			default:
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", mermaidID(st.UID), class))
		}
	}

	return sb.String()
}

func mermaidID(uid uint16) string {
	return fmt.Sprintf("n%d", uid)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
