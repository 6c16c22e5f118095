package drafting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
)

const outlineSystemPrompt = `You are a writing coach helping a writer structure their piece before they draft.

You have the interview material in front of you. Propose a structural outline as a sequence of nodes. Each node is a building block of the piece: a Hook, a Story, a Point, Evidence, and so on.

Be grounded: each node's description should reference the actual material from the interview, not generic placeholders.

Use the generate_outline tool. Aim for 5-8 nodes.`

var outlineTool = llm.Tool{
	Name:        "generate_outline",
	Description: "Propose a structural outline for the piece.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"nodes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"node_type": map[string]any{
							"type": "string",
							"enum": []string{
								"hook", "context", "thesis", "story", "point",
								"evidence", "complication", "insight", "closing",
							},
						},
						"description": map[string]any{
							"type":        "string",
							"description": "1-2 sentences describing what this section covers, grounded in the interview material",
						},
					},
					"required": []string{"node_type", "description"},
				},
				"minItems": 4,
				"maxItems": 10,
			},
		},
		"required": []string{"nodes"},
	},
}

// OutlineGenerator proposes structural nodes from interview material
// through a forced tool call, falling back to a per-task default
// outline on any failure.
type OutlineGenerator struct {
	client llm.Client
	logger *slog.Logger
}

// NewOutlineGenerator creates an OutlineGenerator.
func NewOutlineGenerator(client llm.Client, logger *slog.Logger) *OutlineGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutlineGenerator{client: client, logger: logger}
}

func (g *OutlineGenerator) Generate(ctx context.Context, p Params) []domain.OutlineNode {
	var user strings.Builder
	fmt.Fprintf(&user, "Task type: %s\nTopic: %s\n\n", p.TaskType, p.Topic)
	fmt.Fprintf(&user, "Interview summary:\n%s\n\n", p.InterviewSummary)
	fmt.Fprintf(&user, "Key material:\n%s", formatKeyMaterial(p.KeyMaterial))

	resp, err := g.client.Complete(ctx, llm.CompleteRequest{
		Task: llm.TaskOutline,
		Messages: []llm.Message{
			{Role: llm.ChatRoleSystem, Content: outlineSystemPrompt},
			{Role: llm.ChatRoleUser, Content: user.String()},
		},
		Tools:     []llm.Tool{outlineTool},
		ForceTool: outlineTool.Name,
	})
	if err != nil {
		g.logger.Error("outline generation failed", "error", err)
		return defaultOutline(p.TaskType)
	}
	if len(resp.ToolCalls) == 0 {
		g.logger.Warn("outline generation returned no tool call")
		return defaultOutline(p.TaskType)
	}

	var args struct {
		Nodes []struct {
			NodeType    string `json:"node_type"`
			Description string `json:"description"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(resp.ToolCalls[0].Arguments), &args); err != nil {
		g.logger.Warn("outline tool arguments unparseable", "error", err)
		return defaultOutline(p.TaskType)
	}

	var nodes []domain.OutlineNode
	for _, n := range args.Nodes {
		if n.NodeType == "" || n.Description == "" {
			continue
		}
		nodes = append(nodes, domain.OutlineNode{
			ID:          uuid.NewString(),
			NodeType:    n.NodeType,
			Description: n.Description,
		})
	}
	if len(nodes) == 0 {
		return defaultOutline(p.TaskType)
	}
	return nodes
}

func defaultOutline(taskType domain.TaskType) []domain.OutlineNode {
	type nodeSpec struct{ nodeType, description string }
	defaults := map[domain.TaskType][]nodeSpec{
		domain.TaskEssay: {
			{"hook", "Open with a moment or observation that sparked this piece"},
			{"context", "Zoom out to the broader significance"},
			{"thesis", "State the core argument"},
			{"point", "First supporting point with evidence"},
			{"complication", "Complicate or challenge the thesis"},
			{"closing", "Reframe with a takeaway"},
		},
		domain.TaskNewsletter: {
			{"hook", "Lead with a surprising insight or personal moment"},
			{"context", "Why this matters now"},
			{"story", "The story or case study"},
			{"insight", "The lesson extracted"},
			{"closing", "What the reader can do with this"},
		},
	}
	specs, ok := defaults[taskType]
	if !ok {
		specs = defaults[domain.TaskEssay]
	}
	nodes := make([]domain.OutlineNode, 0, len(specs))
	for _, s := range specs {
		nodes = append(nodes, domain.OutlineNode{
			ID:          uuid.NewString(),
			NodeType:    s.nodeType,
			Description: s.description,
		})
	}
	return nodes
}
