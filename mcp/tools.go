package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tinwheel/dicebox/internal/dice"
	"github.com/tinwheel/dicebox/internal/history"
)

// Deps carries the collaborators shared by all tool handlers.
type Deps struct {
	History history.Store // nil disables roll history
}

func registerTools(s *server.MCPServer, deps Deps) {
	// roll
	rollTool := mcp.NewTool("roll",
		mcp.WithDescription("Roll dice using tabletop notation, e.g. 2d6+3, 4d6k3, d20, 3d6!, d%, 4dF"),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Dice expression to evaluate"),
		),
		mcp.WithString("label",
			mcp.Description("Label stored with the roll in history"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Seed for a reproducible roll (omit for random)"),
		),
	)
	s.AddTool(rollTool, handleRoll(deps))

	// roll_history
	historyTool := mcp.NewTool("roll_history",
		mcp.WithDescription("List recent rolls, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Number of rolls to return (default: 20)"),
		),
	)
	s.AddTool(historyTool, handleRollHistory(deps))
}

func handleRoll(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		expression := request.GetString("expression", "")
		if expression == "" {
			return mcp.NewToolResultError("expression is required"), nil
		}

		var result dice.Result
		var err error
		// Presence, not value, selects the seeded path: seed 0 is a
		// valid seed.
		if _, seeded := request.GetArguments()["seed"]; seeded {
			result, err = dice.ParseSeeded(expression, int64(request.GetInt("seed", 0)))
		} else {
			result, err = dice.Parse(expression)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if deps.History != nil {
			entry := history.Entry{
				ID:         uuid.NewString(),
				Expression: result.Expression,
				Label:      request.GetString("label", ""),
				Total:      result.Total,
				Breakdown:  result.Breakdown,
				RolledAt:   time.Now().UTC(),
			}
			// A failed history write never fails the roll itself.
			if err := deps.History.Record(ctx, entry); err != nil {
				log.Printf("record roll history: %v", err)
			}
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleRollHistory(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.History == nil {
			return mcp.NewToolResultError("roll history is disabled"), nil
		}

		limit := request.GetInt("limit", 20)
		entries, err := deps.History.List(ctx, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("history error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(entries, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}
