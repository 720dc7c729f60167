package tasks

import "github.com/shipsecai/studio-mcp-gateway/internal/apperror"

func errTaskNotTerminal(taskID string) error {
	return apperror.BadRequest("task " + taskID + " has not reached a terminal state")
}
