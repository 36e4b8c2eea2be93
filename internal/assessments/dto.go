package assessments

import "agents-backend/internal/engine"

type createRequest struct {
	Input engine.Input `json:"input"`
}

type pipelineRunRequest struct {
	Agents []string     `json:"agents"`
	Input  engine.Input `json:"input"`
}
