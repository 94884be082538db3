package input

import (
	"context"

	"browser-runner/internal/domain/entity"
)

type Runner interface {
	Run(ctx context.Context) (*entity.RunResult, error)
}
