package application

import (
	"context"
	"errors"

	"github.com/bnema/memochat/internal/domain"
	"go.uber.org/zap"
)

// dispatch runs one model function call against the session memory and
// returns the result string sent back to the model. Unknown tools, and
// getAllUserData outside the greeting, yield an empty result. Only a
// persistence failure is returned as an error. Memory access happens under
// the service lock so readers never see a half-applied save.
func (s *Service) dispatch(ctx context.Context, logger *zap.Logger, memory *FactMemory, call domain.FunctionCall, greeting bool) (string, error) {
	tool := domain.ParseTool(call.Name)
	s.observer.ToolDispatched(toolLabel(tool))

	if memory == nil {
		return s.catalog.NoSession, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch tool {
	case domain.ToolSaveUserData:
		key := call.StringArg(domain.ToolArgKey)
		if key == "" {
			logger.Warn("save call without key")
			return "", nil
		}
		result, err := memory.Save(ctx, key, call.StringArg(domain.ToolArgValue))
		if errors.Is(err, domain.ErrMemoryFull) {
			logger.Info("memory full", zap.Int("facts", memory.Len()))
			return result, nil
		}
		if err != nil {
			return "", err
		}
		logger.Debug("fact saved", zap.Int("facts", memory.Len()))
		return result, nil

	case domain.ToolGetUserData:
		return memory.Get(call.StringArg(domain.ToolArgKey)), nil

	case domain.ToolGetAllUserData:
		if !greeting {
			logger.Warn("getAllUserData outside greeting ignored")
			return "", nil
		}
		return memory.ListAll(), nil

	default:
		logger.Warn("unknown tool call", zap.String("tool", call.Name))
		return "", nil
	}
}

func toolLabel(tool domain.Tool) string {
	if name := tool.Name(); name != "" {
		return name
	}
	return "unknown"
}
