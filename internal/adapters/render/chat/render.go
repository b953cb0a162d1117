package chat

import (
	"strings"

	"github.com/bnema/memochat/internal/application"
	"github.com/bnema/memochat/internal/domain"
)

func RenderUsage(usage application.UsageSnapshot, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return renderUsage(usage, opts, s)
	})
}

func RenderFacts(facts domain.Facts) (string, error) {
	return render(func(s styles) string {
		return renderFacts(facts, s)
	})
}

func RenderMessages(messages []domain.Message) (string, error) {
	return render(func(s styles) string {
		lines := make([]string, 0, len(messages))
		for _, msg := range messages {
			lines = append(lines, renderMessage(msg, s))
		}
		return strings.Join(lines, "\n")
	})
}
