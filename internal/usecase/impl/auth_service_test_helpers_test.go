package impl

import (
	"context"
	"io"
	"log/slog"

	"passport/internal/domain/repository"
	mockRepo "passport/internal/mocks/repository"

	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// passthroughTransaction wires a MockTransactionManager so the callback runs
// against the given factory, as if inside a real transaction.
func passthroughTransaction(mockTx *mockRepo.MockTransactionManager, factory repository.RepositoryFactory) {
	mockTx.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(factory)
		})
}
