package repository_test

import (
	"testing"

	"drop-auction/internal/repository"
	"drop-auction/internal/repository/repotest"
)

func TestMemoryRepo_Contract(t *testing.T) {
	t.Parallel()

	repotest.Run(t, func(t *testing.T) repository.AuctionDB {
		return repository.NewMemoryRepo()
	})
}
