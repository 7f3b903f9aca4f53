package memory_test

import (
	"testing"

	"github.com/callguide/roteiro/internal/adapters/memory"
	"github.com/callguide/roteiro/pkg/ports"
)

func TestMemorySessionStore_Contract(t *testing.T) {
	store := memory.NewSessionStore()
	ports.RunSessionStoreContract(t, store)
}
