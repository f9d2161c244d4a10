package seeder

import (
	"fmt"

	"github.com/google/uuid"
)

var firstNames = []string{ //nolint:gochecknoglobals // fixed name pool
	"Ana", "Bruno", "Caio", "Davi", "Enzo", "Felipe", "Gabriel", "Heitor",
	"Igor", "João", "Kaique", "Lucas", "Mateus", "Nicolas", "Otávio", "Pedro",
	"Rafael", "Samuel", "Thiago", "Vitor",
}

// signup is one player registration with its idempotency key.
type signup struct {
	index int
	name  string
	key   string
}

// generateSignups builds n uniquely named registrations.
func generateSignups(n int) []signup {
	out := make([]signup, n)
	for i := range out {
		name := firstNames[i%len(firstNames)]
		if round := i / len(firstNames); round > 0 {
			name = fmt.Sprintf("%s %d", name, round+1)
		}
		out[i] = signup{index: i, name: name, key: uuid.NewString()}
	}
	return out
}
