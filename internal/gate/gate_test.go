package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salmacher/Rag-project/internal/session"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		required Access
		status   session.Status
		want     Decision
	}{
		{"public always renders", Public, session.StatusUnauthenticated, Render},
		{"public renders while verifying", Public, session.StatusVerifying, Render},
		{"public renders when signed in", Public, session.StatusAuthenticated, Render},
		{"protected waits for verification", ProtectedOnly, session.StatusVerifying, ShowLoading},
		{"protected renders when signed in", ProtectedOnly, session.StatusAuthenticated, Render},
		{"protected redirects anonymous users", ProtectedOnly, session.StatusUnauthenticated, RedirectLogin},
		{"login page waits for verification", PublicOnly, session.StatusVerifying, ShowLoading},
		{"login page hidden from signed-in users", PublicOnly, session.StatusAuthenticated, RedirectHome},
		{"login page renders for anonymous users", PublicOnly, session.StatusUnauthenticated, Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.required, tt.status))
		})
	}
}
