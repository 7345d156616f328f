package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schichtbuch-backend/internal/model"
)

func TestCapabilitiesFor(t *testing.T) {
	testCases := []struct {
		name     string
		role     model.Role
		expected Capabilities
	}{
		{
			name: "Admin has everything",
			role: model.RoleAdmin,
			expected: Capabilities{
				ProcessSpareParts: true,
				ViewAllSpareParts: true,
				ManageMachines:    true,
			},
		},
		{
			name: "Supervisor may process spare parts but not manage machines",
			role: model.RoleSupervisor,
			expected: Capabilities{
				ProcessSpareParts: true,
				ViewAllSpareParts: true,
			},
		},
		{
			name:     "Worker has no privileged capabilities",
			role:     model.RoleWorker,
			expected: Capabilities{},
		},
		{
			name:     "Unknown role falls back to no capabilities",
			role:     model.Role("VISITOR"),
			expected: Capabilities{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CapabilitiesFor(tc.role))
		})
	}
}
