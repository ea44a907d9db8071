package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("Pass.1234")
	require.NoError(t, err)
	h2, err := HashPassword("Pass.1234")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "every hash is salted")
	assert.NotContains(t, string(h1), "Pass.1234")

	tests := []struct {
		name  string
		plain string
		hash  []byte
		want  bool
	}{
		{name: "match", plain: "Pass.1234", hash: h1, want: true},
		{name: "match (other salt)", plain: "Pass.1234", hash: h2, want: true},
		{name: "wrong password", plain: "pass.1234", hash: h1, want: false},
		{name: "empty hash", plain: "Pass.1234", hash: nil, want: false},
		{name: "malformed hash", plain: "Pass.1234", hash: []byte("$2a$10$lol"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.plain, tt.hash))
		})
	}
}
